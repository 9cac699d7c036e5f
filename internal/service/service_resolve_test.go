// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package service

import (
	"context"
	"testing"
	"time"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/mock"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/internal/utils"
	"github.com/avoronov/kinsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type resolverFixture struct {
	resolver  ConflictResolver
	conflicts store.ConflictRepository
	docs      store.DocumentStore
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	docs := store.NewMemoryDocumentStore()
	conflicts := store.NewConflictRepository(docs, logger.Nop())

	return &resolverFixture{
		resolver:  NewConflictResolver(conflicts, docs, utils.NewUUIDGenerator(), logger.Nop()),
		conflicts: conflicts,
		docs:      docs,
	}
}

func pendingDataConflict() models.ConflictRecord {
	return models.ConflictRecord{
		ID:           "c-1",
		DocumentPath: "relationships/rel-1",
		ConflictType: models.ConflictRelationshipData,
		DetectedAt:   baseTime,
		LocalVersion: models.Snapshot{
			models.FieldRelationshipHealth: 8,
			models.FieldNotes:              "local note",
			models.FieldLastContact:        baseTime.Add(time.Hour).Format(time.RFC3339Nano),
		},
		ServerVersion: models.Snapshot{
			models.FieldRelationshipHealth: 6,
			models.FieldNotes:              "server note",
			models.FieldLastContact:        baseTime.Format(time.RFC3339Nano),
		},
		LocalTimestamp:  baseTime.Add(5 * time.Second),
		ServerTimestamp: baseTime,
		Status:          models.ConflictPending,
	}
}

func TestResolve_KeepLocal(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	require.NoError(t, f.conflicts.Save(ctx, pendingDataConflict()))

	rec, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionKeepLocal, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ConflictResolved, rec.Status)
	assert.Equal(t, models.ResolvedByUser, rec.ResolvedBy)
	assert.NotNil(t, rec.ResolvedAt)
	assert.Equal(t, "local note", rec.MergedResult.String(models.FieldNotes))

	doc, err := f.docs.Get(ctx, "relationships/rel-1")
	require.NoError(t, err)
	assert.Equal(t, "local note", doc.Fields.String(models.FieldNotes))
}

func TestResolve_UseServer(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	require.NoError(t, f.conflicts.Save(ctx, pendingDataConflict()))

	rec, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionUseServer, nil)
	require.NoError(t, err)
	assert.Equal(t, "server note", rec.MergedResult.String(models.FieldNotes))
}

func TestResolve_MergeRelationshipData(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	require.NoError(t, f.conflicts.Save(ctx, pendingDataConflict()))

	rec, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionMerge, nil)
	require.NoError(t, err)

	health, ok := rec.MergedResult.Int(models.FieldRelationshipHealth)
	require.True(t, ok)
	assert.Equal(t, 8, health)

	assert.Equal(t, "server note\n\n[Merged]: local note", rec.MergedResult.String(models.FieldNotes))

	lastContact, ok := rec.MergedResult.Time(models.FieldLastContact)
	require.True(t, ok)
	assert.True(t, lastContact.Equal(baseTime.Add(time.Hour)))
}

func TestResolve_MergeNotes_OneSideEmpty(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	rec := pendingDataConflict()
	delete(rec.ServerVersion, models.FieldNotes)
	require.NoError(t, f.conflicts.Save(ctx, rec))

	resolved, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionMerge, nil)
	require.NoError(t, err)
	assert.Equal(t, "local note", resolved.MergedResult.String(models.FieldNotes))
}

func TestResolve_MergeKeepsExplicitEmptyLocalField(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	rec := pendingDataConflict()
	// The local edit cleared the nickname on purpose; the server still
	// holds the old value. A field the local version defines wins even
	// when its value is empty.
	rec.LocalVersion["nickname"] = ""
	rec.ServerVersion["nickname"] = "Lin"
	rec.ServerVersion["birthday"] = "1991-04-02"
	require.NoError(t, f.conflicts.Save(ctx, rec))

	resolved, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionMerge, nil)
	require.NoError(t, err)

	nickname, ok := resolved.MergedResult["nickname"]
	require.True(t, ok)
	assert.Equal(t, "", nickname)

	// Fields only the server defines still fill in.
	assert.Equal(t, "1991-04-02", resolved.MergedResult.String("birthday"))
}

func TestResolve_ManualRequiresResult(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	require.NoError(t, f.conflicts.Save(ctx, pendingDataConflict()))

	_, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionManualResolve, nil)
	assert.ErrorIs(t, err, ErrManualResultRequired)

	manual := models.Snapshot{models.FieldNotes: "hand merged"}
	rec, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionManualResolve, manual)
	require.NoError(t, err)
	assert.Equal(t, "hand merged", rec.MergedResult.String(models.FieldNotes))
}

func TestResolve_UnknownResolution(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	require.NoError(t, f.conflicts.Save(ctx, pendingDataConflict()))

	_, err := f.resolver.Resolve(ctx, "c-1", models.Resolution("coin_flip"), nil)
	assert.ErrorIs(t, err, ErrUnknownResolution)
}

func TestResolve_AlreadyResolved(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	rec := pendingDataConflict()
	rec.Status = models.ConflictResolved
	resolvedAt := baseTime
	rec.ResolvedAt = &resolvedAt
	require.NoError(t, f.conflicts.Save(ctx, rec))

	_, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionKeepLocal, nil)
	assert.ErrorIs(t, err, ErrConflictNotPending)
}

func TestResolve_WritesAuditEntry(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	require.NoError(t, f.conflicts.Save(ctx, pendingDataConflict()))

	_, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionKeepLocal, nil)
	require.NoError(t, err)

	entries, err := f.docs.List(ctx, store.AuditPrefix)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, models.AuditActionConflictResolution, entries[0].Fields.String("action"))
	assert.Equal(t, "c-1", entries[0].Fields.String("conflictId"))
	assert.Equal(t, string(models.ResolutionKeepLocal), entries[0].Fields.String("resolution"))
}

func TestResolve_ApplyFailureStaysPending(t *testing.T) {
	ctrl := gomock.NewController(t)

	memory := store.NewMemoryDocumentStore()
	conflicts := store.NewConflictRepository(memory, logger.Nop())

	failing := mock.NewMockDocumentStore(ctrl)
	failing.EXPECT().
		SetMerge(gomock.Any(), gomock.Regex("^audit/"), gomock.Any()).
		Return(nil)
	failing.EXPECT().
		SetMerge(gomock.Any(), "relationships/rel-1", gomock.Any()).
		Return(store.ErrStoreUnavailable)

	resolver := NewConflictResolver(conflicts, failing, utils.NewUUIDGenerator(), logger.Nop())

	ctx := context.Background()
	require.NoError(t, conflicts.Save(ctx, pendingDataConflict()))

	_, err := resolver.Resolve(ctx, "c-1", models.ResolutionKeepLocal, nil)
	require.ErrorIs(t, err, store.ErrStoreUnavailable)

	rec, err := conflicts.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, rec.IsPending())
}

func TestResolve_RevisionMismatchDetected(t *testing.T) {
	ctrl := gomock.NewController(t)

	conflicts := mock.NewMockConflictRepository(ctrl)
	docs := store.NewMemoryDocumentStore()

	first := pendingDataConflict()
	raced := first
	raced.Revision = first.Revision + 1

	conflicts.EXPECT().Get(gomock.Any(), "c-1").Return(first, nil)
	conflicts.EXPECT().Get(gomock.Any(), "c-1").Return(raced, nil)

	resolver := NewConflictResolver(conflicts, docs, utils.NewUUIDGenerator(), logger.Nop())

	_, err := resolver.Resolve(context.Background(), "c-1", models.ResolutionKeepLocal, nil)
	assert.ErrorIs(t, err, ErrConflictRevisionMismatch)
}

func TestMergeHealth_CommutativeAndIdempotent(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	forward := models.ConflictRecord{
		ID:            "c-f",
		DocumentPath:  "relationships/rel-1",
		ConflictType:  models.ConflictRelationshipHealth,
		LocalVersion:  models.Snapshot{models.FieldRelationshipHealth: 8},
		ServerVersion: models.Snapshot{models.FieldRelationshipHealth: 6},
		Status:        models.ConflictPending,
	}
	reversed := forward
	reversed.ID = "c-r"
	reversed.LocalVersion = forward.ServerVersion
	reversed.ServerVersion = forward.LocalVersion

	require.NoError(t, f.conflicts.Save(ctx, forward))
	require.NoError(t, f.conflicts.Save(ctx, reversed))

	a, err := f.resolver.Resolve(ctx, "c-f", models.ResolutionMerge, nil)
	require.NoError(t, err)
	b, err := f.resolver.Resolve(ctx, "c-r", models.ResolutionMerge, nil)
	require.NoError(t, err)

	ah, _ := a.MergedResult.Int(models.FieldRelationshipHealth)
	bh, _ := b.MergedResult.Int(models.FieldRelationshipHealth)
	assert.Equal(t, ah, bh)

	// Re-merging a result with itself changes nothing.
	again := models.ConflictRecord{
		ID:            "c-a",
		DocumentPath:  "relationships/rel-1",
		ConflictType:  models.ConflictRelationshipHealth,
		LocalVersion:  a.MergedResult,
		ServerVersion: a.MergedResult,
		Status:        models.ConflictPending,
	}
	require.NoError(t, f.conflicts.Save(ctx, again))

	c, err := f.resolver.Resolve(ctx, "c-a", models.ResolutionMerge, nil)
	require.NoError(t, err)
	ch, _ := c.MergedResult.Int(models.FieldRelationshipHealth)
	assert.Equal(t, ah, ch)
}

func TestResolve_InteractionMergeKeepsBothRecords(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	localTS := baseTime.Add(20 * time.Second)
	rec := models.ConflictRecord{
		ID:           "c-1",
		DocumentPath: "interactions/int-1",
		ConflictType: models.ConflictInteractionMerge,
		LocalVersion: models.Snapshot{
			models.FieldID:              "int-1",
			models.FieldInteractionType: "conversation",
			models.FieldNotes:           "talked on the phone",
		},
		ServerVersion: models.Snapshot{
			models.FieldID:              "int-1",
			models.FieldInteractionType: "conversation",
			models.FieldNotes:           "met at the office",
		},
		LocalTimestamp:  localTS,
		ServerTimestamp: baseTime,
		Status:          models.ConflictPending,
	}
	require.NoError(t, f.conflicts.Save(ctx, rec))

	resolved, err := f.resolver.Resolve(ctx, "c-1", models.ResolutionMerge, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ConflictResolved, resolved.Status)

	// Original path keeps the server version.
	original, err := f.docs.Get(ctx, "interactions/int-1")
	require.NoError(t, err)
	assert.Equal(t, "met at the office", original.Fields.String(models.FieldNotes))

	// The local version survives as a sibling, one second later.
	sibling, err := f.docs.Get(ctx, "interactions/int-1_merged")
	require.NoError(t, err)
	assert.Equal(t, "int-1_merged", sibling.Fields.String(models.FieldID))
	assert.Equal(t, "talked on the phone", sibling.Fields.String(models.FieldNotes))

	ts, ok := sibling.Fields.Time(models.FieldTimestamp)
	require.True(t, ok)
	assert.True(t, ts.Equal(localTS.Add(time.Second)))
}

func TestAttemptAutomatic(t *testing.T) {
	tests := []struct {
		name         string
		conflictType models.ConflictType
		wantResolved bool
	}{
		{name: "health conflict auto resolves", conflictType: models.ConflictRelationshipHealth, wantResolved: true},
		{name: "interaction merge auto resolves", conflictType: models.ConflictInteractionMerge, wantResolved: true},
		{name: "data conflict needs a human", conflictType: models.ConflictRelationshipData, wantResolved: false},
		{name: "generic conflict needs a human", conflictType: models.ConflictSync, wantResolved: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newResolverFixture(t)
			ctx := context.Background()

			rec := pendingDataConflict()
			rec.ConflictType = test.conflictType
			require.NoError(t, f.conflicts.Save(ctx, rec))

			resolved, ok, err := f.resolver.AttemptAutomatic(ctx, rec)
			require.NoError(t, err)
			require.Equal(t, test.wantResolved, ok)

			if !test.wantResolved {
				stored, getErr := f.conflicts.Get(ctx, rec.ID)
				require.NoError(t, getErr)
				assert.True(t, stored.IsPending())
				return
			}

			assert.Equal(t, models.ConflictResolved, resolved.Status)
			assert.Equal(t, models.ResolvedBySystem, resolved.ResolvedBy)
			assert.Equal(t, models.ResolutionAutomatic, resolved.Resolution)
		})
	}
}

func TestIgnore(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	require.NoError(t, f.conflicts.Save(ctx, pendingDataConflict()))

	require.NoError(t, f.resolver.Ignore(ctx, "c-1"))

	rec, err := f.conflicts.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, models.ConflictIgnored, rec.Status)

	// Ignoring writes nothing to the conflicted document.
	_, err = f.docs.Get(ctx, "relationships/rel-1")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)

	// But it leaves an audit trail.
	entries, err := f.docs.List(ctx, store.AuditPrefix)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
