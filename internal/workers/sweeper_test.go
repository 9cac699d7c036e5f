// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package workers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sweepNow = time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)

func newTestSweeper(t *testing.T, batchSize int) (*retentionSweeper, store.ConflictRepository) {
	t.Helper()

	mem := store.NewMemoryDocumentStore()
	conflicts := store.NewConflictRepository(mem, logger.Nop())

	s := NewRetentionSweeper(conflicts, config.Sync{
		RetentionWindow: config.DefaultRetentionWindow,
		SweepBatchSize:  batchSize,
	}, config.Workers{
		SweepInterval: config.DefaultSweepInterval,
	}, logger.Nop()).(*retentionSweeper)
	s.now = func() time.Time { return sweepNow }

	return s, conflicts
}

func resolvedRecord(id string, age time.Duration) models.ConflictRecord {
	resolvedAt := sweepNow.Add(-age)
	return models.ConflictRecord{
		ID:           id,
		DocumentPath: "relationships/rel-" + id,
		ConflictType: models.ConflictRelationshipData,
		DetectedAt:   resolvedAt.Add(-time.Minute),
		Status:       models.ConflictResolved,
		Resolution:   models.ResolutionKeepLocal,
		ResolvedAt:   &resolvedAt,
		ResolvedBy:   models.ResolvedByUser,
	}
}

func TestSweepOnce_RetentionBoundary(t *testing.T) {
	s, conflicts := newTestSweeper(t, config.DefaultSweepBatchSize)
	ctx := context.Background()

	require.NoError(t, conflicts.Save(ctx, resolvedRecord("old", 31*24*time.Hour)))
	require.NoError(t, conflicts.Save(ctx, resolvedRecord("recent", 29*24*time.Hour)))

	require.NoError(t, s.sweepOnce(ctx))

	_, err := conflicts.Get(ctx, "old")
	assert.ErrorIs(t, err, store.ErrConflictNotFound)

	_, err = conflicts.Get(ctx, "recent")
	assert.NoError(t, err)
}

func TestSweepOnce_NeverDeletesPending(t *testing.T) {
	s, conflicts := newTestSweeper(t, config.DefaultSweepBatchSize)
	ctx := context.Background()

	stale := models.ConflictRecord{
		ID:           "stale-pending",
		DocumentPath: "relationships/rel-1",
		ConflictType: models.ConflictRelationshipData,
		DetectedAt:   sweepNow.Add(-90 * 24 * time.Hour),
		Status:       models.ConflictPending,
	}
	require.NoError(t, conflicts.Save(ctx, stale))

	require.NoError(t, s.sweepOnce(ctx))

	rec, err := conflicts.Get(ctx, "stale-pending")
	require.NoError(t, err)
	assert.True(t, rec.IsPending())
}

func TestSweepOnce_DrainsBacklogInBatches(t *testing.T) {
	s, conflicts := newTestSweeper(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, conflicts.Save(ctx, resolvedRecord(fmt.Sprintf("old-%d", i), 40*24*time.Hour)))
	}

	require.NoError(t, s.sweepOnce(ctx))

	for i := 0; i < 5; i++ {
		_, err := conflicts.Get(ctx, fmt.Sprintf("old-%d", i))
		assert.ErrorIs(t, err, store.ErrConflictNotFound)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	s, _ := newTestSweeper(t, config.DefaultSweepBatchSize)

	s.Start(context.Background())
	s.Stop()
}
