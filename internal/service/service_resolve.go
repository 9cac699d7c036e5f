// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/internal/utils"
	"github.com/avoronov/kinsync/models"
)

// mergedIDSuffix marks the sibling document produced by an interaction
// merge.
const mergedIDSuffix = "_merged"

// siblingTimestampOffset keeps the merged sibling strictly after the
// original so ordered interaction queries list both.
const siblingTimestampOffset = time.Second

type conflictResolver struct {
	conflicts store.ConflictRepository
	docs      store.DocumentStore

	uuid *utils.UUIDGenerator
	now  func() time.Time

	logger *logger.Logger
}

// NewConflictResolver constructs a [ConflictResolver] writing merged
// results to docs and resolution state to conflicts.
func NewConflictResolver(conflicts store.ConflictRepository, docs store.DocumentStore, uuid *utils.UUIDGenerator, logger *logger.Logger) ConflictResolver {
	return &conflictResolver{
		conflicts: conflicts,
		docs:      docs,
		uuid:      uuid,
		now:       time.Now,
		logger:    logger,
	}
}

// Resolve implements [ConflictResolver].
func (r *conflictResolver) Resolve(ctx context.Context, conflictID string, resolution models.Resolution, manual models.Snapshot) (models.ConflictRecord, error) {
	rec, err := r.conflicts.Get(ctx, conflictID)
	if err != nil {
		return models.ConflictRecord{}, err
	}

	return r.apply(ctx, rec, resolution, models.ResolvedByUser, manual)
}

// AttemptAutomatic implements [ConflictResolver]. Only interaction merges
// and health conflicts are safe to resolve without a human: free text notes
// and subjective edits are not.
func (r *conflictResolver) AttemptAutomatic(ctx context.Context, rec models.ConflictRecord) (models.ConflictRecord, bool, error) {
	switch rec.ConflictType {
	case models.ConflictInteractionMerge, models.ConflictRelationshipHealth:
	default:
		return rec, false, nil
	}

	resolved, err := r.apply(ctx, rec, models.ResolutionAutomatic, models.ResolvedBySystem, nil)
	if err != nil {
		return rec, false, err
	}

	return resolved, true, nil
}

// Ignore implements [ConflictResolver].
func (r *conflictResolver) Ignore(ctx context.Context, conflictID string) error {
	log := logger.FromContext(ctx)

	rec, err := r.conflicts.Get(ctx, conflictID)
	if err != nil {
		return err
	}
	if !rec.IsPending() {
		return ErrConflictNotPending
	}

	// Ignoring discards the local version without a merge. Loud on
	// purpose.
	log.Error().
		Str("func", "conflictResolver.Ignore").
		Str("conflict_id", rec.ID).
		Str("path", rec.DocumentPath).
		Msg("conflict ignored without resolution, local changes are lost")

	if err = r.writeAudit(ctx, rec, "", models.ResolvedByUser, false); err != nil {
		return err
	}

	rec.Status = models.ConflictIgnored
	resolvedAt := r.now()
	rec.ResolvedAt = &resolvedAt
	rec.ResolvedBy = models.ResolvedByUser
	rec.Revision++

	return r.conflicts.Save(ctx, rec)
}

// apply runs the full resolution sequence: compute the merged result, write
// the audit entry, apply the merge to the document store, then move the
// record out of pending. Any failure before the final save leaves the
// record pending and retryable.
func (r *conflictResolver) apply(ctx context.Context, rec models.ConflictRecord, resolution models.Resolution, by models.ResolvedBy, manual models.Snapshot) (models.ConflictRecord, error) {
	log := logger.FromContext(ctx)

	if !rec.IsPending() {
		return models.ConflictRecord{}, ErrConflictNotPending
	}

	merged, err := r.mergedResult(rec, resolution, manual)
	if err != nil {
		return models.ConflictRecord{}, err
	}

	automated := by == models.ResolvedBySystem
	if err = r.writeAudit(ctx, rec, resolution, by, automated); err != nil {
		return models.ConflictRecord{}, err
	}

	if err = r.applyToStore(ctx, rec, resolution, merged); err != nil {
		log.Err(err).
			Str("func", "conflictResolver.apply").
			Str("conflict_id", rec.ID).
			Str("path", rec.DocumentPath).
			Msg("resolution write failed, conflict stays pending")
		return models.ConflictRecord{}, fmt.Errorf("apply resolution: %w", err)
	}

	// Optimistic concurrency guard: if another resolver advanced the
	// record while this one was writing, its resolution wins and this one
	// reports the race instead of overwriting it.
	current, err := r.conflicts.Get(ctx, rec.ID)
	if err != nil {
		return models.ConflictRecord{}, err
	}
	if current.Revision != rec.Revision {
		return models.ConflictRecord{}, ErrConflictRevisionMismatch
	}

	rec.Status = models.ConflictResolved
	rec.Resolution = resolution
	resolvedAt := r.now()
	rec.ResolvedAt = &resolvedAt
	rec.ResolvedBy = by
	rec.MergedResult = merged
	rec.Revision++

	if err = r.conflicts.Save(ctx, rec); err != nil {
		return models.ConflictRecord{}, err
	}

	log.Info().
		Str("func", "conflictResolver.apply").
		Str("conflict_id", rec.ID).
		Str("path", rec.DocumentPath).
		Str("resolution", string(resolution)).
		Bool("automated", automated).
		Msg("conflict resolved")

	return rec, nil
}

// mergedResult computes the snapshot a resolution produces. For interaction
// merges this is the server version unchanged; the sibling document is
// produced separately in applyToStore.
func (r *conflictResolver) mergedResult(rec models.ConflictRecord, resolution models.Resolution, manual models.Snapshot) (models.Snapshot, error) {
	switch resolution {
	case models.ResolutionKeepLocal:
		return rec.LocalVersion.Clone(), nil
	case models.ResolutionUseServer:
		return rec.ServerVersion.Clone(), nil
	case models.ResolutionManualResolve:
		if manual == nil {
			return nil, ErrManualResultRequired
		}
		return manual.Clone(), nil
	case models.ResolutionMerge, models.ResolutionAutomatic:
		return r.merge(rec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResolution, resolution)
	}
}

// merge dispatches on conflict type.
func (r *conflictResolver) merge(rec models.ConflictRecord) (models.Snapshot, error) {
	switch rec.ConflictType {
	case models.ConflictInteractionMerge:
		return rec.ServerVersion.Clone(), nil

	case models.ConflictRelationshipHealth:
		merged := rec.LocalVersion.Clone()
		setMaxInt(merged, models.FieldRelationshipHealth, rec.LocalVersion, rec.ServerVersion)
		return merged, nil

	case models.ConflictRelationshipData:
		merged := unionPreferLocal(rec.LocalVersion, rec.ServerVersion)
		setMaxInt(merged, models.FieldRelationshipHealth, rec.LocalVersion, rec.ServerVersion)
		setMaxTime(merged, models.FieldLastContact, rec.LocalVersion, rec.ServerVersion)
		if notes, ok := mergeNotes(rec.LocalVersion, rec.ServerVersion); ok {
			merged[models.FieldNotes] = notes
		}
		return merged, nil

	default:
		return unionPreferLocal(rec.LocalVersion, rec.ServerVersion), nil
	}
}

// applyToStore writes the merged result. Interaction merges are the one
// case producing two documents: the server version stays at the original
// path and the local version persists as a new sibling record.
func (r *conflictResolver) applyToStore(ctx context.Context, rec models.ConflictRecord, resolution models.Resolution, merged models.Snapshot) error {
	if err := r.docs.SetMerge(ctx, rec.DocumentPath, merged); err != nil {
		return err
	}

	if rec.ConflictType != models.ConflictInteractionMerge {
		return nil
	}
	if resolution != models.ResolutionMerge && resolution != models.ResolutionAutomatic {
		// keep_local / use_server on an interaction conflict picks one
		// side outright, no sibling.
		return nil
	}

	sibling := rec.LocalVersion.Clone()
	siblingID := sibling.String(models.FieldID)
	if siblingID == "" {
		siblingID = lastSegment(rec.DocumentPath)
	}
	siblingID += mergedIDSuffix
	sibling[models.FieldID] = siblingID
	sibling[models.FieldTimestamp] = rec.LocalTimestamp.Add(siblingTimestampOffset)

	siblingPath := collectionOf(rec.DocumentPath) + "/" + siblingID

	return r.docs.SetMerge(ctx, siblingPath, sibling)
}

// writeAudit records the resolution for compliance tooling. The audit entry
// lands before the record leaves pending; an audit write failure aborts the
// resolution.
func (r *conflictResolver) writeAudit(ctx context.Context, rec models.ConflictRecord, resolution models.Resolution, by models.ResolvedBy, automated bool) error {
	entry := models.AuditEntry{
		ID:         r.uuid.Generate(),
		Action:     models.AuditActionConflictResolution,
		ConflictID: rec.ID,
		Resolution: resolution,
		ResolvedBy: by,
		Automated:  automated,
		At:         r.now(),
	}

	fields := models.Snapshot{
		"id":         entry.ID,
		"action":     entry.Action,
		"conflictId": entry.ConflictID,
		"resolution": string(entry.Resolution),
		"resolvedBy": string(entry.ResolvedBy),
		"automated":  entry.Automated,
		"at":         entry.At,
	}

	if err := r.docs.SetMerge(ctx, store.AuditPrefix+entry.ID, fields); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}

	return nil
}

// unionPreferLocal merges field-wise, keeping local where local defines the
// field and filling the rest from server. Defined means the key is present:
// an explicitly set empty local value still wins over the server's.
func unionPreferLocal(local, server models.Snapshot) models.Snapshot {
	merged := local.Clone()
	if merged == nil {
		merged = models.Snapshot{}
	}
	for k, v := range server {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}

func setMaxInt(dst models.Snapshot, field string, local, server models.Snapshot) {
	lv, lok := local.Int(field)
	sv, sok := server.Int(field)
	switch {
	case lok && sok:
		if sv > lv {
			dst[field] = sv
		} else {
			dst[field] = lv
		}
	case lok:
		dst[field] = lv
	case sok:
		dst[field] = sv
	}
}

func setMaxTime(dst models.Snapshot, field string, local, server models.Snapshot) {
	lv, lok := local.Time(field)
	sv, sok := server.Time(field)
	switch {
	case lok && sok:
		if sv.After(lv) {
			dst[field] = sv
		} else {
			dst[field] = lv
		}
	case lok:
		dst[field] = lv
	case sok:
		dst[field] = sv
	}
}

func mergeNotes(local, server models.Snapshot) (string, bool) {
	localNotes := local.String(models.FieldNotes)
	serverNotes := server.String(models.FieldNotes)
	switch {
	case localNotes != "" && serverNotes != "":
		return fmt.Sprintf("%s\n\n[Merged]: %s", serverNotes, localNotes), true
	case localNotes != "":
		return localNotes, true
	case serverNotes != "":
		return serverNotes, true
	}
	return "", false
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
