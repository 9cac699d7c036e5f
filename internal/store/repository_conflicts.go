// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/models"
)

// Logical layout of engine state inside the shared document store.
const (
	ConflictsPrefix     = "conflicts/"
	DevicesPrefix       = "deviceRegistry/"
	NotificationsPrefix = "notifications/"
	AuditPrefix         = "audit/"
)

// conflictRepository persists [models.ConflictRecord] values in the shared
// document store under conflicts/{id}, so every device sees the same
// conflict state.
type conflictRepository struct {
	docs   DocumentStore
	logger *logger.Logger
}

// NewConflictRepository constructs a [ConflictRepository] backed by the
// given document store.
func NewConflictRepository(docs DocumentStore, logger *logger.Logger) ConflictRepository {
	return &conflictRepository{
		docs:   docs,
		logger: logger,
	}
}

// Save implements [ConflictRepository]. The record is written with a single
// SetMerge, so a concurrent reader never observes a half-written record.
func (c *conflictRepository) Save(ctx context.Context, rec models.ConflictRecord) error {
	log := logger.FromContext(ctx)

	fields, err := conflictToFields(rec)
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.Save").
			Str("conflict_id", rec.ID).
			Msg("failed to encode conflict record")
		return fmt.Errorf("encode conflict record: %w", err)
	}

	if err = c.docs.SetMerge(ctx, ConflictsPrefix+rec.ID, fields); err != nil {
		log.Err(err).
			Str("func", "conflictRepository.Save").
			Str("conflict_id", rec.ID).
			Msg("failed to persist conflict record")
		return fmt.Errorf("persist conflict record: %w", err)
	}

	return nil
}

// Get implements [ConflictRepository].
func (c *conflictRepository) Get(ctx context.Context, id string) (models.ConflictRecord, error) {
	doc, err := c.docs.Get(ctx, ConflictsPrefix+id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return models.ConflictRecord{}, ErrConflictNotFound
		}
		return models.ConflictRecord{}, fmt.Errorf("get conflict record: %w", err)
	}

	return conflictFromFields(doc.Fields)
}

// FindPendingByPath implements [ConflictRepository].
func (c *conflictRepository) FindPendingByPath(ctx context.Context, documentPath string) (models.ConflictRecord, bool, error) {
	records, err := c.list(ctx)
	if err != nil {
		return models.ConflictRecord{}, false, err
	}

	for _, rec := range records {
		if rec.DocumentPath == documentPath && rec.IsPending() {
			return rec, true, nil
		}
	}

	return models.ConflictRecord{}, false, nil
}

// ListPending implements [ConflictRepository].
func (c *conflictRepository) ListPending(ctx context.Context) ([]models.ConflictRecord, error) {
	records, err := c.list(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]models.ConflictRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsPending() {
			pending = append(pending, rec)
		}
	}

	return pending, nil
}

// ListResolvedBefore implements [ConflictRepository]. Oldest first, so the
// sweeper always works through the backlog in resolution order.
func (c *conflictRepository) ListResolvedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ConflictRecord, error) {
	records, err := c.list(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make([]models.ConflictRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status != models.ConflictResolved || rec.ResolvedAt == nil {
			continue
		}
		if rec.ResolvedAt.Before(cutoff) {
			resolved = append(resolved, rec)
		}
	}

	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].ResolvedAt.Before(*resolved[j].ResolvedAt)
	})

	if limit > 0 && len(resolved) > limit {
		resolved = resolved[:limit]
	}

	return resolved, nil
}

// Delete implements [ConflictRepository]. Pending records are refused
// regardless of age.
func (c *conflictRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	rec, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.IsPending() {
		return ErrConflictStillPending
	}

	if err = c.docs.Delete(ctx, ConflictsPrefix+id); err != nil {
		log.Err(err).
			Str("func", "conflictRepository.Delete").
			Str("conflict_id", id).
			Msg("failed to delete conflict record")
		return fmt.Errorf("delete conflict record: %w", err)
	}

	return nil
}

func (c *conflictRepository) list(ctx context.Context) ([]models.ConflictRecord, error) {
	log := logger.FromContext(ctx)

	docs, err := c.docs.List(ctx, ConflictsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list conflict records: %w", err)
	}

	records := make([]models.ConflictRecord, 0, len(docs))
	for _, doc := range docs {
		rec, decErr := conflictFromFields(doc.Fields)
		if decErr != nil {
			// A malformed record must not block listing the rest.
			log.Warn().
				Str("func", "conflictRepository.list").
				Str("path", doc.Path).
				Msg("skipping undecodable conflict record")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// conflictToFields flattens a record into the document store's field map
// via its JSON form.
func conflictToFields(rec models.ConflictRecord) (models.Snapshot, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	var fields models.Snapshot
	if err = json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	return fields, nil
}

func conflictFromFields(fields models.Snapshot) (models.ConflictRecord, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return models.ConflictRecord{}, err
	}

	var rec models.ConflictRecord
	if err = json.Unmarshal(raw, &rec); err != nil {
		return models.ConflictRecord{}, fmt.Errorf("decode conflict record: %w", err)
	}

	return rec, nil
}
