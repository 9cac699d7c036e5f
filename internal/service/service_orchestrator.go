// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/internal/utils"
	"github.com/avoronov/kinsync/models"
	"github.com/sethvargo/go-retry"
)

// In-drain backoff for transient store failures. The persistent attempts
// counter in the queue bounds retries across drains; this bounds them
// within one.
const (
	applyRetryBase = 200 * time.Millisecond
	applyRetryMax  = 2
)

type syncOrchestrator struct {
	deviceID    string
	maxAttempts int

	queue     store.QueueRepository
	conflicts store.ConflictRepository
	docs      store.DocumentStore
	detector  ConflictDetector
	resolver  ConflictResolver
	devices   DeviceService

	uuid *utils.UUIDGenerator
	now  func() time.Time

	// drainMu serializes the list-apply-remove sequence. Drains start
	// from several places (background job tick, opportunistic drain on
	// enqueue, reconnect, the HTTP handler); two running at once would
	// list the same queue snapshot and re-apply removed operations.
	drainMu sync.Mutex

	mu             sync.Mutex
	stats          models.SyncStats
	online         bool
	syncInProgress bool

	logger *logger.Logger
}

// NewSyncOrchestrator constructs the [SyncOrchestrator] for this device.
// The orchestrator starts offline; connectivity is reported via SetOnline.
func NewSyncOrchestrator(
	deviceCfg config.Device,
	syncCfg config.Sync,
	queue store.QueueRepository,
	conflicts store.ConflictRepository,
	docs store.DocumentStore,
	detector ConflictDetector,
	resolver ConflictResolver,
	devices DeviceService,
	uuid *utils.UUIDGenerator,
	logger *logger.Logger,
) SyncOrchestrator {
	return &syncOrchestrator{
		deviceID:    deviceCfg.ID,
		maxAttempts: syncCfg.MaxAttempts,
		queue:       queue,
		conflicts:   conflicts,
		docs:        docs,
		detector:    detector,
		resolver:    resolver,
		devices:     devices,
		uuid:        uuid,
		now:         time.Now,
		logger:      logger,
	}
}

// Enqueue implements [SyncOrchestrator].
func (s *syncOrchestrator) Enqueue(ctx context.Context, op models.SyncOperation) error {
	if op.OriginDeviceID == "" {
		// Locally produced operations belong to this device's queue.
		op.OriginDeviceID = s.deviceID
	}

	if err := s.queue.Enqueue(ctx, op); err != nil {
		return err
	}

	if s.isOnline() {
		// Opportunistic drain. A failure here is not an enqueue
		// failure: the operation is durably queued either way.
		if _, err := s.Drain(ctx); err != nil {
			logger.FromContext(ctx).Warn().
				Str("func", "syncOrchestrator.Enqueue").
				Str("op_id", op.ID).
				Msg("opportunistic drain failed, operation stays queued")
		}
		return nil
	}

	_, err := s.devices.RecomputeStatus(ctx, s.deviceID, false)
	return err
}

// Drain implements [SyncOrchestrator].
func (s *syncOrchestrator) Drain(ctx context.Context) (models.SyncResult, error) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	ops, err := s.queue.List(ctx, s.deviceID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("list queue: %w", err)
	}

	return s.sync(ctx, ops)
}

// Sync implements [SyncOrchestrator].
func (s *syncOrchestrator) Sync(ctx context.Context, ops []models.SyncOperation) (models.SyncResult, error) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	return s.sync(ctx, ops)
}

// sync applies ops strictly in order; the first operation that keeps
// failing transiently stops the run so this device's write order is
// preserved. Everything applied before a stop stays applied, the rest
// stays queued. An operation dropped on retry exhaustion does not stop
// the run but surfaces as [ErrRetryExhausted] once the run completes.
// Callers hold drainMu.
func (s *syncOrchestrator) sync(ctx context.Context, ops []models.SyncOperation) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	s.setSyncInProgress(true)
	defer s.setSyncInProgress(false)

	result := models.SyncResult{SyncTime: s.now()}

	var runErr, dropErr error
	for _, op := range ops {
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}

		conflicted, err := s.applyWithRetry(ctx, op)
		if err != nil {
			failErr := s.handleApplyFailure(ctx, op, err)
			if errors.Is(failErr, ErrRetryExhausted) {
				// The operation is dropped; the queue keeps draining.
				dropErr = failErr
				continue
			}
			runErr = failErr
			break
		}

		if remErr := s.queue.Remove(ctx, op.ID); remErr != nil && !errors.Is(remErr, store.ErrOperationNotFound) {
			runErr = fmt.Errorf("remove applied operation: %w", remErr)
			break
		}

		if conflicted {
			result.ConflictsDetected++
		} else {
			result.OperationsSynced++
		}
	}

	s.recordRun(runErr)

	if runErr == nil {
		runErr = dropErr
	}

	if _, err := s.devices.RecomputeStatus(ctx, s.deviceID, s.isOnline()); err != nil {
		log.Warn().
			Str("func", "syncOrchestrator.Sync").
			Str("device_id", s.deviceID).
			Msg("failed to recompute device status after sync")
	}

	return result, runErr
}

// applyWithRetry wraps one apply in a short exponential backoff for
// transient store failures.
func (s *syncOrchestrator) applyWithRetry(ctx context.Context, op models.SyncOperation) (bool, error) {
	var conflicted bool

	backoff := retry.WithMaxRetries(applyRetryMax, retry.NewExponential(applyRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, applyErr := s.applyOperation(ctx, op)
		if applyErr != nil {
			if errors.Is(applyErr, store.ErrStoreUnavailable) {
				return retry.RetryableError(applyErr)
			}
			return applyErr
		}
		conflicted = c
		return nil
	})

	return conflicted, err
}

// applyOperation applies one queued write. A concurrent write on the target
// document routes through detection; the raw operation is then not applied
// and the document keeps the server version.
func (s *syncOrchestrator) applyOperation(ctx context.Context, op models.SyncOperation) (bool, error) {
	path := op.DocumentPath()

	if op.OpType == models.OpDelete {
		if err := s.docs.Delete(ctx, path); err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
			return false, err
		}
		return false, nil
	}

	existing, err := s.docs.Get(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return false, s.docs.SetMerge(ctx, path, stampOrigin(op))
		}
		return false, err
	}

	// A stored version this device wrote itself is its own in-order
	// history, not a concurrent edit. Only another device's version goes
	// through detection.
	storedOrigin := existing.Fields.String(models.FieldOriginDevice)
	if storedOrigin != "" && storedOrigin == op.OriginDeviceID {
		return false, s.docs.SetMerge(ctx, path, stampOrigin(op))
	}

	serverFields := existing.Fields.Clone()
	delete(serverFields, models.FieldOriginDevice)

	rec, found := s.detector.Detect(path, op.OriginDeviceID, op.Payload, serverFields, op.Timestamp, existing.UpdatedAt)
	if !found {
		return false, s.docs.SetMerge(ctx, path, stampOrigin(op))
	}

	if err = s.registerConflict(ctx, rec); err != nil {
		return false, err
	}

	return true, nil
}

// registerConflict persists a fresh detection, folding it into an already
// pending record for the same path instead of duplicating it. Safe conflict
// types are resolved automatically on the spot; the rest surface a
// notification for the user.
func (s *syncOrchestrator) registerConflict(ctx context.Context, rec models.ConflictRecord) error {
	log := logger.FromContext(ctx)

	existing, found, err := s.conflicts.FindPendingByPath(ctx, rec.DocumentPath)
	if err != nil {
		return err
	}
	if found {
		existing.ServerVersion = rec.ServerVersion.Clone()
		existing.ServerTimestamp = rec.ServerTimestamp
		return s.conflicts.Save(ctx, existing)
	}

	if err = s.conflicts.Save(ctx, rec); err != nil {
		return err
	}

	s.mu.Lock()
	s.stats.ConflictsDetected++
	s.mu.Unlock()

	log.Info().
		Str("func", "syncOrchestrator.registerConflict").
		Str("conflict_id", rec.ID).
		Str("path", rec.DocumentPath).
		Str("conflict_type", string(rec.ConflictType)).
		Msg("conflict detected")

	_, resolved, err := s.resolver.AttemptAutomatic(ctx, rec)
	if err != nil {
		// The record stays pending and the user is notified; a failed
		// automatic attempt must not fail the drain.
		log.Warn().
			Str("func", "syncOrchestrator.registerConflict").
			Str("conflict_id", rec.ID).
			Msg("automatic resolution failed, conflict stays pending")
	}
	if resolved {
		s.mu.Lock()
		s.stats.ConflictsResolved++
		s.mu.Unlock()
		return nil
	}

	return s.notifyConflict(ctx, rec)
}

func (s *syncOrchestrator) notifyConflict(ctx context.Context, rec models.ConflictRecord) error {
	n := models.Notification{
		ID:           s.uuid.Generate(),
		Type:         models.NotificationConflictDetected,
		ConflictID:   rec.ID,
		DocumentPath: rec.DocumentPath,
		CreatedAt:    s.now(),
	}

	fields := models.Snapshot{
		"id":           n.ID,
		"type":         n.Type,
		"conflictId":   n.ConflictID,
		"documentPath": n.DocumentPath,
		"createdAt":    n.CreatedAt,
	}

	if err := s.docs.SetMerge(ctx, store.NotificationsPrefix+n.ID, fields); err != nil {
		return fmt.Errorf("write conflict notification: %w", err)
	}

	return nil
}

// stampOrigin returns the operation's payload with the writing device
// recorded, so later drains can tell this device's own history from
// another device's writes.
func stampOrigin(op models.SyncOperation) models.Snapshot {
	fields := op.Payload.Clone()
	if fields == nil {
		fields = models.Snapshot{}
	}
	fields[models.FieldOriginDevice] = op.OriginDeviceID
	return fields
}

// handleApplyFailure bumps the operation's persistent attempts counter.
// Under budget the operation stays queued and the run stops to preserve
// order; over budget the operation is escalated to [ErrRetryExhausted]
// and removed so it cannot wedge the queue forever.
func (s *syncOrchestrator) handleApplyFailure(ctx context.Context, op models.SyncOperation, applyErr error) error {
	log := logger.FromContext(ctx)

	attempts, err := s.queue.IncrementAttempts(ctx, op.ID)
	if err != nil {
		// Operation not in the durable queue (direct Sync call); fall
		// back to the in-memory counter.
		attempts = op.Attempts + 1
	}

	if attempts < s.maxAttempts {
		log.Warn().
			Str("func", "syncOrchestrator.handleApplyFailure").
			Str("op_id", op.ID).
			Int("attempts", attempts).
			Msg("transient apply failure, operation stays queued")
		return fmt.Errorf("apply %s: %w", op.ID, applyErr)
	}

	log.Error().
		Str("func", "syncOrchestrator.handleApplyFailure").
		Str("op_id", op.ID).
		Str("path", op.DocumentPath()).
		Int("attempts", attempts).
		Msg("retry budget exhausted, dropping operation as permanently failed")

	if remErr := s.queue.Remove(ctx, op.ID); remErr != nil && !errors.Is(remErr, store.ErrOperationNotFound) {
		return remErr
	}

	s.mu.Lock()
	s.stats.FailedSyncs++
	s.mu.Unlock()

	// The queue can keep draining past a permanently failed operation;
	// the sentinel lets callers of Drain observe the drop.
	return fmt.Errorf("%w: operation %s dropped after %d attempts", ErrRetryExhausted, op.ID, attempts)
}

// SetOnline implements [SyncOrchestrator].
func (s *syncOrchestrator) SetOnline(ctx context.Context, online bool) {
	s.mu.Lock()
	wasOnline := s.online
	s.online = online
	s.mu.Unlock()

	if online && !wasOnline {
		if _, err := s.Drain(ctx); err != nil {
			logger.FromContext(ctx).Warn().
				Str("func", "syncOrchestrator.SetOnline").
				Msg("drain on reconnect failed, queue retained")
		}
		return
	}

	if !online {
		if _, err := s.devices.RecomputeStatus(ctx, s.deviceID, false); err != nil {
			logger.FromContext(ctx).Warn().
				Str("func", "syncOrchestrator.SetOnline").
				Msg("failed to mark device offline")
		}
	}
}

// Status implements [SyncOrchestrator].
func (s *syncOrchestrator) Status(ctx context.Context) (models.EngineStatus, error) {
	depth, err := s.queue.Len(ctx, s.deviceID)
	if err != nil {
		return models.EngineStatus{}, err
	}

	pending, err := s.conflicts.ListPending(ctx)
	if err != nil {
		return models.EngineStatus{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return models.EngineStatus{
		IsOnline:          s.online,
		SyncInProgress:    s.syncInProgress,
		PendingOperations: depth,
		PendingConflicts:  len(pending),
		Stats:             s.stats,
	}, nil
}

// Stats implements [SyncOrchestrator].
func (s *syncOrchestrator) Stats() models.SyncStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *syncOrchestrator) isOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *syncOrchestrator) setSyncInProgress(v bool) {
	s.mu.Lock()
	s.syncInProgress = v
	s.mu.Unlock()
}

func (s *syncOrchestrator) recordRun(runErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalSyncs++
	if runErr != nil {
		s.stats.FailedSyncs++
		return
	}
	s.stats.SuccessfulSyncs++
	s.stats.LastFullSync = s.now()
}
