// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package service

import (
	"context"
	"time"

	"github.com/avoronov/kinsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mocks.go -package=mock

// ConflictDetector decides whether two versions of the same document are a
// concurrent modification. Detect is pure over its inputs; persisting the
// returned record is the caller's job.
type ConflictDetector interface {
	// Detect compares the local (queued) and server versions of the
	// document at path. It returns the resulting conflict record and true
	// when the two writes are concurrent and differ on a conflict
	// sensitive field, false otherwise. Malformed input (nil snapshots,
	// zero timestamps) is treated as no conflict.
	Detect(path, originDeviceID string, local, server models.Snapshot, localTS, serverTS time.Time) (models.ConflictRecord, bool)
}

// ConflictResolver drives the conflict record state machine:
// pending -> resolved(system) | resolved(user) | ignored.
type ConflictResolver interface {
	// Resolve applies the chosen resolution to the pending record with the
	// given ID, writes the merged result to the document store, and marks
	// the record resolved. The manual snapshot is consulted only for
	// ResolutionManualResolve. If the store write fails the record stays pending
	// and the error is retryable.
	Resolve(ctx context.Context, conflictID string, resolution models.Resolution, manual models.Snapshot) (models.ConflictRecord, error)

	// AttemptAutomatic resolves rec without user input when its type is
	// safe to auto-merge. It returns the updated record and true when an
	// automatic resolution was applied, false when the record must stay
	// pending for a human.
	AttemptAutomatic(ctx context.Context, rec models.ConflictRecord) (models.ConflictRecord, bool, error)

	// Ignore marks the pending record ignored without writing anything to
	// the document store. This is an administrative action and is logged
	// as a data loss risk.
	Ignore(ctx context.Context, conflictID string) error
}

// SyncOrchestrator drains this device's operation queue against the shared
// document store, routing concurrent writes through detection and
// resolution.
type SyncOrchestrator interface {
	// Enqueue appends op to the durable queue and, when online, triggers
	// an opportunistic drain.
	Enqueue(ctx context.Context, op models.SyncOperation) error

	// Drain applies all queued operations for this device in enqueue
	// order. A context cancellation mid-drain is safe: applied operations
	// stay applied, the rest stay queued.
	// Operations dropped on retry exhaustion are reported through
	// [ErrRetryExhausted] after the rest of the queue has drained.
	Drain(ctx context.Context) (models.SyncResult, error)

	// Sync applies the given operations in order. Drain is Sync over the
	// current queue contents.
	Sync(ctx context.Context, ops []models.SyncOperation) (models.SyncResult, error)

	// SetOnline records a connectivity transition. A transition from down
	// to up triggers a drain.
	SetOnline(ctx context.Context, online bool)

	// Status reports the engine's current state for the status query.
	Status(ctx context.Context) (models.EngineStatus, error)

	// Stats returns a copy of the process-wide sync counters.
	Stats() models.SyncStats
}

// DeviceService maintains the device registry.
type DeviceService interface {
	// Register upserts a device entry.
	Register(ctx context.Context, device models.DeviceSyncStatus) error

	// UpdateStatus overwrites the sync status of deviceID.
	UpdateStatus(ctx context.Context, deviceID string, status models.SyncState) error

	// RecomputeStatus derives the status of deviceID from current queue
	// depth and pending conflicts, persists it, and returns it.
	RecomputeStatus(ctx context.Context, deviceID string, online bool) (models.SyncState, error)

	// List returns all registered devices.
	List(ctx context.Context) ([]models.DeviceSyncStatus, error)
}
