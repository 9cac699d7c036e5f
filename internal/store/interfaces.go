package store

import (
	"context"
	"time"

	"github.com/avoronov/kinsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mocks.go -package=mock

// Document is one stored document together with its server-side update time.
// The update time is the arbitration input for conflict detection: a queued
// write whose timestamp falls within the conflict window of UpdatedAt is
// treated as concurrent.
type Document struct {
	Path      string
	Fields    models.Snapshot
	UpdatedAt time.Time
}

// DocumentChange is one change notification delivered by
// [DocumentStore.OnChange].
type DocumentChange struct {
	Path      string
	Before    models.Snapshot
	After     models.Snapshot
	Timestamp time.Time
}

// DocumentStore is the shared document store consumed as an external
// collaborator. Implementations must make SetMerge a single-document atomic
// operation: fields are merged into the existing document, never a blind
// whole-document overwrite.
//
// List is the minimal query surface the conflict store and device registry
// need: all documents whose path starts with prefix.
type DocumentStore interface {
	Get(ctx context.Context, path string) (Document, error)
	SetMerge(ctx context.Context, path string, fields models.Snapshot) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]Document, error)
	OnChange(ctx context.Context, prefix string) (<-chan DocumentChange, error)
}

// QueueRepository is the durable, per-device FIFO log of pending writes.
// Operations survive process restarts; enqueue order is the drain order.
type QueueRepository interface {
	// Enqueue appends op to the device's queue.
	Enqueue(ctx context.Context, op models.SyncOperation) error

	// List returns all pending operations for the device in enqueue order.
	List(ctx context.Context, deviceID string) ([]models.SyncOperation, error)

	// Peek returns the head of the device's queue.
	// Returns ErrOperationNotFound when the queue is empty.
	Peek(ctx context.Context, deviceID string) (models.SyncOperation, error)

	// Remove deletes the operation with the given ID.
	Remove(ctx context.Context, opID string) error

	// IncrementAttempts bumps the transient-failure counter of the
	// operation and returns the new value.
	IncrementAttempts(ctx context.Context, opID string) (int, error)

	// Len returns the number of pending operations for the device.
	Len(ctx context.Context, deviceID string) (int, error)
}

// ConflictRepository persists ConflictRecords in the shared document store
// under conflicts/{id}.
type ConflictRepository interface {
	// Save upserts the record.
	Save(ctx context.Context, rec models.ConflictRecord) error

	// Get returns the record with the given ID.
	// Returns ErrConflictNotFound when absent.
	Get(ctx context.Context, id string) (models.ConflictRecord, error)

	// FindPendingByPath returns the pending record for documentPath, if
	// any. Used to fold repeat detections into the existing record.
	FindPendingByPath(ctx context.Context, documentPath string) (models.ConflictRecord, bool, error)

	// ListPending returns all pending records.
	ListPending(ctx context.Context) ([]models.ConflictRecord, error)

	// ListResolvedBefore returns up to limit resolved records whose
	// ResolvedAt is before cutoff, oldest first.
	ListResolvedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ConflictRecord, error)

	// Delete removes the record. Pending records are never deleted;
	// deleting one returns ErrConflictStillPending.
	Delete(ctx context.Context, id string) error
}

// DeviceRepository persists DeviceSyncStatus entries in the shared document
// store under deviceRegistry/{deviceId}.
type DeviceRepository interface {
	// Save upserts the device entry.
	Save(ctx context.Context, status models.DeviceSyncStatus) error

	// Get returns the entry for deviceID.
	// Returns ErrDeviceNotFound when absent.
	Get(ctx context.Context, deviceID string) (models.DeviceSyncStatus, error)

	// List returns all registered devices.
	List(ctx context.Context) ([]models.DeviceSyncStatus, error)
}
