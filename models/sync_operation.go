// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package models

import "time"

// OpType defines the kind of write a SyncOperation carries.
type OpType string

const (
	OpCreate OpType = "create"
	OpUpdate OpType = "update"
	OpDelete OpType = "delete"
)

// Priority orders operations of equal queue position for observability;
// the queue itself stays strictly FIFO per device.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SyncOperation is one queued local write awaiting application against the
// shared document store.
//
// Lifecycle: created on every local edit regardless of connectivity;
// removed from the queue only after the orchestrator confirms it was
// applied, folded into a conflict record, or permanently failed. Transient
// failures leave the operation queued for the next drain.
type SyncOperation struct {
	// ID is the unique operation identifier (UUIDv7).
	ID string `json:"id"`

	// Collection is the target collection, e.g. "relationships" or
	// "interactions".
	Collection string `json:"collection"`

	// DocumentID is the target document within Collection.
	DocumentID string `json:"document_id"`

	// Payload is the opaque field map to apply.
	Payload Snapshot `json:"payload"`

	// OpType is one of create, update, delete.
	OpType OpType `json:"op_type"`

	// OriginDeviceID identifies the device that produced the write.
	OriginDeviceID string `json:"origin_device_id"`

	// Timestamp is the wall-clock time of the local edit. It is compared
	// against the server document's update time by the conflict detector.
	Timestamp time.Time `json:"timestamp"`

	// Priority is high, medium or low.
	Priority Priority `json:"priority"`

	// Attempts counts drain attempts that failed transiently. Once it
	// reaches the configured bound the operation is escalated to a
	// reported sync failure and removed.
	Attempts int `json:"attempts"`
}

// DocumentPath returns the store path "collection/documentID" this
// operation targets.
func (o SyncOperation) DocumentPath() string {
	return o.Collection + "/" + o.DocumentID
}
