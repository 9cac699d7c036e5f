// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package models

import "time"

// ConflictType classifies a detected concurrent modification.
type ConflictType string

const (
	// ConflictRelationshipData covers concurrent edits to free-form
	// relationship fields (notes, lastContact, intensity). Not safe to
	// auto-merge; stays pending until a user resolves it.
	ConflictRelationshipData ConflictType = "relationship_data_conflict"

	// ConflictInteractionMerge covers two interaction records of the same
	// type logged concurrently. Both are treated as legitimate events and
	// merged automatically into two sibling documents.
	ConflictInteractionMerge ConflictType = "interaction_merge"

	// ConflictSync is the generic classification for concurrent writes to
	// documents outside the relationship/interaction collections.
	ConflictSync ConflictType = "sync_conflict"

	// ConflictRelationshipHealth covers concurrent edits whose only
	// diverging sensitive field is the health score. Resolved
	// automatically to the maximum of the two values.
	ConflictRelationshipHealth ConflictType = "relationship_health_conflict"
)

// ConflictStatus is the lifecycle state of a ConflictRecord.
type ConflictStatus string

const (
	ConflictPending  ConflictStatus = "pending"
	ConflictResolved ConflictStatus = "resolved"
	ConflictIgnored  ConflictStatus = "ignored"
)

// Resolution names the strategy applied to a conflict.
type Resolution string

const (
	ResolutionKeepLocal     Resolution = "keep_local"
	ResolutionUseServer     Resolution = "use_server"
	ResolutionMerge         Resolution = "merge"
	ResolutionManualResolve Resolution = "manual_resolve"
	ResolutionAutomatic     Resolution = "automatic"
)

// ResolvedBy identifies who applied a resolution.
type ResolvedBy string

const (
	ResolvedBySystem ResolvedBy = "system"
	ResolvedByUser   ResolvedBy = "user"
)

// ConflictRecord tracks one detected concurrent modification of a document.
//
// At most one pending record may exist per DocumentPath: a second detection
// on the same path while one is pending is folded into the existing record
// (ServerVersion refreshed), never duplicated. Records are created by the
// conflict detector, mutated only by the resolver, never deleted while
// pending, and removed by the retention sweeper once resolved and older
// than the retention window.
type ConflictRecord struct {
	// ID is the unique conflict identifier (UUIDv7).
	ID string `json:"id"`

	// DocumentPath is "collection/documentID" of the contested document.
	DocumentPath string `json:"document_path"`

	// ConflictType classifies the conflict for resolution dispatch.
	ConflictType ConflictType `json:"conflict_type"`

	// OriginDeviceID is the device whose queued write triggered detection.
	// Drives the device registry's conflict status.
	OriginDeviceID string `json:"origin_device_id"`

	// DetectedAt is when the conflict was first detected.
	DetectedAt time.Time `json:"detected_at"`

	// LocalVersion is the full field snapshot of this device's write.
	LocalVersion Snapshot `json:"local_version"`

	// ServerVersion is the full field snapshot held by the store at
	// detection time. Refreshed when a repeat detection folds in.
	ServerVersion Snapshot `json:"server_version"`

	// LocalTimestamp and ServerTimestamp are the wall-clock times of the
	// two competing writes.
	LocalTimestamp  time.Time `json:"local_timestamp"`
	ServerTimestamp time.Time `json:"server_timestamp"`

	// Status is pending, resolved or ignored.
	Status ConflictStatus `json:"status"`

	// Resolution is set once the record leaves pending.
	Resolution Resolution `json:"resolution,omitempty"`

	// ResolvedAt is when the resolution write was confirmed.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// ResolvedBy is system for automatic resolutions, user otherwise.
	ResolvedBy ResolvedBy `json:"resolved_by,omitempty"`

	// MergedResult is the snapshot written back to the store. For
	// interaction merges it is the sibling record created alongside the
	// untouched server version.
	MergedResult Snapshot `json:"merged_result,omitempty"`

	// Revision is an optimistic-concurrency counter bumped on every
	// mutation of this record. A resolution carrying a stale revision is
	// rejected instead of silently overwriting a concurrent resolution.
	Revision int64 `json:"revision"`
}

// IsPending reports whether the record still awaits resolution.
func (c *ConflictRecord) IsPending() bool {
	return c.Status == ConflictPending
}
