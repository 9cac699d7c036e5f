package models

import "time"

// AuditEntry is written to the audit collection before a ConflictRecord
// leaves pending, so compliance tooling sees every resolution with its
// provenance.
type AuditEntry struct {
	ID         string     `json:"id"`
	Action     string     `json:"action"` // always "conflict_resolution"
	ConflictID string     `json:"conflict_id"`
	Resolution Resolution `json:"resolution"`
	ResolvedBy ResolvedBy `json:"resolved_by"`
	Automated  bool       `json:"automated"`
	At         time.Time  `json:"at"`
}

// AuditActionConflictResolution is the only audit action this subsystem emits.
const AuditActionConflictResolution = "conflict_resolution"

// Notification is written to the notifications collection for the UI layer
// to render when a conflict needs user attention.
type Notification struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"` // always "conflict_detected"
	ConflictID   string    `json:"conflict_id"`
	DocumentPath string    `json:"document_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationConflictDetected is the only notification type this
// subsystem emits.
const NotificationConflictDetected = "conflict_detected"
