package models

import "time"

// SyncStats holds process-wide sync counters. Observability only; no
// correctness decisions are made from these values.
type SyncStats struct {
	TotalSyncs        int64     `json:"total_syncs"`
	SuccessfulSyncs   int64     `json:"successful_syncs"`
	FailedSyncs       int64     `json:"failed_syncs"`
	ConflictsDetected int64     `json:"conflicts_detected"`
	ConflictsResolved int64     `json:"conflicts_resolved"`
	LastFullSync      time.Time `json:"last_full_sync"`
}

// SyncResult summarises one drain pass.
type SyncResult struct {
	OperationsSynced  int       `json:"operations_synced"`
	ConflictsDetected int       `json:"conflicts_detected"`
	SyncTime          time.Time `json:"sync_time"`
}

// EngineStatus is the answer to the status query exposed to the
// user-facing layer.
type EngineStatus struct {
	IsOnline          bool      `json:"is_online"`
	SyncInProgress    bool      `json:"sync_in_progress"`
	PendingOperations int       `json:"pending_operations"`
	PendingConflicts  int       `json:"pending_conflicts"`
	Stats             SyncStats `json:"stats"`
}
