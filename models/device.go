package models

import "time"

// SyncState is the coarse sync condition of one device.
type SyncState string

const (
	// DeviceSynced: queue empty and no pending conflicts for this device.
	DeviceSynced SyncState = "synced"

	// DevicePending: queued operations awaiting drain.
	DevicePending SyncState = "pending"

	// DeviceConflict: at least one pending ConflictRecord originated from
	// this device.
	DeviceConflict SyncState = "conflict"

	// DeviceOffline: connectivity to the document store is down.
	DeviceOffline SyncState = "offline"
)

// DeviceSyncStatus is the registry entry for one device of one user.
type DeviceSyncStatus struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Platform   string    `json:"platform"`
	LastSyncAt time.Time `json:"last_sync_at"`
	SyncStatus SyncState `json:"sync_status"`
}
