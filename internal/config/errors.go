package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidDeviceConfigs indicates a missing device identity
	// (for example, empty device ID).
	ErrInvalidDeviceConfigs = errors.New("invalid device configuration")
	// ErrInvalidStorageConfigs indicates invalid queue storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidDocStoreConfigs indicates invalid document store settings
	// (for example, missing base URL or zero request timeout).
	ErrInvalidDocStoreConfigs = errors.New("invalid document store configuration")
	// ErrInvalidSyncConfigs indicates invalid sync tunables
	// (for example, a zero conflict window or retry bound).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero drain or sweep interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
