// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// kinsync engine. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, an
// optional JSON file, and built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Device identifies this device in the shared registry.
	Device Device `envPrefix:"DEVICE_"`

	// Storage holds the local queue database and the remote document
	// store connection settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds the conflict-detection and retention tunables.
	Sync Sync `envPrefix:"SYNC_"`

	// Server holds the local HTTP API address.
	Server Server `envPrefix:"SERVER_"`

	// Workers holds background worker intervals.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged below the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Device describes this device's registry identity.
type Device struct {
	// ID is the stable device identifier used as the queue key and the
	// origin stamped on every operation.
	// Env: DEVICE_ID
	ID string `env:"ID"`

	// Name is the human-readable device label shown in the registry.
	// Env: DEVICE_NAME
	Name string `env:"NAME"`

	// Platform is a free-form platform label (e.g. "ios", "android",
	// "web"). Env: DEVICE_PLATFORM
	Platform string `env:"PLATFORM"`
}

// Storage groups persistence settings for the local queue database and
// the remote document store.
type Storage struct {
	// DB holds the local SQLite queue database settings.
	DB QueueDB `envPrefix:"DB_"`

	// DocStore holds the remote document store connection settings.
	DocStore DocStore `envPrefix:"DOCSTORE_"`
}

// QueueDB holds the durable local operation queue settings.
type QueueDB struct {
	// DSN is the SQLite file path for the per-device operation queue.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// DocStore holds connection settings for the shared document store
// consumed over HTTP.
type DocStore struct {
	// HTTPAddress is the base URL of the document store service.
	// Env: STORAGE_DOCSTORE_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// ServiceToken is the bearer token presented on every request.
	// Its expiry is checked locally before requests are issued.
	// Env: STORAGE_DOCSTORE_SERVICE_TOKEN
	ServiceToken string `env:"SERVICE_TOKEN"`

	// RequestTimeout bounds a single document store round trip.
	// Env: STORAGE_DOCSTORE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the conflict-detection windows and resolution bounds.
type Sync struct {
	// DocumentWindow is the concurrency window for document-level edits.
	// Two writes further apart than this are treated as sequential.
	// Env: SYNC_DOCUMENT_WINDOW
	DocumentWindow time.Duration `env:"DOCUMENT_WINDOW"`

	// InteractionWindow is the concurrency window for append-only
	// interaction records.
	// Env: SYNC_INTERACTION_WINDOW
	InteractionWindow time.Duration `env:"INTERACTION_WINDOW"`

	// RetentionWindow is how long resolved conflict records are kept
	// before the sweeper removes them.
	// Env: SYNC_RETENTION_WINDOW
	RetentionWindow time.Duration `env:"RETENTION_WINDOW"`

	// MaxAttempts bounds transient retries of a queued operation across
	// drains before it is escalated to a reported sync failure.
	// Env: SYNC_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// SweepBatchSize bounds how many resolved records one sweeper pass
	// deletes per batch.
	// Env: SYNC_SWEEP_BATCH_SIZE
	SweepBatchSize int `env:"SWEEP_BATCH_SIZE"`
}

// Server holds the local HTTP API settings.
type Server struct {
	// HTTPAddress is the listen address of the local status/resolution
	// API in host:port form.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// Workers holds background worker intervals.
type Workers struct {
	// DrainInterval is how often the drain job attempts to flush the
	// operation queue while online.
	// Env: WORKERS_DRAIN_INTERVAL
	DrainInterval time.Duration `env:"DRAIN_INTERVAL"`

	// SweepInterval is how often the retention sweeper runs.
	// Env: WORKERS_SWEEP_INTERVAL
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`
}

// Built-in defaults applied below all other configuration sources.
const (
	DefaultDocumentWindow    = 10 * time.Second
	DefaultInteractionWindow = 30 * time.Second
	DefaultRetentionWindow   = 30 * 24 * time.Hour
	DefaultMaxAttempts       = 5
	DefaultSweepBatchSize    = 500
	DefaultDrainInterval     = time.Minute
	DefaultSweepInterval     = 24 * time.Hour
	DefaultRequestTimeout    = 15 * time.Second
)

func defaults() *StructuredConfig {
	return &StructuredConfig{
		Storage: Storage{
			DocStore: DocStore{RequestTimeout: DefaultRequestTimeout},
		},
		Sync: Sync{
			DocumentWindow:    DefaultDocumentWindow,
			InteractionWindow: DefaultInteractionWindow,
			RetentionWindow:   DefaultRetentionWindow,
			MaxAttempts:       DefaultMaxAttempts,
			SweepBatchSize:    DefaultSweepBatchSize,
		},
		Workers: Workers{
			DrainInterval: DefaultDrainInterval,
			SweepInterval: DefaultSweepInterval,
		},
	}
}

// GetStructuredConfig loads, merges, and validates the engine
// configuration from all available sources in the following priority order
// (first source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
