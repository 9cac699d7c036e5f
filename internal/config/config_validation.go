// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies all
// engine invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or one of the sentinel errors
// from errors.go otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Device.ID == "" {
		return ErrInvalidDeviceConfigs
	}

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.DocStore.HTTPAddress == "" || cfg.Storage.DocStore.RequestTimeout == 0 {
		return ErrInvalidDocStoreConfigs
	}

	if cfg.Sync.DocumentWindow <= 0 || cfg.Sync.InteractionWindow <= 0 ||
		cfg.Sync.RetentionWindow <= 0 || cfg.Sync.MaxAttempts <= 0 ||
		cfg.Sync.SweepBatchSize <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Workers.DrainInterval <= 0 || cfg.Workers.SweepInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
