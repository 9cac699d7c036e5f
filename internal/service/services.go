// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package service

import (
	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/internal/utils"
)

// Services bundles the engine's service layer for handler and worker
// wiring.
type Services struct {
	Detector     ConflictDetector
	Resolver     ConflictResolver
	Orchestrator SyncOrchestrator
	Devices      DeviceService
}

// NewServices wires the full service layer over the given storages and
// document store.
func NewServices(cfg *config.StructuredConfig, storages *store.Storages, docs store.DocumentStore, log *logger.Logger) *Services {
	uuid := utils.NewUUIDGenerator()

	detector := NewConflictDetector(cfg.Sync, uuid, log)
	resolver := NewConflictResolver(storages.Conflicts, docs, uuid, log)
	devices := NewDeviceService(storages.Devices, storages.Conflicts, storages.Queue, log)
	orchestrator := NewSyncOrchestrator(
		cfg.Device,
		cfg.Sync,
		storages.Queue,
		storages.Conflicts,
		docs,
		detector,
		resolver,
		devices,
		uuid,
		log,
	)

	return &Services{
		Detector:     detector,
		Resolver:     resolver,
		Orchestrator: orchestrator,
		Devices:      devices,
	}
}
