// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package workers

import (
	"context"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/service"
	"github.com/avoronov/kinsync/internal/store"
)

// Workers owns the engine's background jobs.
type Workers struct {
	jobs []Worker
}

// NewWorkers wires the drain job and retention sweeper.
func NewWorkers(cfg *config.StructuredConfig, probe ConnectivityProbe, services *service.Services, storages *store.Storages, log *logger.Logger) *Workers {
	return &Workers{
		jobs: []Worker{
			NewDrainJob(probe, services.Orchestrator, cfg.Workers, log),
			NewRetentionSweeper(storages.Conflicts, cfg.Sync, cfg.Workers, log),
		},
	}
}

// StartAll starts every job against ctx.
func (w *Workers) StartAll(ctx context.Context) {
	for _, job := range w.jobs {
		job.Start(ctx)
	}
}

// StopAll stops every job and waits for their goroutines.
func (w *Workers) StopAll() {
	for _, job := range w.jobs {
		job.Stop()
	}
}
