// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/service"
)

// drainJob probes document store connectivity on a fixed interval and keeps
// the orchestrator's online state current. The orchestrator itself drains
// on the offline-to-online transition; while the connection stays up this
// job flushes whatever queued up since the last tick.
type drainJob struct {
	probe ConnectivityProbe
	orch  service.SyncOrchestrator

	interval time.Duration
	online   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewDrainJob constructs the periodic drain worker.
func NewDrainJob(probe ConnectivityProbe, orch service.SyncOrchestrator, workersCfg config.Workers, logger *logger.Logger) Worker {
	return &drainJob{
		probe:    probe,
		orch:     orch,
		interval: workersCfg.DrainInterval,
		logger:   logger,
	}
}

// Start implements [Worker].
func (j *drainJob) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.run(ctx)

	j.logger.Info().
		Str("func", "drainJob.Start").
		Dur("interval", j.interval).
		Msg("drain job started")
}

// Stop implements [Worker].
func (j *drainJob) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()

	j.logger.Info().
		Str("func", "drainJob.Stop").
		Msg("drain job stopped")
}

func (j *drainJob) run(ctx context.Context) {
	defer j.wg.Done()

	// First probe right away so the engine does not sit offline for a
	// full interval after startup.
	j.tick(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *drainJob) tick(ctx context.Context) {
	online := j.probe.Ping(ctx) == nil

	wasOnline := j.online
	j.online = online

	j.orch.SetOnline(ctx, online)

	if !online {
		if wasOnline {
			j.logger.Warn().
				Str("func", "drainJob.tick").
				Msg("document store unreachable, queuing writes locally")
		}
		return
	}

	if !wasOnline {
		// The transition drain already ran inside SetOnline.
		return
	}

	if _, err := j.orch.Drain(ctx); err != nil {
		j.logger.Warn().
			Str("func", "drainJob.tick").
			Msg("periodic drain failed, operations stay queued")
	}
}
