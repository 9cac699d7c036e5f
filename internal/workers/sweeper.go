// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/store"
)

// retentionSweeper periodically purges resolved conflict records older than
// the retention window. Deletes run in bounded batches so one pass never
// issues an oversized burst against the document store. Pending records are
// never deleted regardless of age.
type retentionSweeper struct {
	conflicts store.ConflictRepository

	retention time.Duration
	batchSize int
	interval  time.Duration

	now    func() time.Time
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewRetentionSweeper constructs the sweeper from the sync and worker
// configuration sections.
func NewRetentionSweeper(conflicts store.ConflictRepository, syncCfg config.Sync, workersCfg config.Workers, logger *logger.Logger) Worker {
	return &retentionSweeper{
		conflicts: conflicts,
		retention: syncCfg.RetentionWindow,
		batchSize: syncCfg.SweepBatchSize,
		interval:  workersCfg.SweepInterval,
		now:       time.Now,
		logger:    logger,
	}
}

// Start implements [Worker].
func (s *retentionSweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info().
		Str("func", "retentionSweeper.Start").
		Dur("interval", s.interval).
		Dur("retention", s.retention).
		Msg("retention sweeper started")
}

// Stop implements [Worker].
func (s *retentionSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.logger.Info().
		Str("func", "retentionSweeper.Stop").
		Msg("retention sweeper stopped")
}

func (s *retentionSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sweepOnce(ctx); err != nil {
				s.logger.Err(err).
					Str("func", "retentionSweeper.run").
					Msg("sweep pass failed, will retry next tick")
			}
		}
	}
}

// sweepOnce deletes expired resolved records batch by batch until the
// backlog is drained, then warns about pending records that outlived the
// retention window without ever being resolved.
func (s *retentionSweeper) sweepOnce(ctx context.Context) error {
	cutoff := s.now().Add(-s.retention)

	removed := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batch, err := s.conflicts.ListResolvedBefore(ctx, cutoff, s.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			if err = s.conflicts.Delete(ctx, rec.ID); err != nil {
				if errors.Is(err, store.ErrConflictStillPending) || errors.Is(err, store.ErrConflictNotFound) {
					continue
				}
				return err
			}
			removed++
		}

		if len(batch) < s.batchSize {
			break
		}
	}

	if removed > 0 {
		s.logger.Info().
			Str("func", "retentionSweeper.sweepOnce").
			Int("removed", removed).
			Msg("purged expired resolved conflicts")
	}

	s.warnStalePending(ctx, cutoff)
	return nil
}

// warnStalePending flags unresolved records past retention. They are kept,
// but silently holding a user's divergent edit forever is a data loss risk
// that has to be visible.
func (s *retentionSweeper) warnStalePending(ctx context.Context, cutoff time.Time) {
	pending, err := s.conflicts.ListPending(ctx)
	if err != nil {
		return
	}

	for _, rec := range pending {
		if rec.DetectedAt.Before(cutoff) {
			s.logger.Warn().
				Str("func", "retentionSweeper.warnStalePending").
				Str("conflict_id", rec.ID).
				Str("path", rec.DocumentPath).
				Time("detected_at", rec.DetectedAt).
				Msg("pending conflict older than retention window, local changes at risk")
		}
	}
}
