// Package services – Sweeper
//
// This file implements the background expiration sweeper. It scans for
// pending offers past their deadline in bounded batches and expires each
// one through the same conditional-update primitive user actions use, so
// a sweep racing a concurrent accept/reject/withdraw/counter produces
// exactly one winner. Offers that lose the race are skipped silently;
// that is the expected outcome, not an error. It also makes the sweep
// idempotent: a second pass finds nothing left to expire.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-offer-backend/internal/domain"
	"github.com/tbourn/go-offer-backend/internal/repo"
)

// Sweeper expires overdue pending offers on a fixed interval.
type Sweeper struct {
	// DB is the GORM handle used for scans and transitions.
	DB *gorm.DB
	// Interval between sweep cycles when running in the background.
	Interval time.Duration
	// BatchSize bounds each scan so the sweeper never holds long-lived
	// cursors while individual transitions race with live traffic.
	BatchSize int
	// Logger reports cycle results and per-offer write failures.
	Logger zerolog.Logger

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
}

// NewSweeper constructs a Sweeper with the given cadence and batch bound.
func NewSweeper(db *gorm.DB, interval time.Duration, batchSize int, logger zerolog.Logger) *Sweeper {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Sweeper{DB: db, Interval: interval, BatchSize: batchSize, Logger: logger}
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Run sweeps on the configured interval until ctx is cancelled. Errors are
// logged and the loop keeps going; a broken cycle must not kill the
// process that hosts it.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Logger.Info().
		Dur("interval", s.Interval).
		Int("batch_size", s.BatchSize).
		Msg("expiration sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info().Msg("expiration sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				s.Logger.Error().Err(err).Msg("sweep cycle failed")
				continue
			}
			if n > 0 {
				s.Logger.Info().Int("expired", n).Msg("sweep cycle done")
			}
		}
	}
}

// Sweep runs one scan-and-expire cycle and returns how many offers it
// transitioned. The deadline snapshot is taken once per cycle, so offers
// becoming overdue mid-cycle wait for the next one.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	expired := 0

	for {
		batch, err := repo.FindExpired(ctx, s.DB, now, s.BatchSize)
		if err != nil {
			return expired, err
		}
		if len(batch) == 0 {
			return expired, nil
		}

		for _, o := range batch {
			won, err := repo.TransitionStatus(ctx, s.DB, o.ID, domain.StatusPending, domain.StatusExpired)
			if err != nil {
				return expired, err
			}
			if !won {
				// Lost to a concurrent user action; nothing to do.
				continue
			}
			expired++

			if _, err := repo.AppendHistory(ctx, s.DB, o.ID, domain.ActionExpired, domain.SystemActor, historyDetails{
				OldStatus: domain.StatusPending,
				NewStatus: domain.StatusExpired,
			}.encode()); err != nil {
				s.Logger.Error().
					Err(err).
					Str("offer_id", o.ID).
					Msg("history write failed after expiration")
			}
		}

		if len(batch) < s.BatchSize {
			return expired, nil
		}
	}
}
