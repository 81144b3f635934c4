package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/devifer12/TableGenie/internal/audit"
	"github.com/devifer12/TableGenie/internal/platform/metrics"
)

// Sweeper periodically removes expired registration tokens. Stores already
// refuse expired tokens on read, so the sweep is purely about reclaiming
// storage for registrations that were abandoned mid-flow.
type Sweeper struct {
	tokens   TokenStore
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Publisher
}

// NewSweeper constructs a sweeper over the given token store.
func NewSweeper(tokens TokenStore, interval time.Duration, logger *slog.Logger, m *metrics.Metrics, publisher *audit.Publisher) *Sweeper {
	return &Sweeper{
		tokens:   tokens,
		interval: interval,
		logger:   logger,
		metrics:  m,
		audit:    publisher,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Exported so tests and operational tooling can trigger
// a pass without waiting out the interval.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := time.Now()
	count, err := s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "registration token sweep failed", "error", err)
		return
	}
	if count == 0 {
		return
	}

	if s.metrics != nil {
		s.metrics.TokensSwept.Add(float64(count))
	}
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Timestamp: now,
			Action:    audit.ActionTokensSwept,
			Count:     count,
		})
	}
	s.logger.InfoContext(ctx, "swept expired registration tokens", "count", count)
}
