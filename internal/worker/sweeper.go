package worker

import (
	"context"
	"log/slog"
	"time"

	"deckforge.app/wizard/common/logger"
	"deckforge.app/wizard/internal/store"
)

type SweeperConfig struct {
	// Sessions idle longer than this are marked abandoned.
	AbandonAfter time.Duration
	Interval     time.Duration
}

// Sweeper retires sessions whose owners walked away, so resume-on-return
// stops offering them and dashboards stay honest.
type Sweeper struct {
	sessions store.SessionStore
	cfg      SweeperConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewSweeper(sessions store.SessionStore, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Sweeper{
		sessions:  sessions,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run starts the sweep loop. Blocks until Stop() is called.
func (s *Sweeper) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "wizard.worker.sweeper",
	})

	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "session sweeper started",
		"interval", s.cfg.Interval,
		"abandon_after", s.cfg.AbandonAfter)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			slog.InfoContext(ctx, "session sweeper stopping")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.cfg.AbandonAfter)
			swept, err := s.sessions.SweepAbandoned(ctx, cutoff)
			if err != nil {
				slog.ErrorContext(ctx, "session sweep failed", "error", err)
				continue
			}
			if swept > 0 {
				slog.InfoContext(ctx, "sessions marked abandoned", "count", swept)
			}
		}
	}
}

// Stop signals the sweeper to stop gracefully.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}
