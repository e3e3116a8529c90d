// Package worker runs the periodic expiry sweep that auto-cancels
// pending bookings the merchant never confirmed.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"harborline/internal/pkg/config"
	"harborline/internal/usecase/commands"
)

// Sweeper drives commands.SweepCommands on a fixed interval. Start and
// Stop are tied to the application lifecycle; the admin endpoint shares
// the same RunSweep, so a manual trigger and the ticker can never
// disagree on semantics.
type Sweeper struct {
	sweep    commands.SweepCommands
	interval time.Duration

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

func NewSweeper(sweep commands.SweepCommands, cfg config.SweeperConfig) *Sweeper {
	return &Sweeper{
		sweep:    sweep,
		interval: cfg.Interval,
	}
}

// Start launches the ticker goroutine. Calling Start on a running
// sweeper is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})

	s.wg.Add(1)
	go s.run(s.done)
	slog.Info("sweeper started", "interval", s.interval.String())
}

// Stop halts the ticker and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	s.wg.Wait()
	slog.Info("sweeper stopped")
}

func (s *Sweeper) run(done chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.sweepOnce(done)
		}
	}
}

func (s *Sweeper) sweepOnce(done chan struct{}) {
	// The sweep context is cancelled on Stop so shutdown never waits a
	// full interval behind a slow database.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := s.sweep.RunSweep(ctx); err != nil {
		slog.Error("scheduled sweep failed", "error", err.Error())
	}
}
