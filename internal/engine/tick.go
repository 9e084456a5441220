// Package engine provides the round clock that drives need bookkeeping.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Engine advances the game one round at a time.
type Engine struct {
	Round    int           // Last completed round, 0 before the first
	Interval time.Duration // Pause between rounds in Run (0 = none)

	// SaveEvery > 0 fires OnSave after every SaveEvery-th round.
	SaveEvery int

	OnRound func(round int) // Every round, after Round is advanced
	OnSave  func(round int)

	running atomic.Bool
}

// NewEngine creates a round clock with default settings.
func NewEngine() *Engine {
	return &Engine{}
}

// Step completes one round and returns its number.
func (e *Engine) Step() int {
	e.Round++

	if e.OnRound != nil {
		e.OnRound(e.Round)
	}
	if e.SaveEvery > 0 && e.Round%e.SaveEvery == 0 && e.OnSave != nil {
		e.OnSave(e.Round)
	}
	return e.Round
}

// Run steps rounds until n rounds have completed (n <= 0 means no limit),
// Stop is called, or ctx is done. It returns ctx.Err() when cancelled.
func (e *Engine) Run(ctx context.Context, n int) error {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("round clock started", "round", e.Round, "rounds", n)

	for done := 0; n <= 0 || done < n; done++ {
		if !e.running.Load() {
			break
		}
		if err := ctx.Err(); err != nil {
			slog.Info("round clock cancelled", "round", e.Round)
			return err
		}

		e.Step()

		if e.Interval > 0 {
			select {
			case <-ctx.Done():
				slog.Info("round clock cancelled", "round", e.Round)
				return ctx.Err()
			case <-time.After(e.Interval):
			}
		}
	}

	slog.Info("round clock stopped", "round", e.Round)
	return nil
}

// Running reports whether Run is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Stop makes Run return after the current round.
func (e *Engine) Stop() {
	e.running.Store(false)
}
