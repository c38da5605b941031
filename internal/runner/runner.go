// Package runner orchestrates a single pattern run: parse the theta-rho
// file, interpolate and batch the path, and stream the batches through the
// protocol driver on a background goroutine.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sandline/sandline/internal/monitoring"
	"github.com/sandline/sandline/internal/motion"
	"github.com/sandline/sandline/internal/pattern"
)

// DefaultStepSize is the interpolation step used for full runs. It is
// deliberately distinct from the interpolator's own fallback; the runner
// always passes its configured step explicitly.
const DefaultStepSize = 0.005

// State describes where a run is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrRunActive is returned when a run is requested while one is in flight.
// The table draws over a single connection; runs never overlap.
var ErrRunActive = errors.New("runner: a run is already active")

// Sender is the slice of the protocol driver the runner depends on.
type Sender interface {
	SendBatch(ctx context.Context, batch []pattern.Coordinate) error
	SendCommand(ctx context.Context, name string) error
}

// Config tunes a run. Zero values select the defaults.
type Config struct {
	StepSize  float64
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.StepSize <= 0 {
		c.StepSize = DefaultStepSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = motion.DefaultBatchSize
	}
	return c
}

// Status is a snapshot of the current or most recent run.
type Status struct {
	RunID       string
	State       State
	File        string
	Points      int
	Batches     int
	BatchesSent int
	Err         error
}

// Runner owns the run lifecycle. At most one run is active at a time.
type Runner struct {
	sender Sender
	cfg    Config

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Runner that streams through sender.
func New(sender Sender, cfg Config) *Runner {
	done := make(chan struct{})
	close(done)
	return &Runner{
		sender: sender,
		cfg:    cfg.withDefaults(),
		status: Status{State: StateIdle},
		done:   done,
	}
}

// Start begins streaming the theta-rho file at path in the background and
// returns the run ID immediately. It fails with ErrRunActive if a run is
// already in flight.
func (r *Runner) Start(ctx context.Context, path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.State == StateRunning {
		return "", ErrRunActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	runID := uuid.New().String()
	done := make(chan struct{})

	r.status = Status{
		RunID: runID,
		State: StateRunning,
		File:  path,
	}
	r.cancel = cancel
	r.done = done

	go r.run(runCtx, cancel, done, runID, path)
	return runID, nil
}

// Stop requests cancellation of the active run. The run ends after the batch
// in flight; a pending READY wait is abandoned immediately. Stop is a no-op
// when nothing is running.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.State == StateRunning && r.cancel != nil {
		monitoring.Logf("runner: stop requested for run %s", r.status.RunID)
		r.cancel()
	}
}

// SendCommand forwards a standalone command to the controller. It is
// rejected while a run is streaming, since the run owns the connection.
func (r *Runner) SendCommand(ctx context.Context, name string) error {
	r.mu.Lock()
	running := r.status.State == StateRunning
	r.mu.Unlock()
	if running {
		return ErrRunActive
	}
	return r.sender.SendCommand(ctx, name)
}

// Status returns a snapshot of the current or most recent run.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Done returns a channel that closes when the active run finishes. When no
// run is active the returned channel is already closed.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Runner) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, runID, path string) {
	state, err := r.stream(ctx, runID, path)
	cancel()

	r.mu.Lock()
	r.status.State = state
	r.status.Err = err
	sent, total := r.status.BatchesSent, r.status.Batches
	close(done)
	r.mu.Unlock()

	if err != nil {
		monitoring.Logf("runner: run %s %s: %v", runID, state, err)
	} else {
		monitoring.Logf("runner: run %s %s (%d/%d batches)", runID, state, sent, total)
	}
}

// stream does the actual work and reports the terminal state.
func (r *Runner) stream(ctx context.Context, runID, path string) (State, error) {
	coords, err := pattern.ParseFile(path)
	if err != nil {
		return StateFailed, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(coords) < 2 {
		monitoring.Logf("runner: %s has %d coordinates, nothing to draw", path, len(coords))
		return StateCompleted, nil
	}

	// The whole path is materialized before anything is transmitted, so a
	// mid-run parse surprise is impossible.
	points := motion.InterpolatePath(coords, r.cfg.StepSize)
	batches := motion.Batch(points, r.cfg.BatchSize)

	r.mu.Lock()
	r.status.Points = len(points)
	r.status.Batches = len(batches)
	r.mu.Unlock()

	monitoring.Logf("runner: run %s: %d coordinates -> %d points in %d batches",
		runID, len(coords), len(points), len(batches))

	for _, batch := range batches {
		// cancellation is observed at every batch boundary even when the
		// sender never blocks
		if ctx.Err() != nil {
			return StateCancelled, nil
		}

		if err := r.sender.SendBatch(ctx, batch); err != nil {
			if errors.Is(err, context.Canceled) {
				return StateCancelled, nil
			}
			return StateFailed, err
		}

		r.mu.Lock()
		r.status.BatchesSent++
		r.mu.Unlock()
	}

	return StateCompleted, nil
}
