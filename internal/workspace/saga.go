package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

type StepState string

const (
	StepPending     StepState = "pending"
	StepDone        StepState = "done"
	StepFailed      StepState = "failed"
	StepCompensated StepState = "compensated"
)

type step struct {
	name     string
	critical bool
	run      func(context.Context) error
	undo     func(context.Context) error
	state    StepState
	err      error
}

// StepStatus is a read-only view of one saga step.
type StepStatus struct {
	Name     string
	Critical bool
	State    StepState
	Err      error
}

// Saga runs a multi-step flow and remembers each step's outcome so that the
// caller can retry what failed or undo what succeeded. Steps are not atomic.
type Saga struct {
	name   string
	mu     sync.Mutex
	steps  []*step
	logger *slog.Logger
}

func NewSaga(name string, logger *slog.Logger) *Saga {
	return &Saga{name: name, logger: logger}
}

func (s *Saga) Name() string { return s.name }

// AddStep appends a step. A failed critical step stops the run; undo may be nil.
func (s *Saga) AddStep(name string, critical bool, run, undo func(context.Context) error) {
	s.mu.Lock()
	s.steps = append(s.steps, &step{name: name, critical: critical, run: run, undo: undo, state: StepPending})
	s.mu.Unlock()
}

// Run executes pending steps in order. It returns the error of a failed critical
// step or of a cancelled context; non-critical failures only show in the step
// states.
func (s *Saga) Run(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.steps {
		if st.state != StepPending {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := st.run(ctx); err != nil {
			st.state, st.err = StepFailed, err
			s.logger.Warn("saga step failed", "saga", s.name, "step", st.name, "critical", st.critical, "error", err)
			if st.critical {
				return fmt.Errorf("%s: step %s: %w", s.name, st.name, err)
			}
			continue
		}
		st.state, st.err = StepDone, nil
	}
	return nil
}

// Retry re-runs failed and pending steps.
func (s *Saga) Retry(ctx context.Context) error {
	s.mu.Lock()
	for _, st := range s.steps {
		if st.state == StepFailed {
			st.state, st.err = StepPending, nil
		}
	}
	s.mu.Unlock()
	return s.Run(ctx)
}

// Compensate undoes done steps in reverse order. Steps whose undo fails stay done.
func (s *Saga) Compensate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		if st.state != StepDone || st.undo == nil {
			continue
		}
		if err := st.undo(ctx); err != nil {
			s.logger.Warn("saga compensation failed", "saga", s.name, "step", st.name, "error", err)
			errs = append(errs, fmt.Errorf("undo %s: %w", st.name, err))
			continue
		}
		st.state = StepCompensated
	}
	return errors.Join(errs...)
}

func (s *Saga) Steps() []StepStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StepStatus, len(s.steps))
	for i, st := range s.steps {
		out[i] = StepStatus{Name: st.name, Critical: st.critical, State: st.state, Err: st.err}
	}
	return out
}

// Count reports how many steps are in state.
func (s *Saga) Count(state StepState) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.steps {
		if st.state == state {
			n++
		}
	}
	return n
}
