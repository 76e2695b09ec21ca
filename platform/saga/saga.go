// Package saga runs an ordered list of remote writes with compensating
// actions. Steps execute forward until one fails; the compensations of the
// steps that already succeeded then run in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ngo_erp_backend/platform/logger"
)

// ErrPanic marks a step that panicked instead of returning an error.
var ErrPanic = errors.New("step panicked")

// Step is one forward action and its compensation. Undo may be nil for
// steps that create nothing worth removing.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// StepError reports which step aborted the run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("saga step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Panicked reports whether the step aborted by panicking.
func (e *StepError) Panicked() bool {
	return errors.Is(e.Err, ErrPanic)
}

// DefaultUndoTimeout bounds a compensation when no WithUndoTimeout is given.
const DefaultUndoTimeout = 10 * time.Second

// Saga is a single-use sequence of steps.
type Saga struct {
	name        string
	steps       []Step
	log         *logger.Logger
	stepTimeout time.Duration
	undoTimeout time.Duration
}

// Option configures a Saga.
type Option func(*Saga)

// WithStepTimeout bounds each forward step.
func WithStepTimeout(d time.Duration) Option {
	return func(s *Saga) { s.stepTimeout = d }
}

// WithUndoTimeout bounds each compensation. Non-positive values keep the
// default.
func WithUndoTimeout(d time.Duration) Option {
	return func(s *Saga) {
		if d > 0 {
			s.undoTimeout = d
		}
	}
}

// New creates a saga; name is used in compensation logs.
func New(name string, log *logger.Logger, opts ...Option) *Saga {
	s := &Saga{name: name, log: log, undoTimeout: DefaultUndoTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a step.
func (s *Saga) Add(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Run executes the steps in order. On failure it compensates the completed
// steps in reverse order and returns a *StepError for the failing step.
// Compensation errors are logged and never replace the original failure.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := s.do(ctx, step); err != nil {
			s.compensate(ctx, s.steps[:i])
			return &StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}

func (s *Saga) do(ctx context.Context, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if s.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
	}
	return step.Do(ctx)
}

// compensate runs on a context detached from the caller so that a client
// disconnect does not stop the rollback.
func (s *Saga) compensate(ctx context.Context, done []Step) {
	base := context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Undo == nil {
			continue
		}
		err := s.undo(base, step)
		if s.log != nil {
			s.log.Compensation(s.name, step.Name, err)
		}
	}
}

func (s *Saga) undo(ctx context.Context, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.undoTimeout)
	defer cancel()
	return step.Undo(ctx)
}
