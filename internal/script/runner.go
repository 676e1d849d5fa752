package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/tessro/broadcast/internal/event"
)

// maxDispatchDepth bounds nested triggers started by relay handlers.
const maxDispatchDepth = 64

// Runner executes steps against one augmented object and records a transcript.
// A Runner is not safe for concurrent use.
type Runner struct {
	obj        *event.Object
	handlers   map[string]HandlerSpec
	calls      map[string]int
	transcript *Transcript
	strict     bool
	log        *slog.Logger

	step     int
	dispatch []string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStrict makes Run stop at the first failed trigger.
func WithStrict(strict bool) RunnerOption {
	return func(r *Runner) { r.strict = strict }
}

// WithLogger sets the logger passed to the object and used for step records.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRunner creates a runner for s: a fresh object built from s.Fields with
// s.Handlers declared. Steps are not executed until Run or Exec.
func NewRunner(s *Script, opts ...RunnerOption) *Runner {
	r := &Runner{
		handlers: make(map[string]HandlerSpec),
		calls:    make(map[string]int),
		log:      slog.Default(),
		step:     -1,
	}
	for _, opt := range opts {
		opt(r)
	}

	var fields map[string]any
	name := ""
	if s != nil {
		fields = s.Fields
		name = s.Name
		for _, h := range s.Handlers {
			r.handlers[h.Name] = h
		}
	}
	r.obj = event.New(fields, event.WithLogger(r.log))
	r.transcript = &Transcript{Name: name}
	return r
}

// Object returns the augmented object the runner drives.
func (r *Runner) Object() *event.Object {
	return r.obj
}

// Transcript returns the entries recorded so far.
func (r *Runner) Transcript() *Transcript {
	return r.transcript
}

// Calls returns how many times the named handler has run.
func (r *Runner) Calls(handler string) int {
	return r.calls[handler]
}

// Handlers returns the declared handler names, sorted.
func (r *Runner) Handlers() []string {
	return slices.Sorted(maps.Keys(r.handlers))
}

// Run executes s.Steps in order. Expectation failures and invalid steps always
// stop the run; failed triggers stop it only in strict mode.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.Exec(step)
		if err == nil {
			continue
		}
		if step.Op == OpTrigger && !r.strict {
			continue
		}
		return err
	}
	return nil
}

// Exec executes one step. Errors are recorded in the transcript and returned
// as a *StepError.
func (r *Runner) Exec(step Step) error {
	r.step++
	err := r.exec(step)
	if err != nil {
		r.log.Debug("step failed", "step", r.step+1, "op", step.Op, "error", err)
		return &StepError{Index: r.step, Op: step.Op, Line: step.Line, Err: err}
	}
	return nil
}

func (r *Runner) exec(step Step) error {
	if err := step.Validate(); err != nil {
		r.record(Entry{Op: step.Op, Err: err})
		return err
	}

	switch step.Op {
	case OpOn:
		l := r.obj.On(r.handlerFunc(step.Handler), step.On...)
		r.record(Entry{Op: OpOn, Events: step.On, Handler: step.Handler, Listener: l.ID()})

	case OpOnce:
		l := r.obj.Once(r.handlerFunc(step.Handler), step.Once...)
		r.record(Entry{Op: OpOnce, Events: step.Once, Handler: step.Handler, Listener: l.ID()})

	case OpOff:
		r.obj.Off(step.Off...)
		r.record(Entry{Op: OpOff, Events: step.Off})

	case OpTrigger:
		return r.trigger(step.Trigger, step.Args)

	case OpSet:
		for _, k := range slices.Sorted(maps.Keys(step.Set)) {
			r.obj.Set(k, step.Set[k])
		}
		r.record(Entry{Op: OpSet, Detail: fmt.Sprint(step.Set)})

	case OpDefine:
		r.handlers[step.Define.Name] = *step.Define
		r.record(Entry{Op: OpDefine, Handler: step.Define.Name, Detail: step.Define.describe()})

	case OpExpect:
		return r.expect(step.Expect)
	}
	return nil
}

func (r *Runner) trigger(name any, args []any) error {
	entry := Entry{Op: OpTrigger, Args: args}
	if s, ok := name.(string); ok {
		entry.Events = []string{s}
	}

	// The trigger entry goes first so calls appear after it.
	idx := r.record(entry)

	n, _ := name.(string)
	r.dispatch = append(r.dispatch, n)
	err := r.obj.TriggerValue(name, args...)
	r.dispatch = r.dispatch[:len(r.dispatch)-1]

	if err != nil {
		r.transcript.Entries[idx].Err = err
	}
	return err
}

func (r *Runner) expect(want map[string]int) error {
	var failed []error
	for _, h := range slices.Sorted(maps.Keys(want)) {
		if got := r.calls[h]; got != want[h] {
			failed = append(failed, fmt.Errorf("%w: %s called %d times, want %d", ErrExpectationFailed, h, got, want[h]))
		}
	}
	err := errors.Join(failed...)
	r.record(Entry{Op: OpExpect, Detail: fmt.Sprint(want), Err: err})
	return err
}

// handlerFunc builds the event handler for a named handler. The definition is looked
// up by name at call time so a later define changes already registered handlers.
// Undeclared names behave as plain recorders.
func (r *Runner) handlerFunc(name string) event.HandlerFunc {
	return func(args ...any) error {
		r.calls[name]++
		current := ""
		if len(r.dispatch) > 0 {
			current = r.dispatch[len(r.dispatch)-1]
		}
		r.record(Entry{Op: OpCall, Events: []string{current}, Handler: name, Args: args})

		spec := r.handlers[name]
		if len(spec.Off) > 0 {
			r.obj.Off(spec.Off...)
		}
		if spec.Trigger != "" {
			if len(r.dispatch) >= maxDispatchDepth {
				return fmt.Errorf("%w: %s -> %s at depth %d", ErrDispatchDepth, name, spec.Trigger, len(r.dispatch))
			}
			r.dispatch = append(r.dispatch, spec.Trigger)
			err := r.obj.Trigger(spec.Trigger, args...)
			r.dispatch = r.dispatch[:len(r.dispatch)-1]
			if err != nil {
				return err
			}
		}
		if spec.Fail != "" {
			return errors.New(spec.Fail)
		}
		return nil
	}
}

func (r *Runner) record(e Entry) int {
	e.Step = r.step
	r.transcript.Entries = append(r.transcript.Entries, e)
	return len(r.transcript.Entries) - 1
}

func (h HandlerSpec) describe() string {
	var parts []string
	if len(h.Off) > 0 {
		parts = append(parts, fmt.Sprintf("off=%v", []string(h.Off)))
	}
	if h.Trigger != "" {
		parts = append(parts, "trigger="+h.Trigger)
	}
	if h.Fail != "" {
		parts = append(parts, "fail="+h.Fail)
	}
	if len(parts) == 0 {
		return "record"
	}
	return fmt.Sprint(parts)
}

// Run executes s with a new runner and returns its transcript. The transcript
// is returned even when the run fails.
func Run(ctx context.Context, s *Script, opts ...RunnerOption) (*Transcript, error) {
	r := NewRunner(s, opts...)
	err := r.Run(ctx, s.Steps)
	return r.Transcript(), err
}
