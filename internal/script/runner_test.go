package script

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tessro/broadcast/internal/event"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}

func TestRun_Demo(t *testing.T) {
	s := mustParse(t, demoScript)

	tr, err := Run(context.Background(), s, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if tr.Name != "demo" {
		t.Errorf("Name = %q", tr.Name)
	}
	if got := tr.Calls("audit"); got != 2 {
		t.Errorf("audit calls = %d, want 2", got)
	}
	if len(tr.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", tr.Errors())
	}

	var ops []Op
	for _, e := range tr.Entries {
		ops = append(ops, e.Op)
	}
	want := []Op{OpOn, OpOnce, OpTrigger, OpCall, OpCall, OpOff, OpExpect}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("entry ops mismatch (-want +got):\n%s", diff)
	}

	call := tr.Entries[3]
	if call.Event() != "save" || call.Handler != "audit" {
		t.Errorf("call entry = %+v", call)
	}
	if diff := cmp.Diff([]any{1, "two"}, call.Args); diff != "" {
		t.Errorf("call args mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_FieldsCopied(t *testing.T) {
	s := mustParse(t, demoScript)
	r := NewRunner(s, WithLogger(quietLogger()))

	if v, ok := r.Object().Get("title"); !ok || v != "widget" {
		t.Errorf("title = %v, %v", v, ok)
	}
	if err := r.Exec(Step{Op: OpSet, Set: map[string]any{"title": "gadget"}}); err != nil {
		t.Fatal(err)
	}
	if s.Fields["title"] != "widget" {
		t.Error("set should not modify the script's fields")
	}
	if v, _ := r.Object().Get("title"); v != "gadget" {
		t.Errorf("title = %v, want gadget", v)
	}
}

func TestRunner_ExpectFails(t *testing.T) {
	s := mustParse(t, `
steps:
  - on: a
    handler: h
  - trigger: a
  - expect: {h: 2}
  - trigger: a
`)
	r := NewRunner(s, WithLogger(quietLogger()))
	err := r.Run(context.Background(), s.Steps)
	if !errors.Is(err, ErrExpectationFailed) {
		t.Fatalf("Run() error = %v, want ErrExpectationFailed", err)
	}
	if r.Calls("h") != 1 {
		t.Errorf("run should stop at the failed expectation, h called %d times", r.Calls("h"))
	}
}

func TestRunner_TriggerErrors(t *testing.T) {
	src := `
handlers:
  - name: boom
    fail: disk full
steps:
  - on: save
    handler: boom
  - on: save
    handler: after
  - trigger: save
  - trigger: 123
  - trigger: ~
  - expect: {boom: 1, after: 0}
`
	t.Run("lenient continues", func(t *testing.T) {
		tr, err := Run(context.Background(), mustParse(t, src), WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		errs := tr.Errors()
		if len(errs) != 3 {
			t.Fatalf("expected 3 errored entries, got %d: %v", len(errs), errs)
		}
		var hErr *event.HandlerError
		if !errors.As(errs[0].Err, &hErr) || hErr.Err.Error() != "disk full" {
			t.Errorf("first error = %v, want handler error", errs[0].Err)
		}
		for _, e := range errs[1:] {
			if !errors.Is(e.Err, event.ErrInvalidEventName) {
				t.Errorf("error = %v, want ErrInvalidEventName", e.Err)
			}
		}
	})

	t.Run("strict stops", func(t *testing.T) {
		_, err := Run(context.Background(), mustParse(t, src), WithLogger(quietLogger()), WithStrict(true))
		var stepErr *StepError
		if !errors.As(err, &stepErr) {
			t.Fatalf("Run() error = %v, want *StepError", err)
		}
		if stepErr.Index != 2 || stepErr.Op != OpTrigger {
			t.Errorf("StepError = %+v", stepErr)
		}
	})
}

func TestRunner_OnceAcrossNames(t *testing.T) {
	s := mustParse(t, `
steps:
  - once: [test2, test3]
    handler: hd2
  - trigger: test2
  - trigger: test2
  - trigger: test3
  - expect: {hd2: 1}
`)
	r := NewRunner(s, WithLogger(quietLogger()))
	if err := r.Run(context.Background(), s.Steps); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(r.Object().Events()) != 0 {
		t.Errorf("registry should be empty, got %v", r.Object().EventNames())
	}
}

func TestRunner_OffAndRelayHandlers(t *testing.T) {
	s := mustParse(t, `
handlers:
  - name: stopper
    off: tick
  - name: relay
    trigger: other
steps:
  - on: tick
    handler: stopper
  - on: tick
    handler: counter
  - on: go
    handler: relay
  - on: other
    handler: sink
  - trigger: tick
  - trigger: tick
  - trigger: go
    args: [x]
  - expect: {stopper: 1, counter: 1, relay: 1, sink: 1}
`)
	tr, err := Run(context.Background(), s, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var sink Entry
	for _, e := range tr.Entries {
		if e.Op == OpCall && e.Handler == "sink" {
			sink = e
		}
	}
	if sink.Event() != "other" {
		t.Errorf("relayed call should be attributed to other, got %q", sink.Event())
	}
	if diff := cmp.Diff([]any{"x"}, sink.Args); diff != "" {
		t.Errorf("relayed args mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_SelfRetriggerStops(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		calls map[string]int
	}{
		{
			name: "handler re-fires its own event",
			src: `
handlers:
  - name: relay
    trigger: save
steps:
  - on: save
    handler: relay
  - trigger: save
`,
			calls: map[string]int{"relay": maxDispatchDepth},
		},
		{
			name: "two handlers fire each other",
			src: `
handlers:
  - name: ping
    trigger: b
  - name: pong
    trigger: a
steps:
  - on: a
    handler: ping
  - on: b
    handler: pong
  - trigger: a
`,
			calls: map[string]int{"ping": maxDispatchDepth / 2, "pong": maxDispatchDepth / 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustParse(t, tt.src)
			tr, err := Run(context.Background(), s, WithLogger(quietLogger()))
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			errs := tr.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 failed entry, got %d", len(errs))
			}
			if errs[0].Op != OpTrigger {
				t.Errorf("failed entry op = %s, want trigger", errs[0].Op)
			}
			if !errors.Is(errs[0].Err, ErrDispatchDepth) {
				t.Errorf("error = %v, want ErrDispatchDepth", errs[0].Err)
			}
			var he *event.HandlerError
			if !errors.As(errs[0].Err, &he) {
				t.Errorf("error should be a *event.HandlerError, got %T", errs[0].Err)
			}
			if diff := cmp.Diff(tt.calls, tr.CallCounts()); diff != "" {
				t.Errorf("call counts mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("strict run fails", func(t *testing.T) {
		s := mustParse(t, tests[0].src)
		_, err := Run(context.Background(), s, WithStrict(true), WithLogger(quietLogger()))
		if !errors.Is(err, ErrDispatchDepth) {
			t.Errorf("Run() error = %v, want ErrDispatchDepth", err)
		}
	})
}

func TestRunner_DefineChangesRegisteredHandler(t *testing.T) {
	r := NewRunner(nil, WithLogger(quietLogger()))

	steps := []Step{
		{Op: OpOn, On: Names{"a"}, Handler: "h"},
		{Op: OpDefine, Define: &HandlerSpec{Name: "h", Fail: "nope"}},
	}
	for _, step := range steps {
		if err := r.Exec(step); err != nil {
			t.Fatal(err)
		}
	}

	err := r.Exec(Step{Op: OpTrigger, Trigger: "a"})
	var hErr *event.HandlerError
	if !errors.As(err, &hErr) || hErr.Err.Error() != "nope" {
		t.Fatalf("expected handler failure from the redefined handler, got %v", err)
	}
	if diff := cmp.Diff([]string{"h"}, r.Handlers()); diff != "" {
		t.Errorf("Handlers() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_InvalidStep(t *testing.T) {
	r := NewRunner(nil, WithLogger(quietLogger()))
	err := r.Exec(Step{Op: OpOn, On: Names{"a"}})
	if !errors.Is(err, ErrMissingHandler) {
		t.Errorf("Exec() error = %v, want ErrMissingHandler", err)
	}
	if len(r.Transcript().Errors()) != 1 {
		t.Error("invalid step should be recorded")
	}
}

func TestRunner_ContextCanceled(t *testing.T) {
	s := mustParse(t, demoScript)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := Run(ctx, s, WithLogger(quietLogger()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(tr.Entries) != 0 {
		t.Errorf("no steps should run, got %d entries", len(tr.Entries))
	}
}
