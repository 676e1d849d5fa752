package event

import (
	"sync/atomic"

	"github.com/tessro/broadcast/internal/id"
)

// Listener is a registered handler. Listeners are compared by pointer: the
// same *Listener can appear several times in a sequence, and the wrapper
// returned by Once is distinct from any listener returned by On.
type Listener struct {
	id    string
	fn    HandlerFunc
	once  bool
	fired atomic.Bool
}

// NewListener wraps fn so it can be registered with Object.Add.
func NewListener(fn HandlerFunc) *Listener {
	return &Listener{id: id.WithPrefix("l"), fn: fn}
}

func newOnceListener() *Listener {
	return &Listener{id: id.WithPrefix("o"), once: true}
}

// ID returns a short identifier for display.
func (l *Listener) ID() string {
	return l.id
}

// Once reports whether the listener was registered with Once.
func (l *Listener) Once() bool {
	return l.once
}

// Fired reports whether a single-shot listener has already run.
func (l *Listener) Fired() bool {
	return l.fired.Load()
}

func (l *Listener) call(args []any) error {
	if l.once && !l.fired.CompareAndSwap(false, true) {
		return nil
	}
	return l.fn(args...)
}
