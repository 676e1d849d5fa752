// Package event gives plain key/value objects publish/subscribe behavior.
//
// An Object is created from a property map by New. It owns a registry that
// maps event names to ordered listener sequences. Listeners are added with On
// and Once, dropped with Off and invoked with Trigger.
package event

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/tessro/broadcast/internal/shape"
)

// HandlerFunc is called with the arguments passed to Trigger.
// A non-nil error aborts the rest of the dispatch.
type HandlerFunc func(args ...any) error

// Emitter is the capability set shared by every augmented object.
type Emitter interface {
	// On appends fn to the sequence of every named event.
	On(fn HandlerFunc, names ...string) *Listener
	// Once registers fn under every name; it runs at most once in total and
	// then removes itself from all of them.
	Once(fn HandlerFunc, names ...string) *Listener
	// Off drops every listener registered under the given names.
	Off(names ...string)
	// Trigger calls the listeners of name in registration order.
	Trigger(name string, args ...any) error
}

var _ Emitter = (*Object)(nil)

// Object is a property store augmented with an event registry.
// The registry is guarded by a mutex; listeners always run outside of it so
// they may call back into the object.
type Object struct {
	// +checklocks:mu
	props map[string]any
	// +checklocks:mu
	events map[string][]*Listener
	mu     sync.RWMutex

	log *slog.Logger
}

// Option configures an Object.
type Option func(*Object)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *Object) {
		if l != nil {
			o.log = l
		}
	}
}

// New returns a fresh object carrying a copy of fields and an empty registry.
// Every call returns a distinct object, even for identical input.
func New(fields map[string]any, opts ...Option) *Object {
	o := &Object{
		props:  shape.Values(shape.Normalize(fields)),
		events: make(map[string][]*Listener),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// On wraps fn in a new listener and appends it under every name.
// A nil fn registers nothing and returns nil.
func (o *Object) On(fn HandlerFunc, names ...string) *Listener {
	if fn == nil {
		return nil
	}
	l := NewListener(fn)
	o.add(l, names)
	return l
}

// Add appends an existing listener under every name. Adding the same listener
// twice to a name makes it run twice per trigger. Wrappers returned by Once
// only remove themselves from the names they were created with, so Add
// refuses them and reports false.
func (o *Object) Add(l *Listener, names ...string) bool {
	if l == nil || l.fn == nil || l.once {
		return false
	}
	o.add(l, names)
	return true
}

func (o *Object) add(l *Listener, names []string) {
	o.mu.Lock()
	for _, name := range names {
		o.events[name] = append(o.events[name], l)
	}
	o.mu.Unlock()

	o.log.Debug("listener added", "listener", l.id, "events", names, "once", l.once)
}

// Once registers a single-shot wrapper around fn under every name. The same
// wrapper is shared by all names. After fn returns (or fails) the wrapper
// removes one occurrence of itself from each name it was registered with.
func (o *Object) Once(fn HandlerFunc, names ...string) *Listener {
	if fn == nil {
		return nil
	}
	names = slices.Clone(names)

	l := newOnceListener()
	l.fn = func(args ...any) error {
		defer o.RemoveListener(l, names...)
		return fn(args...)
	}
	o.add(l, names)
	return l
}

// Off deletes the entries for the given names. Unknown names are ignored.
func (o *Object) Off(names ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, name := range names {
		if n := len(o.events[name]); n > 0 {
			delete(o.events, name)
			o.log.Debug("event cleared", "event", name, "count", n)
		}
	}
}

// RemoveListener removes the last occurrence of l under each name.
// Sequences that become empty are deleted. Reports whether anything was removed.
func (o *Object) RemoveListener(l *Listener, names ...string) bool {
	if l == nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	removed := false
	for _, name := range names {
		list := o.events[name]
		i := lastIndex(list, l)
		if i < 0 {
			continue
		}
		removed = true
		list = slices.Delete(slices.Clone(list), i, i+1)
		if len(list) == 0 {
			delete(o.events, name)
		} else {
			o.events[name] = list
		}
		o.log.Debug("listener removed", "listener", l.id, "event", name)
	}
	return removed
}

func lastIndex(list []*Listener, l *Listener) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == l {
			return i
		}
	}
	return -1
}

// Trigger calls every listener registered under name, in order, with args.
// The sequence is copied before the first call: listeners added or removed
// while dispatching take effect on the next trigger.
// An empty name fails with an *ArgumentError before anything runs. The first
// handler error stops the dispatch and is returned as a *HandlerError.
func (o *Object) Trigger(name string, args ...any) error {
	if name == "" {
		return &ArgumentError{Op: "trigger", Value: name, Err: ErrInvalidEventName}
	}

	o.mu.RLock()
	listeners := slices.Clone(o.events[name])
	o.mu.RUnlock()

	o.log.Debug("trigger", "event", name, "count", len(listeners), "args", len(args))

	for _, l := range listeners {
		if err := l.call(args); err != nil {
			return &HandlerError{Event: name, ListenerID: l.id, Err: err}
		}
	}
	return nil
}

// TriggerValue is Trigger for loosely typed input: name must be a non-empty
// string, anything else fails with an *ArgumentError.
func (o *Object) TriggerValue(name any, args ...any) error {
	n, err := EventName(name)
	if err != nil {
		return err
	}
	return o.Trigger(n, args...)
}

// EventName validates v as an event name.
func EventName(v any) (string, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &ArgumentError{Op: "trigger", Value: v, Err: ErrInvalidEventName}
	}
	return s, nil
}

// Events returns a copy of the registry.
func (o *Object) Events() map[string][]*Listener {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string][]*Listener, len(o.events))
	for name, list := range o.events {
		out[name] = slices.Clone(list)
	}
	return out
}

// Listeners returns a copy of the sequence registered under name.
func (o *Object) Listeners(name string) []*Listener {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.events[name])
}

// Has reports whether name has at least one listener.
func (o *Object) Has(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.events[name]
	return ok
}

// ListenerCount returns the number of listeners registered under name.
func (o *Object) ListenerCount(name string) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.events[name])
}

// EventNames returns the registered event names, sorted.
func (o *Object) EventNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Sorted(maps.Keys(o.events))
}
