package event

import (
	"maps"
	"slices"
)

// Get returns the property stored under key.
func (o *Object) Get(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.props[key]
	return v, ok
}

// Set stores a property. It never fires events.
func (o *Object) Set(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props[key] = value
}

// Keys returns the property names, sorted.
func (o *Object) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Sorted(maps.Keys(o.props))
}

// Props returns a copy of the property map.
func (o *Object) Props() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return maps.Clone(o.props)
}
