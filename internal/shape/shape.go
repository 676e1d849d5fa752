// Package shape normalizes loosely typed input for the event package.
//
// Normalize turns a plain key/value map into property descriptors that an
// augmented object copies into its own store. Listify coerces a scalar or a
// sequence into a sequence.
package shape

import (
	"fmt"
	"reflect"
)

// Descriptor wraps a single property value.
type Descriptor struct {
	Value any
}

// descriptorKey marks a map that already has descriptor shape.
const descriptorKey = "value"

// Normalize returns one descriptor per key of src.
// Keys whose value is already a descriptor (a Descriptor, a *Descriptor or a
// map with a "value" key) are skipped so that augmenting an already
// normalized map is idempotent.
func Normalize(src map[string]any) map[string]Descriptor {
	out := make(map[string]Descriptor, len(src))
	for k, v := range src {
		if IsDescriptor(v) {
			continue
		}
		out[k] = Descriptor{Value: v}
	}
	return out
}

// IsDescriptor reports whether v is already in descriptor shape.
func IsDescriptor(v any) bool {
	switch d := v.(type) {
	case Descriptor, *Descriptor:
		return true
	case map[string]any:
		_, ok := d[descriptorKey]
		return ok
	}
	return false
}

// Values flattens descriptors back into a plain map.
func Values(descs map[string]Descriptor) map[string]any {
	out := make(map[string]any, len(descs))
	for k, d := range descs {
		out[k] = d.Value
	}
	return out
}

// Listify wraps a scalar into a single-element slice and passes sequences
// through. nil yields an empty slice.
func Listify(v any) []any {
	switch s := v.(type) {
	case nil:
		return []any{}
	case []any:
		return s
	case string:
		return []any{s}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

// Strings listifies v and requires every element to be a string.
func Strings(v any) ([]string, error) {
	items := Listify(v)
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %d: expected string, got %T", i, item)
		}
		out = append(out, s)
	}
	return out, nil
}
