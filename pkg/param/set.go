package param

import (
	"fmt"
	"reflect"
	"slices"
)

// Set is a resolved, immutable mapping from parameter name to native value.
//
// Every key corresponds to a spec in the registry that produced it and
// every value is already type- and multiplicity-consistent with that spec.
// A Set is safe for concurrent reads.
type Set struct {
	values   map[Name]any
	explicit map[Name]bool
	order    []Name
}

// Value returns a copy of the resolved value for name.
func (s *Set) Value(name Name) (any, bool) {
	v, ok := s.values[name]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// IsSet reports whether name was supplied in raw input rather than defaulted.
func (s *Set) IsSet(name Name) bool {
	return s.explicit[name]
}

// Names returns the resolved names in registry order.
func (s *Set) Names() []Name {
	return slices.Clone(s.order)
}

// Len returns the number of resolved parameters.
func (s *Set) Len() int {
	return len(s.order)
}

// Snapshot returns a deep copy of the resolved values keyed by name.
func (s *Set) Snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for name, v := range s.values {
		out[string(name)] = cloneValue(v)
	}
	return out
}

// Equal reports whether two sets hold the same names and values.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	return reflect.DeepEqual(s.values, other.values)
}

// String returns the value of a single string parameter.
func (s *Set) String(name Name) (string, error) {
	return typed[string](s, name)
}

// Int returns the value of a single int parameter.
func (s *Set) Int(name Name) (int, error) {
	return typed[int](s, name)
}

// Float returns the value of a single float parameter.
func (s *Set) Float(name Name) (float64, error) {
	return typed[float64](s, name)
}

// Bool returns the value of a single bool parameter.
func (s *Set) Bool(name Name) (bool, error) {
	return typed[bool](s, name)
}

// Strings returns a copy of the value of a list<string> parameter.
func (s *Set) Strings(name Name) ([]string, error) {
	v, err := typed[[]string](s, name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(v), nil
}

// Floats returns a copy of the value of a list<float> parameter.
func (s *Set) Floats(name Name) ([]float64, error) {
	v, err := typed[[]float64](s, name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(v), nil
}

func typed[T any](s *Set, name Name) (T, error) {
	var zero T
	v, ok := s.values[name]
	if !ok {
		return zero, newError(name, ErrUnknownParameter, "", "")
	}
	out, ok := v.(T)
	if !ok {
		return zero, newError(name, ErrTypeMismatch, "", fmt.Sprintf("value is %T, not %T", v, zero))
	}
	return out, nil
}
