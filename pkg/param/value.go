package param

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Raw numeric input must be a plain base-10 literal: no fractions for ints,
// no octal, hex, binary or underscore forms, no inf or nan.
var (
	intLiteral   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatLiteral = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// normalizeValue converts a Go value into the canonical native form for
// spec, or returns an error if it does not type-check.
func normalizeValue(spec Spec, v any) (any, error) {
	if !spec.IsList() {
		if v == nil {
			return nil, errors.New("single parameter requires a default")
		}
		val, err := normalizeScalar(spec.Type, v)
		if err != nil {
			return nil, err
		}
		if err := checkChoice(spec, val); err != nil {
			return nil, err
		}
		return val, nil
	}

	items, err := listItems(v)
	if err != nil {
		return nil, err
	}
	if spec.MaxItems > 0 && len(items) > spec.MaxItems {
		return nil, fmt.Errorf("%d items exceeds max of %d", len(items), spec.MaxItems)
	}
	scalars := make([]any, 0, len(items))
	for i, item := range items {
		val, err := normalizeScalar(spec.Type, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if err := checkChoice(spec, val); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		scalars = append(scalars, val)
	}
	return typedList(spec.Type, scalars), nil
}

func normalizeScalar(t ValueType, v any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int8, int16, int32, int64, uint8, uint16, uint32:
			return cast.ToIntE(n)
		}
	case TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32, int, int8, int16, int32, int64:
			return cast.ToFloat64E(n)
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%T is not a %s value", v, t)
}

func listItems(v any) ([]any, error) {
	switch l := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return l, nil
	case []string:
		return toAnySlice(l), nil
	case []int:
		return toAnySlice(l), nil
	case []float64:
		return toAnySlice(l), nil
	case []bool:
		return toAnySlice(l), nil
	}
	return nil, fmt.Errorf("%T is not a list value", v)
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// typedList builds a concrete slice from already-normalized scalars.
// The result is never nil so that empty lists compare equal.
func typedList(t ValueType, scalars []any) any {
	switch t {
	case TypeString:
		return collect[string](scalars)
	case TypeInt:
		return collect[int](scalars)
	case TypeFloat:
		return collect[float64](scalars)
	default:
		return collect[bool](scalars)
	}
}

func collect[T any](scalars []any) []T {
	out := make([]T, 0, len(scalars))
	for _, s := range scalars {
		out = append(out, s.(T))
	}
	return out
}

func checkChoice(spec Spec, v any) error {
	if len(spec.Choices) == 0 {
		return nil
	}
	s, _ := v.(string)
	if slices.Contains(spec.Choices, s) {
		return nil
	}
	return fmt.Errorf("must be one of [%s]", strings.Join(spec.Choices, ", "))
}

// coerceScalar converts one raw string into the spec's native scalar type.
func coerceScalar(spec Spec, raw string) (any, error) {
	var (
		val any
		err error
	)
	trimmed := strings.TrimSpace(raw)
	switch spec.Type {
	case TypeString:
		val = raw
	case TypeInt:
		if trimmed == "" {
			return nil, errors.New("empty value")
		}
		if !intLiteral.MatchString(trimmed) {
			return nil, fmt.Errorf("not a valid %s", spec.Type)
		}
		// cast parses with base 0, which would read "010" as octal.
		var n int64
		n, err = strconv.ParseInt(trimmed, 10, 0)
		val = int(n)
	case TypeFloat:
		if trimmed == "" {
			return nil, errors.New("empty value")
		}
		if !floatLiteral.MatchString(trimmed) {
			return nil, fmt.Errorf("not a valid %s", spec.Type)
		}
		val, err = cast.ToFloat64E(trimmed)
	case TypeBool:
		if trimmed == "" {
			return nil, errors.New("empty value")
		}
		val, err = cast.ToBoolE(trimmed)
	default:
		return nil, fmt.Errorf("unsupported type %s", spec.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("not a valid %s", spec.Type)
	}
	if err := checkChoice(spec, val); err != nil {
		return nil, err
	}
	return val, nil
}

// cloneValue copies list values so callers cannot alias internal state.
func cloneValue(v any) any {
	switch l := v.(type) {
	case []string:
		return slices.Clone(l)
	case []int:
		return slices.Clone(l)
	case []float64:
		return slices.Clone(l)
	case []bool:
		return slices.Clone(l)
	}
	return v
}

// Normalize converts a native Go scalar into the canonical form for t
// (int widths to int, float32 and ints to float64). It is used by other
// packages that declare typed parameter schemas.
func Normalize(t ValueType, v any) (any, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unsupported type %s", t)
	}
	return normalizeScalar(t, v)
}
