package param

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Raw is unparsed input: parameter name to one or more raw strings.
//
// Keys are free-form strings as typed by the user. Resolve rejects any key
// that has no registered spec.
type Raw map[string][]string

// Add appends values under key.
func (r Raw) Add(key string, values ...string) {
	if _, ok := r[key]; !ok {
		r[key] = []string{}
	}
	r[key] = append(r[key], values...)
}

// Merge returns a new Raw where keys from later layers replace keys from
// earlier layers wholesale. Values are not concatenated across layers.
func Merge(layers ...Raw) Raw {
	out := Raw{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = slices.Clone(v)
			if out[k] == nil {
				out[k] = []string{}
			}
		}
	}
	return out
}

// Keys returns the raw keys in sorted order.
func (r Raw) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Resolve converts raw input into a Set consistent with reg.
//
// For each raw key, Resolve returns an error wrapping:
//   - ErrUnknownParameter if no spec is registered under that key
//   - ErrTypeCoercion if a value cannot be coerced to the spec type
//   - ErrMultiplicity if a Single parameter does not receive exactly one
//     value, or a List parameter exceeds its MaxItems
//
// Registered parameters absent from raw take their default. Keys are
// processed in sorted order so the reported error is deterministic.
func Resolve(raw Raw, reg *Registry) (*Set, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is nil", ErrInvalidSpec)
	}

	resolved := make(map[Name]any, reg.Len())
	explicit := make(map[Name]bool, len(raw))

	for _, key := range raw.Keys() {
		name := Name(key)
		spec, ok := reg.specs[name]
		if !ok {
			return nil, newError(name, ErrUnknownParameter, "", "")
		}
		val, err := resolveOne(spec, raw[key])
		if err != nil {
			return nil, err
		}
		resolved[name] = val
		explicit[name] = true
	}

	for _, name := range reg.order {
		if _, ok := resolved[name]; !ok {
			resolved[name] = cloneValue(reg.specs[name].Default)
		}
	}

	return &Set{
		values:   resolved,
		explicit: explicit,
		order:    slices.Clone(reg.order),
	}, nil
}

func resolveOne(spec Spec, values []string) (any, error) {
	if !spec.IsList() {
		if len(values) != 1 {
			return nil, newError(spec.Name, ErrMultiplicity, "",
				fmt.Sprintf("single parameter received %d values", len(values)))
		}
		val, err := coerceScalar(spec, values[0])
		if err != nil {
			return nil, newError(spec.Name, ErrTypeCoercion, values[0], err.Error())
		}
		return val, nil
	}

	items := splitListValues(values)
	if spec.MaxItems > 0 && len(items) > spec.MaxItems {
		return nil, newError(spec.Name, ErrMultiplicity, "",
			fmt.Sprintf("list parameter received %d values, max %d", len(items), spec.MaxItems))
	}
	scalars := make([]any, 0, len(items))
	for _, item := range items {
		val, err := coerceScalar(spec, item)
		if err != nil {
			return nil, newError(spec.Name, ErrTypeCoercion, item, err.Error())
		}
		scalars = append(scalars, val)
	}
	return typedList(spec.Type, scalars), nil
}

// splitListValues expands comma-separated entries and drops empty items,
// so "a,b" and ["a", "b"] resolve identically and "" yields an empty list.
// A comma escaped as `\,` is kept inside its item and `\\` is a literal
// backslash; any other backslash is left as is.
func splitListValues(values []string) []string {
	var out []string
	for _, v := range values {
		var b strings.Builder
		flush := func() {
			if part := strings.TrimSpace(b.String()); part != "" {
				out = append(out, part)
			}
			b.Reset()
		}
		for i := 0; i < len(v); i++ {
			c := v[i]
			switch {
			case c == '\\' && i+1 < len(v) && (v[i+1] == ',' || v[i+1] == '\\'):
				b.WriteByte(v[i+1])
				i++
			case c == ',':
				flush()
			default:
				b.WriteByte(c)
			}
		}
		flush()
	}
	return out
}

// escapeListItem protects a value that is already a single list item
// (a params-file sequence entry or a line of a _load file) from comma
// splitting.
func escapeListItem(item string) string {
	if !strings.ContainsAny(item, ",\\") {
		return item
	}
	return listItemEscaper.Replace(item)
}

var listItemEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`)
