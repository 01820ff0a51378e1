// Package conditions packages a symbolic conditions reference (a global
// tag plus per-record overrides) for deferred resolution by the execution
// host.
//
// This package validates only the well-formedness of the tag name. The
// meaning of a tag and its overrides belongs to the external resolver.
package conditions

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strings"
)

// ErrMalformedTag indicates an empty tag name, a tag name outside the
// naming convention, or an override entry that cannot be parsed.
var ErrMalformedTag = errors.New("malformed conditions tag")

// tagPattern is the naming convention: a non-empty token of letters,
// digits, underscore and dash.
var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Tag is a symbolic reference to externally resolved constants.
type Tag struct {
	name      string
	overrides map[string]string
}

// Build validates name and packages it with overrides.
//
// Overrides map a record name to an override string. They are copied and
// passed through without further validation.
func Build(name string, overrides map[string]string) (Tag, error) {
	if name == "" {
		return Tag{}, fmt.Errorf("%w: tag name is empty", ErrMalformedTag)
	}
	if !tagPattern.MatchString(name) {
		return Tag{}, fmt.Errorf("%w: %q must contain only letters, digits, '_' or '-'", ErrMalformedTag, name)
	}

	out := Tag{name: name}
	if len(overrides) > 0 {
		out.overrides = maps.Clone(overrides)
	}
	return out, nil
}

// ParseOverrides converts "record=value" entries into an override map.
// A later entry for the same record replaces an earlier one.
func ParseOverrides(entries []string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		record, value, ok := strings.Cut(entry, "=")
		record = strings.TrimSpace(record)
		if !ok || record == "" {
			return nil, fmt.Errorf("%w: override %q is not record=value", ErrMalformedTag, entry)
		}
		out[record] = strings.TrimSpace(value)
	}
	return out, nil
}

// Name returns the symbolic tag name.
func (t Tag) Name() string {
	return t.name
}

// Overrides returns a copy of the record overrides.
func (t Tag) Overrides() map[string]string {
	return maps.Clone(t.overrides)
}

// IsZero reports whether t was never built.
func (t Tag) IsZero() bool {
	return t.name == ""
}

// String returns the tag name.
func (t Tag) String() string {
	return t.name
}

// IsMalformedTag returns true if err indicates a malformed tag.
func IsMalformedTag(err error) bool {
	return errors.Is(err, ErrMalformedTag)
}
