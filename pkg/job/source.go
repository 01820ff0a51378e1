package job

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*$`)

// ValidateLocator checks that uri is a well-formed source locator.
//
// Accepted forms:
//   - file:/path/to/input.root
//   - /path/to/input.root or relative/input.root
//   - scheme://host/path (e.g. root://xrootd.example.org//store/a.root)
func ValidateLocator(uri string) error {
	if uri == "" {
		return fmt.Errorf("%w: empty locator", ErrInvalidLocator)
	}
	if strings.TrimSpace(uri) != uri {
		return fmt.Errorf("%w: %q has leading or trailing whitespace", ErrInvalidLocator, uri)
	}
	if strings.IndexFunc(uri, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidLocator, uri)
	}

	if schemeEnd := strings.Index(uri, "://"); schemeEnd != -1 {
		scheme := uri[:schemeEnd]
		if !schemePattern.MatchString(scheme) {
			return fmt.Errorf("%w: %q has an invalid scheme", ErrInvalidLocator, uri)
		}
		remainder := uri[schemeEnd+3:]
		host, path, _ := strings.Cut(remainder, "/")
		if host == "" {
			return fmt.Errorf("%w: %q is missing a host", ErrInvalidLocator, uri)
		}
		if path == "" {
			return fmt.Errorf("%w: %q is missing a path", ErrInvalidLocator, uri)
		}
		if _, err := url.Parse(scheme + "://" + host + "/"); err != nil {
			return fmt.Errorf("%w: %q has an invalid host", ErrInvalidLocator, uri)
		}
		return nil
	}

	if path, ok := strings.CutPrefix(uri, "file:"); ok {
		if path == "" {
			return fmt.Errorf("%w: %q is missing a path", ErrInvalidLocator, uri)
		}
	}
	return nil
}

func buildSource(uris []string, maxEvents int) (Source, error) {
	if len(uris) == 0 {
		return Source{}, &AssemblyError{Stage: "source", Err: ErrEmptySource}
	}
	for i, uri := range uris {
		if err := ValidateLocator(uri); err != nil {
			return Source{}, &AssemblyError{Stage: "source", Subject: fmt.Sprintf("[%d]", i), Err: err}
		}
	}
	if maxEvents < Unbounded {
		return Source{}, &AssemblyError{Stage: "source", Err: fmt.Errorf("max events %d must be >= %d", maxEvents, Unbounded)}
	}
	out := make([]string, len(uris))
	copy(out, uris)
	return Source{URIs: out, MaxEvents: maxEvents}, nil
}
