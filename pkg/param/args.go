package param

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// LoadSuffix marks an argument whose value is a file of list entries,
// e.g. "inputFiles_load=files.txt".
const LoadSuffix = "_load"

// ParseArgs parses "name=value" command-line arguments into Raw.
//
// Repeated names append. A "name_load=path" argument reads values for
// name from path, one per line; blank lines and lines starting with '#'
// are skipped. Each line is one list item even if it contains commas. An argument without '=' or with an empty name is rejected
// with ErrMalformedArgument.
//
// ParseArgs does not consult a registry: unknown names are rejected later
// by Resolve.
func ParseArgs(args []string) (Raw, error) {
	raw := Raw{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &Error{Name: Name(key), Value: arg, Err: ErrMalformedArgument, Detail: "expected name=value"}
		}

		if base, isLoad := strings.CutSuffix(key, LoadSuffix); isLoad && base != "" {
			values, err := readListFile(value)
			if err != nil {
				return nil, &Error{Name: Name(base), Value: value, Err: fmt.Errorf("%w: %w", ErrMalformedArgument, err)}
			}
			raw.Add(base, values...)
			continue
		}

		raw.Add(key, value)
	}
	return raw, nil
}

func readListFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("list file not found: %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read list file: %w", err)
	}

	values := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, escapeListItem(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan list file: %w", err)
	}
	return values, nil
}
