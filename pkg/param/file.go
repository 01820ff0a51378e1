package param

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	schemasassets "github.com/3leaps/gojobcfg/internal/assets/schemas"
	"github.com/3leaps/gojobcfg/internal/schemavalidate"
)

var paramsSchema = schemavalidate.New("params-file", schemasassets.ParamsFileSchema)

// LoadRawFile reads a params file (YAML or JSON mapping of name to scalar
// or list) and converts it to Raw.
//
// The file is validated against the embedded params-file schema before
// conversion. Values are rendered back to strings so that file input and
// command-line input go through the same coercion in Resolve.
func LoadRawFile(path string) (Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("params file not found: %s: %w", path, os.ErrNotExist)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied reading params file: %s", path)
		}
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}
	return LoadRawBytes(data, path)
}

// LoadRawBytes parses a params document. path is used for format detection
// (.json is parsed as JSON, anything else as YAML).
func LoadRawBytes(data []byte, path string) (Raw, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("params file is empty")
	}

	var doc map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON in params file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML in params file: %w", err)
		}
	}

	if err := paramsSchema.ValidateValue(doc); err != nil {
		return nil, fmt.Errorf("invalid params file: %w", err)
	}

	raw := Raw{}
	for key, v := range doc {
		switch val := v.(type) {
		case []any:
			values := make([]string, 0, len(val))
			for _, item := range val {
				values = append(values, escapeListItem(renderScalar(item)))
			}
			raw[key] = values
		default:
			raw[key] = []string{renderScalar(val)}
		}
	}
	return raw, nil
}

func renderScalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}
