package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/3leaps/gojobcfg/pkg/conditions"
	"github.com/3leaps/gojobcfg/pkg/job"
	"github.com/3leaps/gojobcfg/pkg/module"
	"github.com/3leaps/gojobcfg/pkg/param"
)

// Format selects how an assembled job is written.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatJSONL Format = "jsonl"
)

// ParseFormat parses a format name, case-insensitively. "yml" is accepted
// for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "jsonl":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("%w: %q (expected json, yaml or jsonl)", ErrUnknownFormat, s)
	}
}

// WriteDocument writes doc to w as indented JSON or YAML.
func WriteDocument(w io.Writer, doc job.Document, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return &WriteError{Op: "marshal_document", Err: err}
	}
	if err := writeAll(w, data); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

// NewErrorRecord classifies err into an ErrorRecord.
func NewErrorRecord(err error) *ErrorRecord {
	rec := &ErrorRecord{Code: ErrCodeInternal, Message: err.Error()}

	var pe *param.Error
	if errors.As(err, &pe) {
		rec.Parameter = string(pe.Name)
	}
	var ae *job.AssemblyError
	if errors.As(err, &ae) {
		rec.Stage = ae.Stage
	}

	switch {
	case param.IsUnknownParameter(err):
		rec.Code = ErrCodeUnknownParameter
	case param.IsTypeCoercion(err):
		rec.Code = ErrCodeTypeCoercion
	case param.IsMultiplicity(err):
		rec.Code = ErrCodeMultiplicity
	case errors.Is(err, param.ErrMalformedArgument):
		rec.Code = ErrCodeMalformedArg
	case conditions.IsMalformedTag(err):
		rec.Code = ErrCodeMalformedTag
	case job.IsEmptySource(err):
		rec.Code = ErrCodeEmptySource
	case errors.Is(err, job.ErrInvalidLocator):
		rec.Code = ErrCodeInvalidLocator
	case job.IsDuplicateService(err):
		rec.Code = ErrCodeDuplicateService
	case module.IsMissingBinding(err):
		rec.Code = ErrCodeMissingBinding
	}
	return rec
}

// UnmarshalText implements encoding.TextUnmarshaler so config decoding
// rejects unknown formats.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
