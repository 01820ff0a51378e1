// Package output emits assembled jobs for downstream consumers.
//
// Two shapes are supported. JSON and YAML write the bare job document,
// which is what an execution host loads. JSONL wraps every emission in a
// typed record envelope so a pipeline can mix jobs, errors and summaries on
// one stream; each line is a self-contained JSON object.
package output

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/3leaps/gojobcfg/pkg/job"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: gojobcfg.<type>.v<version>
const (
	// TypeJob identifies assembled job records.
	TypeJob = "gojobcfg.job.v1"

	// TypeError identifies error records.
	TypeError = "gojobcfg.error.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "gojobcfg.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// The type field determines how to interpret the Data payload.
type Record struct {
	// Type identifies the record type (e.g., "gojobcfg.job.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this invocation.
	JobID string `json:"job_id"`

	// Recipe names the recipe the job was assembled from.
	Recipe string `json:"recipe"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// JobRecord is the data payload for an assembled job.
type JobRecord struct {
	// Fingerprint is the content hash of Document.
	Fingerprint string `json:"fingerprint"`

	// Document is the job handed to the execution host.
	Document job.Document `json:"document"`
}

// ErrorRecord is the data payload for errors.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Parameter is the parameter related to this error, if applicable.
	Parameter string `json:"parameter,omitempty"`

	// Stage is the assembly stage that failed, if applicable.
	Stage string `json:"stage,omitempty"`

	// Details contains additional error context.
	Details any `json:"details,omitempty"`
}

// Error codes for ErrorRecord.
const (
	ErrCodeUnknownParameter = "UNKNOWN_PARAMETER"
	ErrCodeTypeCoercion     = "TYPE_COERCION"
	ErrCodeMultiplicity     = "MULTIPLICITY"
	ErrCodeMalformedArg     = "MALFORMED_ARGUMENT"
	ErrCodeMalformedTag     = "MALFORMED_TAG"
	ErrCodeEmptySource      = "EMPTY_SOURCE"
	ErrCodeInvalidLocator   = "INVALID_LOCATOR"
	ErrCodeDuplicateService = "DUPLICATE_SERVICE"
	ErrCodeMissingBinding   = "MISSING_BINDING"
	ErrCodeInternal         = "INTERNAL"
)

// SummaryRecord is the data payload for final summaries.
type SummaryRecord struct {
	// Process is the job's process name.
	Process string `json:"process"`

	// Inputs is the number of source locators.
	Inputs int `json:"inputs"`

	// MaxEvents is the source bound; -1 for unbounded.
	MaxEvents int `json:"max_events"`

	// Modules is the number of scheduled modules.
	Modules int `json:"modules"`

	// ExplicitParameters lists parameters supplied by the caller rather
	// than defaulted.
	ExplicitParameters []string `json:"explicit_parameters,omitempty"`

	// Duration is the total assembly duration.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is a human-readable duration string.
	DurationHuman string `json:"duration"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")

	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
