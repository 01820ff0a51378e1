package job

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline assembly.
var (
	// ErrEmptySource indicates the resolved input list is empty.
	ErrEmptySource = errors.New("empty source")

	// ErrInvalidLocator indicates a source entry is not a well-formed locator.
	ErrInvalidLocator = errors.New("invalid source locator")

	// ErrDuplicateService indicates a service type was declared twice.
	ErrDuplicateService = errors.New("duplicate service")

	// ErrDuplicateModule indicates a module label was declared twice.
	ErrDuplicateModule = errors.New("duplicate module label")

	// ErrInvalidBlueprint indicates a blueprint missing required fields.
	ErrInvalidBlueprint = errors.New("invalid blueprint")
)

// AssemblyError records the assembly stage that failed.
type AssemblyError struct {
	// Stage is one of "source", "conditions", "services", "modules", "schedule".
	Stage string

	// Subject names the entry within the stage (service type, module label,
	// source index), if any.
	Subject string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *AssemblyError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("assemble %s %s: %v", e.Stage, e.Subject, e.Err)
	}
	return fmt.Sprintf("assemble %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// IsEmptySource returns true if err indicates an empty source.
func IsEmptySource(err error) bool {
	return errors.Is(err, ErrEmptySource)
}

// IsDuplicateService returns true if err indicates a duplicate service.
func IsDuplicateService(err error) bool {
	return errors.Is(err, ErrDuplicateService)
}
