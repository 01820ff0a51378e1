package param

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry and resolution failures.
var (
	// ErrDuplicateName indicates a spec name is already registered.
	ErrDuplicateName = errors.New("duplicate parameter name")

	// ErrInvalidDefault indicates a default does not match its spec.
	ErrInvalidDefault = errors.New("invalid parameter default")

	// ErrInvalidSpec indicates a spec with an empty name or unsupported type.
	ErrInvalidSpec = errors.New("invalid parameter spec")

	// ErrUnknownParameter indicates no spec is registered for a name.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrTypeCoercion indicates a raw value cannot be coerced to the spec type.
	ErrTypeCoercion = errors.New("type coercion failed")

	// ErrMultiplicity indicates the number of values violates the spec multiplicity.
	ErrMultiplicity = errors.New("multiplicity violated")

	// ErrTypeMismatch indicates a typed accessor was used on a value of another type.
	ErrTypeMismatch = errors.New("parameter type mismatch")

	// ErrMalformedArgument indicates a command-line argument is not name=value.
	ErrMalformedArgument = errors.New("malformed argument")
)

// Error wraps a parameter failure with the offending parameter name.
type Error struct {
	// Name is the parameter the failure refers to.
	Name Name

	// Value is the raw input that triggered the failure, if any.
	Value string

	// Err is the sentinel cause.
	Err error

	// Detail is an optional human-readable explanation.
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Name, e.Err)
	if e.Value != "" {
		msg = fmt.Sprintf("%s: %v %q", e.Name, e.Err, e.Value)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap returns the sentinel cause for errors.Is support.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(name Name, cause error, value, detail string) *Error {
	return &Error{Name: name, Value: value, Err: cause, Detail: detail}
}

// IsUnknownParameter returns true if err indicates an unregistered name.
func IsUnknownParameter(err error) bool {
	return errors.Is(err, ErrUnknownParameter)
}

// IsTypeCoercion returns true if err indicates a coercion failure.
func IsTypeCoercion(err error) bool {
	return errors.Is(err, ErrTypeCoercion)
}

// IsMultiplicity returns true if err indicates a multiplicity violation.
func IsMultiplicity(err error) bool {
	return errors.Is(err, ErrMultiplicity)
}

// IsDuplicateName returns true if err indicates a duplicate registration.
func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// IsInvalidDefault returns true if err indicates an invalid default.
func IsInvalidDefault(err error) bool {
	return errors.Is(err, ErrInvalidDefault)
}
