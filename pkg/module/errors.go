package module

import (
	"errors"
	"fmt"
)

// Sentinel errors for contract binding.
var (
	// ErrInvalidContract indicates a malformed contract or declaration.
	ErrInvalidContract = errors.New("invalid module contract")

	// ErrDuplicateContract indicates a type name is already in the catalog.
	ErrDuplicateContract = errors.New("duplicate module contract")

	// ErrUnknownContract indicates a type name is not in the catalog.
	ErrUnknownContract = errors.New("unknown module type")

	// ErrUnknownSlot indicates a binding for a slot the contract does not declare.
	ErrUnknownSlot = errors.New("unknown input slot")

	// ErrMissingBinding indicates a required slot or parameter has no value.
	ErrMissingBinding = errors.New("missing binding")

	// ErrUnknownParam indicates a parameter the contract does not declare.
	ErrUnknownParam = errors.New("unknown module parameter")

	// ErrParamType indicates a module parameter value of the wrong type.
	ErrParamType = errors.New("module parameter type mismatch")
)

// BindError reports which module field failed to bind.
type BindError struct {
	// Label is the module instance label.
	Label string

	// TypeName is the module type.
	TypeName string

	// Field is the slot or parameter name.
	Field string

	// Err is the sentinel cause.
	Err error

	// Detail is optional context.
	Detail string
}

// Error implements the error interface.
func (e *BindError) Error() string {
	msg := fmt.Sprintf("module %s (%s): %s: %v", e.Label, e.TypeName, e.Field, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel cause for errors.Is support.
func (e *BindError) Unwrap() error {
	return e.Err
}

// IsMissingBinding returns true if err indicates a missing required binding.
func IsMissingBinding(err error) bool {
	return errors.Is(err, ErrMissingBinding)
}
