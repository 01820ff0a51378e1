package param

import (
	"fmt"
	"slices"
)

// Registry holds the declared parameter vocabulary for a job.
//
// A Registry is populated once during setup and treated as read-only
// afterwards. It holds no external resources.
type Registry struct {
	specs map[Name]Spec
	order []Name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[Name]Spec)}
}

// Register adds spec to the registry.
//
// Returns an error wrapping:
//   - ErrInvalidSpec if the name is empty or the type/multiplicity is unsupported
//   - ErrDuplicateName if the name is already registered
//   - ErrInvalidDefault if the default does not type-check
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" {
		return newError(spec.Name, ErrInvalidSpec, "", "name is required")
	}
	if !spec.Type.Valid() {
		return newError(spec.Name, ErrInvalidSpec, string(spec.Type), "unsupported value type")
	}
	if !spec.Multiplicity.Valid() {
		return newError(spec.Name, ErrInvalidSpec, string(spec.Multiplicity), "unsupported multiplicity")
	}
	if len(spec.Choices) > 0 && spec.Type != TypeString {
		return newError(spec.Name, ErrInvalidSpec, "", "choices require a string parameter")
	}
	if spec.MaxItems < 0 || (spec.MaxItems > 0 && !spec.IsList()) {
		return newError(spec.Name, ErrInvalidSpec, "", "max items requires a list parameter and must be >= 0")
	}
	if _, exists := r.specs[spec.Name]; exists {
		return newError(spec.Name, ErrDuplicateName, "", "")
	}

	def, err := normalizeValue(spec, spec.Default)
	if err != nil {
		return newError(spec.Name, ErrInvalidDefault, fmt.Sprintf("%v", spec.Default), err.Error())
	}
	spec.Default = def
	spec.Choices = slices.Clone(spec.Choices)

	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// MustRegister registers every spec or panics. Intended for package-level
// recipe declarations whose specs are fixed at compile time.
func (r *Registry) MustRegister(specs ...Spec) *Registry {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(fmt.Sprintf("param: %v", err))
		}
	}
	return r
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name Name) (Spec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return Spec{}, newError(name, ErrUnknownParameter, "", "")
	}
	spec.Default = cloneValue(spec.Default)
	spec.Choices = slices.Clone(spec.Choices)
	return spec, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []Name {
	return slices.Clone(r.order)
}

// Specs returns the registered specs in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		spec, _ := r.Lookup(name)
		out = append(out, spec)
	}
	return out
}

// Len returns the number of registered specs.
func (r *Registry) Len() int {
	return len(r.order)
}
