// Package module describes externally implemented processing modules by
// their declared contract: the input slots they accept and the typed
// parameters they take.
//
// The assembly layer never knows what a module does. A Contract lets it
// check a module declaration structurally: every bound slot exists, every
// required slot is bound, every parameter is declared and well-typed.
package module

import (
	"fmt"
	"maps"
	"slices"

	"github.com/3leaps/gojobcfg/pkg/param"
)

// Slot is a named input a module consumes, bound to a data-product label.
type Slot struct {
	// Name is the slot name, e.g. "jets".
	Name string

	// Required slots must be bound, either explicitly or by Default.
	Required bool

	// Default is the data-product label used when no binding is given.
	Default string
}

// ParamField declares one module parameter.
type ParamField struct {
	Name     string
	Type     param.ValueType
	Required bool

	// Default is used when the parameter is not supplied. Nil means no
	// default.
	Default any
}

// Contract is the declared interface of an external module type.
type Contract struct {
	// TypeName identifies the external implementation.
	TypeName string

	Slots  []Slot
	Params []ParamField
}

// Validate checks the contract itself for empty or duplicate names and
// ill-typed defaults.
func (c Contract) Validate() error {
	if c.TypeName == "" {
		return fmt.Errorf("%w: type name is required", ErrInvalidContract)
	}
	seen := make(map[string]bool)
	for _, s := range c.Slots {
		if s.Name == "" {
			return fmt.Errorf("%w: %s: slot name is required", ErrInvalidContract, c.TypeName)
		}
		if seen["slot:"+s.Name] {
			return fmt.Errorf("%w: %s: duplicate slot %q", ErrInvalidContract, c.TypeName, s.Name)
		}
		seen["slot:"+s.Name] = true
	}
	for _, p := range c.Params {
		if p.Name == "" {
			return fmt.Errorf("%w: %s: parameter name is required", ErrInvalidContract, c.TypeName)
		}
		if seen["param:"+p.Name] {
			return fmt.Errorf("%w: %s: duplicate parameter %q", ErrInvalidContract, c.TypeName, p.Name)
		}
		seen["param:"+p.Name] = true
		if !p.Type.Valid() {
			return fmt.Errorf("%w: %s.%s: unsupported type %q", ErrInvalidContract, c.TypeName, p.Name, p.Type)
		}
		if p.Default != nil {
			if _, err := param.Normalize(p.Type, p.Default); err != nil {
				return fmt.Errorf("%w: %s.%s default: %v", ErrInvalidContract, c.TypeName, p.Name, err)
			}
		}
	}
	return nil
}

// SlotNames returns the declared slot names in declaration order.
func (c Contract) SlotNames() []string {
	out := make([]string, 0, len(c.Slots))
	for _, s := range c.Slots {
		out = append(out, s.Name)
	}
	return out
}

// Bind produces a Spec for a module instance labelled label.
//
// Bind returns an error wrapping:
//   - ErrUnknownSlot if bindings names a slot the contract does not declare
//   - ErrMissingBinding if a required slot has neither a binding nor a
//     default, or a required parameter has neither a value nor a default
//   - ErrUnknownParam if params names an undeclared parameter
//   - ErrParamType if a parameter value has the wrong type
func (c Contract) Bind(label string, bindings map[string]string, params map[string]any) (Spec, error) {
	if label == "" {
		return Spec{}, fmt.Errorf("%w: module label is required", ErrInvalidContract)
	}

	for _, name := range slices.Sorted(maps.Keys(bindings)) {
		if !slices.Contains(c.SlotNames(), name) {
			return Spec{}, &BindError{Label: label, TypeName: c.TypeName, Field: name, Err: ErrUnknownSlot}
		}
	}

	declared := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		declared[p.Name] = true
	}
	for _, name := range slices.Sorted(maps.Keys(params)) {
		if !declared[name] {
			return Spec{}, &BindError{Label: label, TypeName: c.TypeName, Field: name, Err: ErrUnknownParam}
		}
	}

	inputs := make(map[string]string, len(c.Slots))
	for _, s := range c.Slots {
		ref, ok := bindings[s.Name]
		if !ok || ref == "" {
			ref = s.Default
		}
		if ref == "" {
			if s.Required {
				return Spec{}, &BindError{Label: label, TypeName: c.TypeName, Field: s.Name, Err: ErrMissingBinding}
			}
			continue
		}
		inputs[s.Name] = ref
	}

	values := make(map[string]any, len(c.Params))
	for _, p := range c.Params {
		v, ok := params[p.Name]
		if !ok {
			v = p.Default
		}
		if v == nil {
			if p.Required {
				return Spec{}, &BindError{Label: label, TypeName: c.TypeName, Field: p.Name, Err: ErrMissingBinding}
			}
			continue
		}
		norm, err := param.Normalize(p.Type, v)
		if err != nil {
			return Spec{}, &BindError{Label: label, TypeName: c.TypeName, Field: p.Name, Err: ErrParamType, Detail: err.Error()}
		}
		values[p.Name] = norm
	}

	return Spec{
		Label:    label,
		TypeName: c.TypeName,
		Inputs:   inputs,
		Params:   values,
	}, nil
}
