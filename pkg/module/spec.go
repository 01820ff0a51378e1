package module

import "maps"

// Spec is a declarative module instance: an external type plus its bound
// inputs and parameters.
type Spec struct {
	// Label names this instance within a job, e.g. "upartEvaluator".
	Label string

	// TypeName identifies the external implementation.
	TypeName string

	// Inputs maps slot name to data-product label.
	Inputs map[string]string

	// Params maps parameter name to a native scalar value.
	Params map[string]any
}

// Clone returns a copy of s that shares no maps with it.
func (s Spec) Clone() Spec {
	out := s
	out.Inputs = maps.Clone(s.Inputs)
	out.Params = maps.Clone(s.Params)
	return out
}
