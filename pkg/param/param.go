// Package param declares the vocabulary of configurable job options and
// resolves raw command-line input against it.
//
// A Registry holds ParameterSpecs keyed by an enumerated Name. Resolve
// coerces raw string input into a ParameterSet whose values are native Go
// types (string, int, float64, bool, or slices of those for list
// parameters). Parameters absent from the raw input take their registered
// default.
//
// Example:
//
//	reg := param.NewRegistry()
//	_ = reg.Register(param.Spec{
//		Name:         param.MaxEvents,
//		Type:         param.TypeInt,
//		Multiplicity: param.Single,
//		Default:      1000,
//		Description:  "Maximum number of events to process",
//	})
//	raw, _ := param.ParseArgs([]string{"maxEvents=10"})
//	set, _ := param.Resolve(raw, reg)
//	n, _ := set.Int(param.MaxEvents) // 10
package param

import "fmt"

// Name identifies a registered parameter.
type Name string

// Well-known parameter names used by the bundled job recipes.
const (
	InputFiles          Name = "inputFiles"
	OutputFile          Name = "outputFile"
	MaxEvents           Name = "maxEvents"
	ModelPath           Name = "modelPath"
	JetPtMin            Name = "jetPtMin"
	JetEtaMax           Name = "jetEtaMax"
	GlobalTag           Name = "globalTag"
	ConditionsOverrides Name = "conditionsOverrides"
	ReportEvery         Name = "reportEvery"
	LogThreshold        Name = "logThreshold"
)

// ValueType is the scalar type of a parameter value.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeInt    ValueType = "int"
	TypeFloat  ValueType = "float"
	TypeBool   ValueType = "bool"
)

// Valid reports whether t is one of the supported value types.
func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeBool:
		return true
	}
	return false
}

// Multiplicity controls whether a parameter holds one value or a list.
type Multiplicity string

const (
	Single Multiplicity = "single"
	List   Multiplicity = "list"
)

// Valid reports whether m is a supported multiplicity.
func (m Multiplicity) Valid() bool {
	return m == Single || m == List
}

// Spec declares a single configurable option.
type Spec struct {
	// Name is unique within a Registry.
	Name Name

	// Type is the scalar value type.
	Type ValueType

	// Multiplicity is Single or List.
	Multiplicity Multiplicity

	// Default must type-check against Type and Multiplicity.
	// A nil default for a List parameter is an empty list.
	Default any

	// Description is shown in help listings.
	Description string

	// Choices restricts string values to the listed set. Optional.
	Choices []string

	// MaxItems bounds the length of a List parameter (0 = unbounded).
	MaxItems int
}

// IsList reports whether the spec declares a list parameter.
func (s Spec) IsList() bool {
	return s.Multiplicity == List
}

// TypeLabel returns a compact type label such as "int" or "list<string>".
func (s Spec) TypeLabel() string {
	if s.IsList() {
		return fmt.Sprintf("list<%s>", s.Type)
	}
	return string(s.Type)
}
