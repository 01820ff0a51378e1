package job

import (
	"fmt"
	"slices"

	"github.com/3leaps/gojobcfg/pkg/conditions"
	"github.com/3leaps/gojobcfg/pkg/module"
	"github.com/3leaps/gojobcfg/pkg/param"
)

// ParamBinder derives a parameter map from the resolved parameter set.
type ParamBinder func(set *param.Set) (map[string]any, error)

// ServiceDecl declares one job-wide service.
type ServiceDecl struct {
	TypeName string
	Params   ParamBinder
}

// ModuleDecl declares one module instance on the job's path.
type ModuleDecl struct {
	// Label names the instance within the job.
	Label string

	// Contract is the external module's declared interface.
	Contract module.Contract

	// Inputs binds slots to fixed, well-known data-product labels.
	Inputs map[string]string

	// Params populates module parameters from the parameter set.
	Params ParamBinder
}

// Blueprint is the job author's declaration of what to assemble.
type Blueprint struct {
	// Process names the job for the execution host.
	Process string

	// Recipe is recorded on the description for traceability. Optional.
	Recipe string

	// PathName names the single path. Defaults to "p".
	PathName string

	// SourceParam and MaxEventsParam select the parameters that feed the
	// source. Default to param.InputFiles and param.MaxEvents.
	SourceParam    param.Name
	MaxEventsParam param.Name

	// Fragments are standard configuration fragments the host should load
	// before the job, in order.
	Fragments []string

	Services []ServiceDecl
	Modules  []ModuleDecl
}

// DefaultPathName is used when a blueprint does not name its path.
const DefaultPathName = "p"

// Builder assembles Descriptions from parameter sets. A Builder holds no
// per-build state; Build may be called any number of times.
type Builder struct {
	bp Blueprint
}

// NewBuilder validates bp and returns a Builder for it.
func NewBuilder(bp Blueprint) (*Builder, error) {
	if bp.Process == "" {
		return nil, fmt.Errorf("%w: process name is required", ErrInvalidBlueprint)
	}
	if bp.PathName == "" {
		bp.PathName = DefaultPathName
	}
	if bp.SourceParam == "" {
		bp.SourceParam = param.InputFiles
	}
	if bp.MaxEventsParam == "" {
		bp.MaxEventsParam = param.MaxEvents
	}
	for i, m := range bp.Modules {
		if m.Label == "" {
			return nil, fmt.Errorf("%w: module %d has no label", ErrInvalidBlueprint, i)
		}
		if err := m.Contract.Validate(); err != nil {
			return nil, fmt.Errorf("%w: module %s: %v", ErrInvalidBlueprint, m.Label, err)
		}
	}
	for i, s := range bp.Services {
		if s.TypeName == "" {
			return nil, fmt.Errorf("%w: service %d has no type name", ErrInvalidBlueprint, i)
		}
	}
	bp.Fragments = slices.Clone(bp.Fragments)
	bp.Services = slices.Clone(bp.Services)
	bp.Modules = slices.Clone(bp.Modules)
	return &Builder{bp: bp}, nil
}

// Blueprint returns the builder's blueprint.
func (b *Builder) Blueprint() Blueprint {
	return b.bp
}

// Build assembles a Description from set and tag.
//
// Assembly runs source, services, modules, then schedule. It is
// all-or-nothing: on any error no Description is returned. Errors wrap
// ErrEmptySource, ErrInvalidLocator, ErrDuplicateService,
// ErrDuplicateModule, conditions.ErrMalformedTag, or the module binding
// errors (module.ErrMissingBinding and friends).
//
// Numeric module thresholds are passed through without range checks; the
// external module owns their meaning.
func (b *Builder) Build(set *param.Set, tag conditions.Tag) (*Description, error) {
	if set == nil {
		return nil, &AssemblyError{Stage: "source", Err: fmt.Errorf("%w: parameter set is nil", ErrInvalidBlueprint)}
	}

	// 1. Source
	uris, err := set.Strings(b.bp.SourceParam)
	if err != nil {
		return nil, &AssemblyError{Stage: "source", Err: err}
	}
	maxEvents, err := set.Int(b.bp.MaxEventsParam)
	if err != nil {
		return nil, &AssemblyError{Stage: "source", Err: err}
	}
	source, err := buildSource(uris, maxEvents)
	if err != nil {
		return nil, err
	}

	// Conditions are built by the caller; only well-formedness is checked.
	if tag.IsZero() {
		return nil, &AssemblyError{Stage: "conditions", Err: fmt.Errorf("%w: tag is required", conditions.ErrMalformedTag)}
	}

	// 2. Services, each type exactly once
	services := make([]Service, 0, len(b.bp.Services))
	seenServices := make(map[string]bool, len(b.bp.Services))
	for _, decl := range b.bp.Services {
		if seenServices[decl.TypeName] {
			return nil, &AssemblyError{Stage: "services", Subject: decl.TypeName, Err: ErrDuplicateService}
		}
		seenServices[decl.TypeName] = true

		params, err := bindParams(decl.Params, set)
		if err != nil {
			return nil, &AssemblyError{Stage: "services", Subject: decl.TypeName, Err: err}
		}
		services = append(services, Service{TypeName: decl.TypeName, Params: params})
	}

	// 3. Modules, in declaration order
	modules := make([]module.Spec, 0, len(b.bp.Modules))
	seenLabels := make(map[string]bool, len(b.bp.Modules))
	for _, decl := range b.bp.Modules {
		if seenLabels[decl.Label] {
			return nil, &AssemblyError{Stage: "modules", Subject: decl.Label, Err: ErrDuplicateModule}
		}
		seenLabels[decl.Label] = true

		params, err := bindParams(decl.Params, set)
		if err != nil {
			return nil, &AssemblyError{Stage: "modules", Subject: decl.Label, Err: err}
		}
		spec, err := decl.Contract.Bind(decl.Label, decl.Inputs, params)
		if err != nil {
			return nil, &AssemblyError{Stage: "modules", Subject: decl.Label, Err: err}
		}
		modules = append(modules, spec)
	}

	// 4. One path, one schedule
	schedule := Schedule{Paths: []Path{{Name: b.bp.PathName, Modules: modules}}}

	// 5. Freeze
	return &Description{
		process:    b.bp.Process,
		recipe:     b.bp.Recipe,
		source:     source,
		conditions: tag,
		fragments:  slices.Clone(b.bp.Fragments),
		services:   services,
		schedule:   schedule,
		params:     set.Snapshot(),
	}, nil
}

func bindParams(binder ParamBinder, set *param.Set) (map[string]any, error) {
	if binder == nil {
		return map[string]any{}, nil
	}
	params, err := binder(set)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	return cloneParams(params), nil
}
