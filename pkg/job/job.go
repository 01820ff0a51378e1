// Package job assembles a validated parameter set into an immutable job
// description: one source, one conditions tag, job-wide services, and a
// schedule of module paths.
//
// A Description is built once by a Builder and never mutated. Accessors
// return copies, and Document returns the exported wire form consumed by
// the execution host.
package job

import (
	"maps"
	"slices"

	"github.com/3leaps/gojobcfg/pkg/conditions"
	"github.com/3leaps/gojobcfg/pkg/module"
)

// Unbounded is the MaxEvents value meaning "process every event".
const Unbounded = -1

// Source is the ordered list of input locators.
type Source struct {
	URIs []string

	// MaxEvents bounds the number of processed units; Unbounded for no limit.
	MaxEvents int
}

// Service is a job-wide side-channel resource not owned by any module.
type Service struct {
	TypeName string
	Params   map[string]any
}

// Path is an ordered module sequence. Order is significant.
type Path struct {
	Name    string
	Modules []module.Spec
}

// Schedule is the ordered set of paths a job runs.
type Schedule struct {
	Paths []Path
}

// Description is the frozen job artifact.
type Description struct {
	process    string
	recipe     string
	source     Source
	conditions conditions.Tag
	fragments  []string
	services   []Service
	schedule   Schedule
	params     map[string]any
}

// Process returns the process name.
func (d *Description) Process() string { return d.process }

// Recipe returns the recipe the job was built from, if any.
func (d *Description) Recipe() string { return d.recipe }

// Source returns a copy of the source.
func (d *Description) Source() Source {
	return Source{URIs: slices.Clone(d.source.URIs), MaxEvents: d.source.MaxEvents}
}

// Conditions returns the conditions tag.
func (d *Description) Conditions() conditions.Tag { return d.conditions }

// Fragments returns the standard configuration fragments to load.
func (d *Description) Fragments() []string { return slices.Clone(d.fragments) }

// Services returns copies of the services in declaration order.
func (d *Description) Services() []Service {
	out := make([]Service, 0, len(d.services))
	for _, s := range d.services {
		out = append(out, Service{TypeName: s.TypeName, Params: cloneParams(s.Params)})
	}
	return out
}

// Schedule returns a copy of the schedule.
func (d *Description) Schedule() Schedule {
	return cloneSchedule(d.schedule)
}

// Parameters returns a copy of the resolved parameter snapshot.
func (d *Description) Parameters() map[string]any {
	return cloneParams(d.params)
}

// Modules returns every scheduled module in path order.
func (d *Description) Modules() []module.Spec {
	var out []module.Spec
	for _, p := range d.schedule.Paths {
		for _, m := range p.Modules {
			out = append(out, m.Clone())
		}
	}
	return out
}

func cloneSchedule(s Schedule) Schedule {
	paths := make([]Path, 0, len(s.Paths))
	for _, p := range s.Paths {
		mods := make([]module.Spec, 0, len(p.Modules))
		for _, m := range p.Modules {
			mods = append(mods, m.Clone())
		}
		paths = append(paths, Path{Name: p.Name, Modules: mods})
	}
	return Schedule{Paths: paths}
}

// cloneParams deep-copies a parameter map, including list values and
// nested maps.
func cloneParams(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := maps.Clone(in)
	for k, v := range out {
		switch l := v.(type) {
		case []string:
			out[k] = slices.Clone(l)
		case []int:
			out[k] = slices.Clone(l)
		case []float64:
			out[k] = slices.Clone(l)
		case []bool:
			out[k] = slices.Clone(l)
		case map[string]any:
			out[k] = cloneParams(l)
		}
	}
	return out
}
