// Package recipe names the job authors' declarations: which parameters a
// job accepts, how its conditions tag is chosen, and which services and
// modules it schedules.
//
// A Recipe is pure data plus binders. Assemble drives one invocation end to
// end: resolve raw input against a fresh registry, build the conditions
// tag, then build the job description.
package recipe

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/3leaps/gojobcfg/pkg/conditions"
	"github.com/3leaps/gojobcfg/pkg/job"
	"github.com/3leaps/gojobcfg/pkg/module"
	"github.com/3leaps/gojobcfg/pkg/param"
)

var (
	// ErrUnknownRecipe indicates a lookup for a recipe that is not registered.
	ErrUnknownRecipe = errors.New("unknown recipe")

	// ErrDuplicateRecipe indicates a recipe name registered twice.
	ErrDuplicateRecipe = errors.New("duplicate recipe")
)

// Recipe declares a job.
type Recipe interface {
	// Name is the unique recipe name, e.g. "upart-standalone".
	Name() string

	// Description is a one-line human description.
	Description() string

	// Registry returns a freshly constructed parameter registry.
	Registry() *param.Registry

	// Blueprint returns the builder declaration for the job.
	Blueprint() job.Blueprint

	// Conditions builds the conditions tag from resolved parameters.
	Conditions(set *param.Set) (conditions.Tag, error)
}

// Registry holds recipes by name, and the catalog of module contracts
// their blueprints declare.
type Registry struct {
	mu      sync.RWMutex
	recipes map[string]Recipe
	modules *module.Catalog
}

// NewRegistry returns an empty recipe registry.
func NewRegistry() *Registry {
	return &Registry{recipes: make(map[string]Recipe), modules: module.NewCatalog()}
}

// Register adds r and catalogs the contracts of its modules. Names must be
// unique. A module type already in the catalog must be declared with the
// same contract; otherwise nothing is registered.
func (reg *Registry) Register(r Recipe) error {
	if r == nil || r.Name() == "" {
		return fmt.Errorf("recipe name is required")
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.recipes[r.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRecipe, r.Name())
	}

	added := make(map[string]module.Contract)
	for _, decl := range r.Blueprint().Modules {
		c := decl.Contract
		if err := c.Validate(); err != nil {
			return fmt.Errorf("recipe %s: module %s: %w", r.Name(), decl.Label, err)
		}
		existing, err := reg.modules.Get(c.TypeName)
		if err != nil {
			prev, ok := added[c.TypeName]
			if !ok {
				added[c.TypeName] = c
				continue
			}
			if !reflect.DeepEqual(prev, c) {
				return fmt.Errorf("recipe %s: %w: %s declared twice with different contracts",
					r.Name(), module.ErrDuplicateContract, c.TypeName)
			}
			continue
		}
		if !reflect.DeepEqual(existing, c) {
			return fmt.Errorf("recipe %s: %w: %s conflicts with a registered contract",
				r.Name(), module.ErrDuplicateContract, c.TypeName)
		}
	}
	for _, c := range added {
		if err := reg.modules.Register(c); err != nil {
			return err
		}
	}
	reg.recipes[r.Name()] = r
	return nil
}

// Modules returns the catalog of module contracts declared by registered
// recipes.
func (reg *Registry) Modules() *module.Catalog {
	return reg.modules
}

// Get returns the recipe registered under name.
func (reg *Registry) Get(name string) (Recipe, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecipe, name)
	}
	return r, nil
}

// Names returns registered recipe names, sorted.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.recipes))
	for name := range reg.recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recipes returns registered recipes ordered by name.
func (reg *Registry) Recipes() []Recipe {
	names := reg.Names()
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]Recipe, 0, len(names))
	for _, name := range names {
		out = append(out, reg.recipes[name])
	}
	return out
}
