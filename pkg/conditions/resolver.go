package conditions

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	schemasassets "github.com/3leaps/gojobcfg/internal/assets/schemas"
	"github.com/3leaps/gojobcfg/internal/schemavalidate"
)

// ErrUnknownTag indicates a resolver has no entry for a tag.
var ErrUnknownTag = errors.New("unknown conditions tag")

// Constants are resolved record payloads keyed by record name.
type Constants map[string]string

// Resolver turns a Tag into resolved constants.
//
// Real resolution is performed by the execution host; implementations in
// this module exist for offline checks.
type Resolver interface {
	Resolve(ctx context.Context, tag Tag) (Constants, error)
}

// StaticResolver resolves tags from an in-memory catalog.
type StaticResolver struct {
	tags map[string]Constants
}

// NewStaticResolver returns a resolver over a copy of tags.
func NewStaticResolver(tags map[string]Constants) *StaticResolver {
	out := make(map[string]Constants, len(tags))
	for name, records := range tags {
		out[name] = maps.Clone(records)
	}
	return &StaticResolver{tags: out}
}

// Resolve returns the catalog records for tag with its overrides applied.
func (r *StaticResolver) Resolve(ctx context.Context, tag Tag) (Constants, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, ok := r.tags[tag.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, tag.Name())
	}
	out := maps.Clone(records)
	if out == nil {
		out = Constants{}
	}
	maps.Copy(out, tag.overrides)
	return out, nil
}

// Tags returns the catalog tag names in sorted order.
func (r *StaticResolver) Tags() []string {
	return slices.Sorted(maps.Keys(r.tags))
}

var catalogSchema = schemavalidate.New("conditions-catalog", schemasassets.ConditionsCatalogSchema)

type catalogFile struct {
	Tags map[string]map[string]string `yaml:"tags" json:"tags"`
}

// LoadCatalog reads a YAML conditions catalog:
//
//	tags:
//	  130X_mcRun3_2022_realistic_v5:
//	    JetTagComputerRecord: v5
func LoadCatalog(path string) (*StaticResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("conditions catalog not found: %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read conditions catalog: %w", err)
	}

	jsonData, err := schemavalidate.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("conditions catalog: %w", err)
	}
	if err := catalogSchema.ValidateJSON(jsonData); err != nil {
		return nil, fmt.Errorf("invalid conditions catalog: %w", err)
	}

	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML in conditions catalog: %w", err)
	}

	tags := make(map[string]Constants, len(doc.Tags))
	for name, records := range doc.Tags {
		if _, err := Build(name, nil); err != nil {
			return nil, err
		}
		tags[name] = Constants(records)
	}
	return NewStaticResolver(tags), nil
}

// Compile-time check that StaticResolver implements Resolver.
var _ Resolver = (*StaticResolver)(nil)
