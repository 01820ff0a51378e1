package recipe

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/3leaps/gojobcfg/pkg/conditions"
	"github.com/3leaps/gojobcfg/pkg/job"
	"github.com/3leaps/gojobcfg/pkg/param"
)

// Option configures Assemble.
type Option func(*assembleOptions)

type assembleOptions struct {
	logger   *zap.Logger
	resolver conditions.Resolver
}

// WithLogger sets the logger used for stage progress. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *assembleOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithResolver checks the built conditions tag against resolver before
// the job is assembled. Without it the tag is passed through unresolved.
func WithResolver(resolver conditions.Resolver) Option {
	return func(o *assembleOptions) {
		o.resolver = resolver
	}
}

// Result is the outcome of a successful Assemble.
type Result struct {
	Description *job.Description
	Params      *param.Set
}

// Assemble resolves raw against r's registry, builds its conditions tag
// and assembles the job description.
//
// Errors from each stage are returned unchanged so callers can classify
// them with the param, conditions, module and job helpers.
func Assemble(ctx context.Context, r Recipe, raw param.Raw, opts ...Option) (*Result, error) {
	o := assembleOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := o.logger.With(zap.String("recipe", r.Name()))

	set, err := param.Resolve(raw, r.Registry())
	if err != nil {
		log.Debug("Parameter resolution failed", zap.Error(err))
		return nil, err
	}
	log.Debug("Parameters resolved",
		zap.Int("count", set.Len()),
		zap.Int("explicit", len(raw)))

	tag, err := r.Conditions(set)
	if err != nil {
		log.Debug("Conditions tag rejected", zap.Error(err))
		return nil, err
	}
	if o.resolver != nil {
		records, err := o.resolver.Resolve(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("resolve conditions %s: %w", tag, err)
		}
		log.Debug("Conditions tag resolved",
			zap.String("tag", tag.Name()),
			zap.Int("records", len(records)))
	}

	builder, err := job.NewBuilder(r.Blueprint())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	desc, err := builder.Build(set, tag)
	if err != nil {
		log.Debug("Job assembly failed", zap.Error(err))
		return nil, err
	}

	log.Info("Job assembled",
		zap.String("process", desc.Process()),
		zap.String("conditions", tag.Name()),
		zap.Int("inputs", len(desc.Source().URIs)),
		zap.Int("modules", len(desc.Modules())))
	return &Result{Description: desc, Params: set}, nil
}
