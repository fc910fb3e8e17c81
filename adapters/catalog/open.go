package catalog

import (
	"context"

	awspricing "instance-allocator/clouds/aws/pricing"
	"instance-allocator/internal/config"
	"instance-allocator/internal/errors"
)

// Source names accepted in configuration
const (
	SourceFile = "file"
	SourceAWS  = "aws"
)

// Open builds the source named by the configuration, wrapped with load
// metrics and, when a TTL is set, a catalog cache.
func Open(ctx context.Context, cfg *config.Config) (Source, error) {
	registry := NewRegistry()
	registry.Register(NewFileSource(cfg.Catalog.Path))

	if cfg.Catalog.Source == SourceAWS {
		aws, err := awspricing.NewFromConfig(ctx, cfg.AWS.PricingRegion, cfg.AWS.Profile, AWSConfig(cfg))
		if err != nil {
			return nil, err
		}
		registry.Register(aws)
	}

	source, err := registry.MustGet(cfg.Catalog.Source)
	if err != nil {
		return nil, errors.Config("catalog source", err)
	}

	source = NewMetricsSource(source)
	if ttl := cfg.Catalog.CacheTTL.Duration; ttl > 0 {
		source = NewCachedSource(source, ttl)
	}
	return source, nil
}

// AWSConfig maps the aws section of the configuration onto the pricing source
func AWSConfig(cfg *config.Config) awspricing.Config {
	return awspricing.Config{
		Regions:       cfg.AWS.Regions,
		Family:        cfg.AWS.Family,
		RetryAttempts: cfg.AWS.RetryAttempts,
		Concurrency:   cfg.AWS.Concurrency,
	}
}
