// Package engine provides the allocation entry point.
// CLI and HTTP are thin wrappers around this engine.
package engine

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"instance-allocator/core/catalog"
	"instance-allocator/core/determinism"
	"instance-allocator/core/output"
	"instance-allocator/core/solver"
	"instance-allocator/core/types"
	"instance-allocator/internal/errors"
	"instance-allocator/internal/logging"
)

const (
	// ReasonNoFit is reported for price-ceiling regions where no unit fits the hourly budget
	ReasonNoFit = "no instance type fits the hourly budget"

	// ReasonOverBudget is reported for combined-mode regions whose CPU plan costs too much
	ReasonOverBudget = "exceeds budget"
)

// Config configures the allocation engine
type Config struct {
	// Workers bounds how many regions are solved in parallel
	Workers int

	// RoundCents renders costs to two decimals
	RoundCents bool
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{Workers: 4}
}

// Engine is the primary API for allocation.
// It holds no state between calls.
type Engine struct {
	config Config
	logger *zap.Logger
}

// New creates an allocation engine
func New(config Config) *Engine {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Engine{
		config: config,
		logger: logging.Named("engine"),
	}
}

// Allocate runs a request against a catalog with the default engine
func Allocate(ctx context.Context, c types.Catalog, req types.Request) (*types.Result, error) {
	return New(DefaultConfig()).Allocate(ctx, c, req)
}

// Allocate validates the request, solves every region, filters, ranks and
// renders. The catalog is only read.
func (e *Engine) Allocate(ctx context.Context, c types.Catalog, req types.Request) (*types.Result, error) {
	start := time.Now()
	mode := req.Mode()

	result, err := e.allocate(ctx, c, req, mode)
	if err != nil {
		recordResult(mode.String(), resultError, time.Since(start).Seconds())
		e.logger.Debug("allocation failed",
			zap.String("mode", mode.String()),
			zap.Error(err))
		return nil, err
	}

	recordResult(mode.String(), resultSuccess, time.Since(start).Seconds())
	for _, p := range result.Plans {
		plansTotal.WithLabelValues(mode.String(), p.Feasibility.String()).Inc()
	}
	excludedRegionsTotal.WithLabelValues(mode.String()).Add(float64(len(result.Excluded)))

	e.logger.Debug("allocation complete",
		zap.String("mode", mode.String()),
		zap.Int("regions", len(c)),
		zap.Int("plans", len(result.Plans)),
		zap.Int("excluded", len(result.Excluded)),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (e *Engine) allocate(ctx context.Context, c types.Catalog, req types.Request, mode types.Mode) (*types.Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	regions := determinism.SortedKeys(c)
	tiers := make([][]types.Tier, len(regions))
	for i, region := range regions {
		t, err := catalog.Normalize(region, c[region])
		if err != nil {
			return nil, err
		}
		tiers[i] = t
	}

	plans, err := e.solve(ctx, regions, tiers, req, mode)
	if err != nil {
		return nil, err
	}

	result := &types.Result{
		Mode:  mode,
		Plans: make([]types.AllocationPlan, 0, len(plans)),
	}
	for _, plan := range plans {
		if reason, drop := excluded(plan, req, mode); drop {
			result.Excluded = append(result.Excluded, types.Exclusion{Region: plan.Region, Reason: reason})
			continue
		}
		result.Plans = append(result.Plans, plan)
	}

	output.Rank(result.Plans)
	output.Render(result.Plans, e.config.RoundCents)
	return result, nil
}

// solve runs the mode's solver per region. Plans land at their region's
// index, so the order does not depend on scheduling.
func (e *Engine) solve(ctx context.Context, regions []string, tiers [][]types.Tier, req types.Request, mode types.Mode) ([]types.AllocationPlan, error) {
	plans := make([]types.AllocationPlan, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i := range regions {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			switch mode {
			case types.ModeMaxPrice:
				plans[i] = solver.MaxPrice(regions[i], tiers[i], *req.Price, req.Hours)
			default:
				plans[i] = solver.MinCPUs(regions[i], tiers[i], *req.CPUs, req.Hours)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

// excluded decides whether a solved plan is dropped from the result
func excluded(plan types.AllocationPlan, req types.Request, mode types.Mode) (string, bool) {
	switch mode {
	case types.ModeMaxPrice:
		if len(plan.Servers) == 0 {
			return ReasonNoFit, true
		}
	case types.ModeCombined:
		if !(plan.TotalCost < *req.Price) {
			return ReasonOverBudget, true
		}
	}
	return "", false
}

// Validate checks the duration and constraint of a request
func Validate(req types.Request) error {
	if !req.ValidHours() {
		return errors.InvalidDuration(req.Hours)
	}
	if !req.HasConstraint() {
		return errors.InvalidConstraint("at least one of cpus or price is required")
	}
	if req.Price != nil {
		p := *req.Price
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return errors.InvalidConstraint("price must be a positive number").
				WithContext("price", p)
		}
	}
	return nil
}
