// Package solver implements the greedy per-region allocation.
// Solvers are pure: they read normalized tiers and return a plan with
// no display string. Ranking and rendering belong to core/output.
package solver

import (
	"slices"

	"instance-allocator/core/types"
)

// MinCPUs fills at least cpus CPUs from the largest tier down.
//
// Each tier that fits inside the remaining CPUs takes as many whole units as
// fit. Afterwards, if the tier one step above the largest tier used costs less
// per hour than the whole greedy plan, a single unit of it replaces the plan.
// tiers must be ascending by CPU count.
func MinCPUs(region string, tiers []types.Tier, cpus int, hours float64) types.AllocationPlan {
	plan := types.AllocationPlan{
		Region:      region,
		Servers:     []types.Server{},
		Feasibility: types.Satisfied,
	}
	if cpus < 1 {
		return plan
	}

	remaining := cpus
	cost := 0.0
	selected := -1

	for i := len(tiers) - 1; i >= 0 && remaining > 0; i-- {
		tier := tiers[i]
		if tier.CPUs > remaining {
			continue
		}
		units := remaining / tier.CPUs
		remaining -= units * tier.CPUs
		cost += tier.HourlyPrice * float64(units)
		plan.Servers = append(plan.Servers, types.Server{Type: tier.Type, Units: units})
		if selected < 0 {
			selected = i
		}
	}
	slices.Reverse(plan.Servers)

	if selected >= 0 && selected < len(tiers)-1 && tiers[selected+1].HourlyPrice < cost {
		next := tiers[selected+1]
		plan.Servers = []types.Server{{Type: next.Type, Units: 1}}
		plan.Upgraded = true
		cost = next.HourlyPrice
		remaining = 0
	}

	plan.TotalCost = cost * hours
	plan.ProvisionedCPUs = ProvisionedCPUs(plan.Servers, tiers)

	switch {
	case len(plan.Servers) == 0:
		plan.Feasibility = types.Infeasible
	case remaining > 0:
		plan.Feasibility = types.PartiallySatisfied
	}
	return plan
}

// ProvisionedCPUs sums units times CPUs for servers drawn from tiers
func ProvisionedCPUs(servers []types.Server, tiers []types.Tier) int {
	total := 0
	for _, s := range servers {
		for _, t := range tiers {
			if t.Type == s.Type {
				total += t.CPUs * s.Units
				break
			}
		}
	}
	return total
}
