package solver

import (
	"math"
	"slices"

	"instance-allocator/core/types"
)

// MaxUnits caps the unit count of one server entry. A budget quotient above
// it is clamped before the int conversion, which would otherwise overflow.
const MaxUnits = math.MaxInt32

// MaxPrice spends up to price over hours, taking as many units of each tier as
// the remaining hourly budget allows, from the largest tier down. The plan is
// Infeasible when not even one unit fits; callers drop such regions.
func MaxPrice(region string, tiers []types.Tier, price, hours float64) types.AllocationPlan {
	plan := types.AllocationPlan{
		Region:      region,
		Servers:     []types.Server{},
		Feasibility: types.Satisfied,
	}

	budget := price / hours
	cost := 0.0

	for i := len(tiers) - 1; i >= 0 && budget > 0; i-- {
		tier := tiers[i]
		if tier.HourlyPrice/budget > 1 {
			continue
		}
		units := int(min(math.Trunc(budget/tier.HourlyPrice), MaxUnits))
		// the ratio test can pass while the quotient rounds just below one
		if units < 1 {
			continue
		}
		spent := tier.HourlyPrice * float64(units)
		budget -= spent
		cost += spent
		plan.Servers = append(plan.Servers, types.Server{Type: tier.Type, Units: units})
	}
	slices.Reverse(plan.Servers)

	plan.TotalCost = cost * hours
	plan.ProvisionedCPUs = ProvisionedCPUs(plan.Servers, tiers)
	if len(plan.Servers) == 0 {
		plan.Feasibility = types.Infeasible
	}
	return plan
}
