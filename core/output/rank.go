package output

import (
	"sort"

	"instance-allocator/core/types"
)

// Rank sorts plans ascending by numeric total cost in place. The sort is
// stable, so equal totals keep the order the regions were solved in.
func Rank(plans []types.AllocationPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].TotalCost < plans[j].TotalCost
	})
}

// Render fills DisplayCost on every plan
func Render(plans []types.AllocationPlan, roundCents bool) {
	for i := range plans {
		plans[i].DisplayCost = FormatCost(plans[i].TotalCost, roundCents)
	}
}
