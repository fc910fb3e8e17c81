package catalog

import (
	"sort"

	"instance-allocator/core/determinism"
	"instance-allocator/core/types"
)

// Normalize turns one region's price map into tiers ascending by CPU count.
// Names are visited in lexical order so the first reported error is stable.
func Normalize(region string, prices types.RegionPrices) ([]types.Tier, error) {
	tiers := make([]types.Tier, 0, len(prices))

	for _, name := range determinism.SortedKeys(prices) {
		price := prices[name]
		if err := checkEntry(region, name, price); err != nil {
			return nil, err
		}
		cpus, _ := CPUs(name)
		tiers = append(tiers, types.Tier{
			Type:        types.InstanceType(name),
			CPUs:        cpus,
			HourlyPrice: price,
		})
	}

	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].CPUs < tiers[j].CPUs
	})
	return tiers, nil
}

// NormalizeAll normalizes every region of a catalog
func NormalizeAll(c types.Catalog) (map[string][]types.Tier, error) {
	out := make(map[string][]types.Tier, len(c))
	for _, region := range determinism.SortedKeys(c) {
		tiers, err := Normalize(region, c[region])
		if err != nil {
			return nil, err
		}
		out[region] = tiers
	}
	return out, nil
}

// checkEntry runs the rules that make an entry unusable for the solver
func checkEntry(region, name string, price float64) error {
	for _, rule := range DefaultValidationRules() {
		if err := rule(region, name, price); err != nil {
			return err
		}
	}
	return nil
}
