// Package catalog - Catalog validation
// Ensures every price entry can be consumed by the solver.
package catalog

import (
	"math"

	"instance-allocator/core/determinism"
	"instance-allocator/core/types"
	"instance-allocator/internal/errors"
)

// ValidationRule checks a single catalog entry
type ValidationRule func(region, name string, price float64) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateKnownType,
		validatePositivePrice,
	}
}

// Validate checks a whole catalog and returns every problem found,
// ordered by region then type name.
func Validate(c types.Catalog, rules []ValidationRule) []error {
	var errs []error

	for _, region := range determinism.SortedKeys(c) {
		prices := c[region]
		for _, name := range determinism.SortedKeys(prices) {
			for _, rule := range rules {
				if err := rule(region, name, prices[name]); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	return errs
}

// validateKnownType rejects names outside the vocabulary
func validateKnownType(region, name string, _ float64) error {
	if !Known(name) {
		return errors.UnknownInstanceType(region, name)
	}
	return nil
}

// validatePositivePrice rejects zero, negative and non-finite prices
func validatePositivePrice(region, name string, price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return errors.InvalidPrice(region, name, price)
	}
	return nil
}
