// Package types - Allocation plan and request types
package types

import "math"

// Mode is the constraint mode derived from a request
type Mode string

const (
	// ModeMinCPUs satisfies a minimum aggregate CPU count
	ModeMinCPUs Mode = "min_cpus"

	// ModeMaxPrice spends up to a maximum aggregate price
	ModeMaxPrice Mode = "max_price"

	// ModeCombined satisfies the CPU floor and keeps only plans under the price
	ModeCombined Mode = "combined"
)

// String returns the string representation
func (m Mode) String() string {
	return string(m)
}

// Feasibility reports whether a plan meets its constraint
type Feasibility string

const (
	// Satisfied means the constraint is fully met
	Satisfied Feasibility = "satisfied"

	// PartiallySatisfied means servers were chosen but the CPU floor was not reached
	PartiallySatisfied Feasibility = "partially_satisfied"

	// Infeasible means no instance type could contribute
	Infeasible Feasibility = "infeasible"
)

// String returns the string representation
func (f Feasibility) String() string {
	return string(f)
}

// Request is the constraint for one allocation call.
// At least one of CPUs or Price must be set.
type Request struct {
	// Hours is the rental duration, must be > 0
	Hours float64 `json:"hours"`

	// CPUs is the minimum aggregate CPU count
	CPUs *int `json:"cpus,omitempty"`

	// Price is the maximum total spend over Hours
	Price *float64 `json:"price,omitempty"`
}

// Mode derives the constraint mode from the fields that are set
func (r Request) Mode() Mode {
	switch {
	case r.CPUs != nil && r.Price != nil:
		return ModeCombined
	case r.CPUs != nil:
		return ModeMinCPUs
	default:
		return ModeMaxPrice
	}
}

// HasConstraint reports whether CPUs or Price is set
func (r Request) HasConstraint() bool {
	return r.CPUs != nil || r.Price != nil
}

// ValidHours reports whether Hours is a positive finite number
func (r Request) ValidHours() bool {
	return r.Hours > 0 && !math.IsInf(r.Hours, 0) && !math.IsNaN(r.Hours)
}

// AllocationPlan is the solver output for one region
type AllocationPlan struct {
	// Region is the catalog region name
	Region string `json:"region"`

	// Servers are the chosen instances in ascending CPU order
	Servers []Server `json:"servers"`

	// TotalCost is the numeric cost over the whole duration
	TotalCost float64 `json:"-"`

	// DisplayCost is the rendered cost, e.g. "$1.3"
	DisplayCost string `json:"total_cost"`

	// Feasibility is the constraint status of the plan
	Feasibility Feasibility `json:"feasibility"`

	// ProvisionedCPUs is the sum of units times CPUs
	ProvisionedCPUs int `json:"provisioned_cpus"`

	// Upgraded is set when the single-tier upgrade replaced the greedy plan
	Upgraded bool `json:"upgraded,omitempty"`
}

// Exclusion records a region dropped from the result
type Exclusion struct {
	Region string `json:"region"`
	Reason string `json:"reason"`
}

// Result is the full output of an allocation call
type Result struct {
	// Mode is the constraint mode that was applied
	Mode Mode `json:"mode"`

	// Plans are ranked ascending by total cost
	Plans []AllocationPlan `json:"plans"`

	// Excluded lists regions that were dropped and why
	Excluded []Exclusion `json:"excluded,omitempty"`
}
