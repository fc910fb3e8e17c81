// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// InstanceType is a size name from the closed instance vocabulary
type InstanceType string

const (
	Large    InstanceType = "large"
	XLarge   InstanceType = "xlarge"
	XLarge2  InstanceType = "2xlarge"
	XLarge4  InstanceType = "4xlarge"
	XLarge8  InstanceType = "8xlarge"
	XLarge10 InstanceType = "10xlarge"
)

// String returns the string representation of the instance type
func (t InstanceType) String() string {
	return string(t)
}

// RegionPrices maps instance type names to hourly prices for one region.
// Keys are raw strings so that unknown names survive until validation.
type RegionPrices map[string]float64

// Catalog maps region names to the instance prices offered there.
// Owned by the caller and never mutated by the core.
type Catalog map[string]RegionPrices

// Regions returns the region names in lexical order
func (c Catalog) Regions() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tier is one record of a normalized region catalog
type Tier struct {
	// Type is the instance type name
	Type InstanceType `json:"type"`

	// CPUs is the fixed CPU count of the type
	CPUs int `json:"cpus"`

	// HourlyPrice is the region's price per hour for one unit
	HourlyPrice float64 `json:"hourly_price"`
}

// Server is a (type, unit count) pair in an allocation plan
type Server struct {
	Type  InstanceType
	Units int
}

// MarshalJSON encodes the server as a two-element array, e.g. ["8xlarge",1]
func (s Server) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{s.Type, s.Units})
}

// UnmarshalJSON decodes the two-element array form
func (s *Server) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("server entry must have 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &s.Type); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &s.Units)
}
