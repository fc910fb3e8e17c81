// Package api - Request and response types
package api

import (
	"instance-allocator/core/types"
)

// AllocateRequest is the body of POST /v1/allocate
type AllocateRequest struct {
	// Catalog is an inline catalog; when absent the configured source is used
	Catalog types.Catalog `json:"catalog,omitempty"`

	// Hours is the rental duration
	Hours float64 `json:"hours"`

	// CPUs is the minimum aggregate CPU count
	CPUs *int `json:"cpus,omitempty"`

	// Price is the maximum total spend
	Price *float64 `json:"price,omitempty"`
}

// Request converts the body into an engine request
func (r AllocateRequest) Request() types.Request {
	return types.Request{Hours: r.Hours, CPUs: r.CPUs, Price: r.Price}
}

// cacheKey is what identical requests share; the catalog is always resolved
type cacheKey struct {
	Catalog types.Catalog `json:"catalog"`
	Request types.Request `json:"request"`
}

// CatalogResponse is the body of GET /v1/catalog
type CatalogResponse struct {
	Source  string                  `json:"source"`
	Regions map[string][]types.Tier `json:"regions"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes an error
type ErrorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}
