// Package catalog provides catalog sources for the allocation engine.
// A source abstracts where instance prices come from (files, cloud pricing
// APIs) and always yields the same region -> type -> price shape.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"instance-allocator/core/types"
)

// Source is the unified catalog source interface
type Source interface {
	// Name identifies the source, e.g. "file" or "aws"
	Name() string

	// Load returns the full catalog
	Load(ctx context.Context) (types.Catalog, error)
}

// Registry manages catalog sources by name
type Registry struct {
	sources map[string]Source
	mu      sync.RWMutex
}

// NewRegistry creates a new registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register registers a source under its name
func (r *Registry) Register(source Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.Name()] = source
}

// Get returns a source by name
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[name]
	return source, ok
}

// MustGet returns a source by name or an error naming the known sources
func (r *Registry) MustGet(name string) (Source, error) {
	if source, ok := r.Get(name); ok {
		return source, nil
	}
	return nil, fmt.Errorf("unknown catalog source %q (known: %v)", name, r.List())
}

// List returns all registered source names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	loadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "allocator",
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Catalog loads by source and result.",
		},
		[]string{"source", "result"},
	)

	loadSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "allocator",
			Subsystem: "catalog",
			Name:      "load_duration_seconds",
			Help:      "Time spent loading a catalog by source.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

// MetricsSource wraps a source with load metrics
type MetricsSource struct {
	inner Source
}

// NewMetricsSource creates a metrics wrapper
func NewMetricsSource(inner Source) *MetricsSource {
	return &MetricsSource{inner: inner}
}

// Name returns the wrapped source name
func (s *MetricsSource) Name() string {
	return s.inner.Name()
}

// Load loads from the wrapped source and records the outcome
func (s *MetricsSource) Load(ctx context.Context) (types.Catalog, error) {
	start := time.Now()
	c, err := s.inner.Load(ctx)

	loadSeconds.WithLabelValues(s.inner.Name()).Observe(time.Since(start).Seconds())
	result := "success"
	if err != nil {
		result = "error"
	}
	loadsTotal.WithLabelValues(s.inner.Name(), result).Inc()

	return c, err
}
