// Package catalog - Instance type vocabulary and catalog normalization
// The CPU table is the single source of truth for instance sizes.
package catalog

import (
	"instance-allocator/core/types"
)

// Entry is a vocabulary entry for an instance type
type Entry struct {
	Type types.InstanceType
	CPUs int
}

// vocabulary is ordered ascending by CPU count and never mutated
var vocabulary = []Entry{
	{Type: types.Large, CPUs: 1},
	{Type: types.XLarge, CPUs: 2},
	{Type: types.XLarge2, CPUs: 4},
	{Type: types.XLarge4, CPUs: 8},
	{Type: types.XLarge8, CPUs: 16},
	{Type: types.XLarge10, CPUs: 32},
}

var cpusByName = func() map[string]int {
	m := make(map[string]int, len(vocabulary))
	for _, e := range vocabulary {
		m[string(e.Type)] = e.CPUs
	}
	return m
}()

// CPUs returns the CPU count of a type name
func CPUs(name string) (int, bool) {
	cpus, ok := cpusByName[name]
	return cpus, ok
}

// Known reports whether name is in the vocabulary
func Known(name string) bool {
	_, ok := cpusByName[name]
	return ok
}

// Vocabulary returns a copy of the vocabulary, ascending by CPU count
func Vocabulary() []Entry {
	out := make([]Entry, len(vocabulary))
	copy(out, vocabulary)
	return out
}
