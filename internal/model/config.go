// Package model defines the data structures shared by the jumble coordinator.
package model

import (
	"sort"
	"strings"
)

// Path represents a file system path.
type Path string

// MethodSet is an unordered set of method names.
type MethodSet map[string]struct{}

// NewMethodSet builds a set from the given names, ignoring blanks and duplicates.
func NewMethodSet(names ...string) MethodSet {
	set := MethodSet{}
	for _, name := range names {
		set.Add(name)
	}

	return set
}

// Add inserts a method name. Blank names are ignored.
func (s MethodSet) Add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	s[name] = struct{}{}
}

// Contains reports whether name is in the set.
func (s MethodSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s MethodSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// RunConfiguration holds the options of a single coordinator run. It is set
// once before the run starts and never modified afterwards.
type RunConfiguration struct {
	InlineConstants bool // mutate inline constants (-k)
	ReturnValues    bool // mutate return values (-r)
	Increments      bool // mutate increments (-i)
	OrderByRuntime  bool
	Verbose         bool
	LoadCache       bool
	SaveCache       bool
	UseCache        bool
	ExcludedMethods MethodSet
}

// DefaultRunConfiguration enables every mutation category and the cache.
func DefaultRunConfiguration() RunConfiguration {
	return RunConfiguration{
		InlineConstants: true,
		ReturnValues:    true,
		Increments:      true,
		OrderByRuntime:  true,
		LoadCache:       true,
		SaveCache:       true,
		UseCache:        true,
		ExcludedMethods: MethodSet{},
	}
}
