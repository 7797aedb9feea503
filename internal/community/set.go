// Package community reads discovered-community files and provides the node set type
// shared by the ground-truth index and the metric engine.
package community

import "sort"

// Set is an unordered set of node identifiers.
type Set map[int]struct{}

// NewSet returns a set holding the given nodes. Duplicates collapse.
func NewSet(nodes ...int) Set {
	s := make(Set, len(nodes))
	for _, n := range nodes {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts a node.
func (s Set) Add(n int) {
	s[n] = struct{}{}
}

// Has reports whether n is a member.
func (s Set) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// Intersect returns the members present in both sets.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for n := range small {
		if large.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for n := range s {
		if !other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// SymmetricDifference returns the members present in exactly one of the sets.
func (s Set) SymmetricDifference(other Set) Set {
	out := s.Difference(other)
	for n := range other {
		if !s.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Union returns the members present in either set.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Sorted returns the members in ascending order.
// Used for stable JSON output and reports.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
