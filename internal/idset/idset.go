// Package idset holds small generic helpers for sets of integer ids.
package idset

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Set is an unordered set of ids
type Set[T constraints.Integer] map[T]struct{}

// Of builds a set from ids
func Of[T constraints.Integer](ids ...T) Set[T] {
	s := make(Set[T], len(ids))
	s.Add(ids...)
	return s
}

// Add inserts ids into the set
func (s Set[T]) Add(ids ...T) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set
func (s Set[T]) Has(id T) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order
func (s Set[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	Sort(out)
	return out
}

// Without returns the members of ordered that are not in exclude, keeping
// the order of ordered.
func Without[T constraints.Integer](ordered []T, exclude Set[T]) []T {
	var out []T
	for _, id := range ordered {
		if !exclude.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Unique drops repeated ids, keeping the first occurrence
func Unique[T constraints.Integer](ids []T) []T {
	seen := make(Set[T], len(ids))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if seen.Has(id) {
			continue
		}
		seen.Add(id)
		out = append(out, id)
	}
	return out
}

// NonZero drops zero and negative ids
func NonZero[T constraints.Integer](ids []T) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}

// Sort orders ids ascending in place
func Sort[T constraints.Integer](ids []T) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
