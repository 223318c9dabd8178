// Package projection derives the rows a screen displays from a loaded
// collection and the active filters.
//
// Everything here is a pure function of its inputs: nothing is remembered
// between renders, so a projection can be recomputed on every request.
package projection

import (
	"sort"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// AllOption is the unconstrained value of a select filter.
const AllOption = "All"

// Predicate reports whether an item passes one filter dimension.
type Predicate[T any] func(T) bool

// Project returns, in order, the items that pass every predicate. Nil
// predicates are ignored. With no active predicates items is returned as is.
func Project[T any](items []T, preds ...Predicate[T]) []T {
	active := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return items
	}

	out := make([]T, 0, len(items))
next:
	for _, it := range items {
		for _, p := range active {
			if !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// Unconstrained reports whether a select value means "no filter".
func Unconstrained(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllOption)
}

// Equals matches items whose key equals value exactly. An unconstrained
// value yields a nil predicate.
func Equals[T any](key func(T) string, value string) Predicate[T] {
	if Unconstrained(value) {
		return nil
	}
	value = strings.TrimSpace(value)
	return func(it T) bool { return key(it) == value }
}

// Contains matches items where any of the keys contains q, ignoring case
// and accents. An empty q yields a nil predicate.
func Contains[T any](q string, keys ...func(T) string) Predicate[T] {
	q = text.Fold(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	return func(it T) bool {
		for _, k := range keys {
			if strings.Contains(text.Fold(k(it)), q) {
				return true
			}
		}
		return false
	}
}

// Has matches items with at least one assignment when on is true.
func Has[T any](count func(T) int, on bool) Predicate[T] {
	if !on {
		return nil
	}
	return func(it T) bool { return count(it) > 0 }
}

// Options returns AllOption followed by the distinct non-empty key values in
// first-seen order.
func Options[T any](items []T, key func(T) string) []string {
	out := []string{AllOption}
	seen := map[string]struct{}{}
	for _, it := range items {
		v := strings.TrimSpace(key(it))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SortStable returns a sorted copy of items. less must be a strict order.
func SortStable[T any](items []T, less func(a, b T) bool) []T {
	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
