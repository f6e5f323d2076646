// Package ordered provides ordered, deterministic traversal of maps.
package ordered

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Keys returns the keys of m in ascending order.
func Keys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Range calls fn for each entry of m in ascending key order.
func Range[K constraints.Ordered, V any](m map[K]V, fn func(K, V)) {
	for _, k := range Keys(m) {
		fn(k, m[k])
	}
}
