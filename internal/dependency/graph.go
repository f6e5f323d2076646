// Package dependency orders named targets so that each one is visited
// after the targets it depends on.
package dependency

import "golang.org/x/exp/slices"

// addSorted adds s to the sorted set, unless it is already there.
func addSorted(set []string, s string) []string {
	if i, found := slices.BinarySearch(set, s); !found {
		return slices.Insert(set, i, s)
	}
	return set
}

// A Graph maps targets to their dependencies. The zero value is an
// empty graph.
type Graph struct {
	targets []string
	deps    map[string][]string
}

// Len returns the number of targets added to the graph.
func (g *Graph) Len() int { return len(g.targets) }

// Add records that target depends on deps. Adding a target more
// than once merges its dependencies.
func (g *Graph) Add(target string, deps ...string) {
	if g.deps == nil {
		g.deps = make(map[string][]string)
	}
	g.targets = addSorted(g.targets, target)
	set := g.deps[target]
	for _, d := range deps {
		set = addSorted(set, d)
	}
	g.deps[target] = set
}

// Flatten calls visit once for every target and dependency in the
// graph, dependencies first. Targets are taken in sorted order, so
// the order is the same for equal graphs. Cycles are broken at the
// first vertex visited twice.
func (g *Graph) Flatten(visit func(string)) {
	seen := make(map[string]bool, len(g.deps))
	var walk func([]string)
	walk = func(names []string) {
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			walk(g.deps[name])
			visit(name)
		}
	}
	walk(g.targets)
}
