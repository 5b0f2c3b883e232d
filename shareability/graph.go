// Package shareability implements the directed multigraph of spec.md §4.4:
// nodes are request indices, edges are accepted degree-2 rides. Per spec.md
// §9's explicit design note this is represented as parallel integer arrays
// (sourceReq, targetReq, rideIdx, kind) with a per-source sorted-neighbor
// index, deliberately diverging from the teacher's heap-linked core.Graph
// (see DESIGN.md).
package shareability

import (
	"sort"

	"github.com/exmas-go/exmas/ride"
)

// Edge is one directed edge of the graph: a source request's outgoing pair
// ride to a target request.
type Edge struct {
	Source    int
	Target    int
	RideIndex int
	Kind      ride.Kind
}

// Graph is the read-only-after-construction shareability multigraph. Safe to
// share across goroutines once Build returns.
type Graph struct {
	// out[source] holds every edge leaving source, in the order rides were
	// supplied to Build.
	out map[int][]Edge
	// sortedNeighbors[source] is the ascending, de-duplicated array of
	// targets reachable from source — the precomputation spec.md §4.4
	// requires for deterministic commonNeighborsSorted iteration.
	sortedNeighbors map[int][]int
}

// Build constructs the graph from the complete set of accepted degree-2
// rides. Each ride contributes one edge requests[0] -> requests[1].
func Build(pairs []ride.Ride) *Graph {
	g := &Graph{
		out:             make(map[int][]Edge),
		sortedNeighbors: make(map[int][]int),
	}
	seen := make(map[int]map[int]struct{})

	for _, r := range pairs {
		reqs := r.Requests()
		src, dst := reqs[0].Index(), reqs[1].Index()
		g.out[src] = append(g.out[src], Edge{Source: src, Target: dst, RideIndex: r.Index(), Kind: r.Kind()})
		if seen[src] == nil {
			seen[src] = make(map[int]struct{})
		}
		seen[src][dst] = struct{}{}
	}

	for src, targets := range seen {
		arr := make([]int, 0, len(targets))
		for t := range targets {
			arr = append(arr, t)
		}
		sort.Ints(arr)
		g.sortedNeighbors[src] = arr
	}

	return g
}

// CommonNeighborsSorted returns the ascending array of request indices that
// are outgoing neighbors of every request in requests. Empty if requests is
// empty or any member has no outgoing neighbors.
func (g *Graph) CommonNeighborsSorted(requests []int) []int {
	if len(requests) == 0 {
		return nil
	}

	result := g.sortedNeighbors[requests[0]]
	for _, r := range requests[1:] {
		if len(result) == 0 {
			return nil
		}
		result = intersectSorted(result, g.sortedNeighbors[r])
	}
	return result
}

// intersectSorted intersects two ascending, distinct integer slices,
// early-exiting once either is exhausted.
func intersectSorted(a, b []int) []int {
	out := make([]int, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Edges returns every edge source -> target (each carrying its ride index
// and kind), in insertion order. Nil if no such edge exists.
func (g *Graph) Edges(source, target int) []Edge {
	var matches []Edge
	for _, e := range g.out[source] {
		if e.Target == target {
			matches = append(matches, e)
		}
	}
	return matches
}

// Representative returns the deterministic representative edge for
// (source, target) per spec.md §4.5 step 2b: smallest rideIndex, ties broken
// FIFO before LIFO. Returns false if no edge exists.
func (g *Graph) Representative(source, target int) (Edge, bool) {
	edges := g.Edges(source, target)
	if len(edges) == 0 {
		return Edge{}, false
	}
	best := edges[0]
	for _, e := range edges[1:] {
		if e.RideIndex < best.RideIndex || (e.RideIndex == best.RideIndex && e.Kind == ride.FIFO && best.Kind != ride.FIFO) {
			best = e
		}
	}
	return best, true
}
