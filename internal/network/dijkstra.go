package network

import (
	"container/heap"
	"errors"

	"github.com/exmas-go/exmas/request"
)

// ErrSourceNotFound indicates the Dijkstra source location is not in the graph.
var ErrSourceNotFound = errors.New("network: source location not found")

// Result holds the outcome of a single-source shortest-travel-time search.
// Dist and Distance are keyed by every location reached from the source;
// an absent key means unreachable.
type Result struct {
	Dist     map[request.Location]float64 // cumulative travel time
	Distance map[request.Location]float64 // cumulative distance along the shortest-travel-time path
}

// ShortestPaths runs Dijkstra's algorithm from source, minimizing cumulative
// TravelTime, and tracks the cumulative Distance along whichever path
// realizes that minimum. Adapted from lvlath's dijkstra.Dijkstra: same
// lazy-decrease-key min-heap, generalized from a single edge weight to the
// (travelTime, distance) pair this package's Leg carries.
//
// Complexity: O((V+E) log V), same as the single-weight original.
func ShortestPaths(g *Graph, source request.Location) (Result, error) {
	if !g.HasLocation(source) {
		return Result{}, ErrSourceNotFound
	}

	dist := map[request.Location]float64{source: 0}
	distance := map[request.Location]float64{source: 0}
	visited := make(map[request.Location]bool)

	pq := make(nodePQ, 0, 16)
	heap.Init(&pq)
	heap.Push(&pq, &nodeItem{loc: source, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*nodeItem)
		u := item.loc
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, leg := range g.Neighbors(u) {
			if leg.TravelTime < 0 {
				continue // malformed edge; routing networks here never have negative legs
			}
			newDist := dist[u] + leg.TravelTime
			if cur, ok := dist[leg.To]; ok && newDist >= cur {
				continue
			}
			dist[leg.To] = newDist
			distance[leg.To] = distance[u] + leg.Distance
			heap.Push(&pq, &nodeItem{loc: leg.To, dist: newDist})
		}
	}

	return Result{Dist: dist, Distance: distance}, nil
}

type nodeItem struct {
	loc  request.Location
	dist float64
}

type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
