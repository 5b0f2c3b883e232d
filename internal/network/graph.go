// Package network is a directed, weighted graph over request.Location nodes,
// adapted from lvlath's core.Graph (github.com/katalvlaran/lvlath/core) for
// the one thing the ExMAS engine actually needs from a routing backend: a
// shortest-path-by-travel-time lookup with an associated distance, used by
// the non-production RoutingOracle (oracle.go) that
// oracle.CachedRoutingOracle wraps for caching.
//
// Unlike lvlath's core.Graph, edges here carry two weights (travel time and
// distance) instead of one, there is no undirected/multigraph/loop
// configuration surface (the routing network the engine queries is always a
// directed, simple graph of links), and AddEdge and AddLocation are the only
// mutators — the graph is built once up front and then only read
// concurrently.
package network

import (
	"errors"
	"sync"

	"github.com/exmas-go/exmas/request"
)

// ErrUnknownLocation indicates a query referenced a Location never added via
// AddEdge/AddLocation.
var ErrUnknownLocation = errors.New("network: unknown location")

// Leg is one directed edge of the network: traversing it from From to To
// costs TravelTime seconds and covers Distance meters.
type Leg struct {
	To         request.Location
	TravelTime float64
	Distance   float64
}

// Graph is a directed, weighted graph of request.Location nodes. Safe for
// concurrent reads once built; AddEdge/AddLocation take a write lock.
type Graph struct {
	mu   sync.RWMutex
	adj  map[request.Location][]Leg
	node map[request.Location]struct{}
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		adj:  make(map[request.Location][]Leg),
		node: make(map[request.Location]struct{}),
	}
}

// AddLocation ensures loc is present in the graph even if it has no outgoing
// edges yet (so HasLocation and Dijkstra's source-existence check see it).
func (g *Graph) AddLocation(loc request.Location) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.node[loc] = struct{}{}
	if _, ok := g.adj[loc]; !ok {
		g.adj[loc] = nil
	}
}

// AddEdge inserts a directed edge from -> to with the given travel time and
// distance. Idempotent overwrite semantics: calling it twice for the same
// (from, to) replaces the prior leg rather than creating a parallel edge —
// the routing network has no use for multi-edges between the same pair.
func (g *Graph) AddEdge(from, to request.Location, travelTime, distance float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.node[from] = struct{}{}
	g.node[to] = struct{}{}

	legs := g.adj[from]
	for i := range legs {
		if legs[i].To == to {
			legs[i].TravelTime = travelTime
			legs[i].Distance = distance
			return
		}
	}
	g.adj[from] = append(legs, Leg{To: to, TravelTime: travelTime, Distance: distance})
}

// HasLocation reports whether loc has been registered (via AddEdge or AddLocation).
func (g *Graph) HasLocation(loc request.Location) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.node[loc]
	return ok
}

// Neighbors returns the outgoing legs of loc. The returned slice is owned by
// the graph; callers must not mutate it.
func (g *Graph) Neighbors(loc request.Location) []Leg {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj[loc]
}
