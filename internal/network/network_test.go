package network_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exmas-go/exmas/internal/network"
	"github.com/exmas-go/exmas/request"
)

func buildGraph() *network.Graph {
	g := network.New()
	g.AddEdge("A", "B", 10, 100)
	g.AddEdge("B", "C", 10, 100)
	g.AddEdge("A", "C", 30, 500)
	g.AddLocation("D") // isolated
	return g
}

func TestShortestPaths_PrefersCheaperMultiHop(t *testing.T) {
	g := buildGraph()
	res, err := network.ShortestPaths(g, "A")
	require.NoError(t, err)
	require.InDelta(t, 20, res.Dist["C"], 1e-9)
	require.InDelta(t, 200, res.Distance["C"], 1e-9)
}

func TestShortestPaths_UnknownSource(t *testing.T) {
	g := buildGraph()
	_, err := network.ShortestPaths(g, "Z")
	require.ErrorIs(t, err, network.ErrSourceNotFound)
}

func TestShortestPaths_IsolatedNodeUnreachableFromOthers(t *testing.T) {
	g := buildGraph()
	res, err := network.ShortestPaths(g, "A")
	require.NoError(t, err)
	_, ok := res.Dist["D"]
	require.False(t, ok)
}

func TestRoutingOracle_Segment(t *testing.T) {
	g := buildGraph()
	o := network.NewRoutingOracle(g)

	seg, err := o.Segment(context.Background(), "A", "C", 0)
	require.NoError(t, err)
	require.True(t, seg.Reachable)
	require.InDelta(t, 20, seg.TravelTime, 1e-9)
	require.InDelta(t, 200, seg.Distance, 1e-9)
	require.InDelta(t, -20, seg.Utility, 1e-9)
}

func TestRoutingOracle_SameOriginDestination(t *testing.T) {
	g := buildGraph()
	o := network.NewRoutingOracle(g)

	seg, err := o.Segment(context.Background(), "A", "A", 0)
	require.NoError(t, err)
	require.True(t, seg.Reachable)
	require.Zero(t, seg.TravelTime)
}

func TestRoutingOracle_Unreachable(t *testing.T) {
	g := buildGraph()
	o := network.NewRoutingOracle(g)

	seg, err := o.Segment(context.Background(), "D", "A", 0)
	require.NoError(t, err)
	require.False(t, seg.Reachable)
}

func TestRoutingOracle_UnknownLocation(t *testing.T) {
	g := buildGraph()
	o := network.NewRoutingOracle(g)

	_, err := o.Segment(context.Background(), request.Location("Z"), "A", 0)
	require.ErrorIs(t, err, network.ErrUnknownLocation)
}
