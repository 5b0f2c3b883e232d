package generator_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exmas-go/exmas/cmd/exmasctl/internal/generator"
	"github.com/exmas-go/exmas/request"
)

func TestGrid_ConnectsNeighbors(t *testing.T) {
	g, locs := generator.Grid(3, 2, 10, 100)
	require.Len(t, locs, 6)
	require.True(t, g.HasLocation("0,0"))
	require.True(t, g.HasLocation("2,1"))

	neighbors := g.Neighbors("0,0")
	require.Len(t, neighbors, 2) // right (1,0) and down (0,1)
}

func TestRequests_ProducesValidRequests(t *testing.T) {
	_, locs := generator.Grid(4, 4, 60, 500)
	reqs, err := generator.Requests(generator.Params{
		Count:              10,
		Locations:          locs,
		LinkTravelTime:     60,
		LinkDistance:       500,
		TimeSpread:         600,
		WindowSlack:        120,
		MaxTravelTimeSlack: 300,
		BestAlternative:    -1e6,
		Rand:               rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)
	require.Len(t, reqs, 10)

	seen := make(map[string]struct{}, 10)
	for i, r := range reqs {
		require.Equal(t, i, r.Index())
		require.NotEqual(t, r.Origin(), r.Destination())
		require.GreaterOrEqual(t, r.DirectTravelTime(), 0.0)
		require.LessOrEqual(t, r.DirectTravelTime(), r.MaxTravelTime())
		_, dup := seen[r.PaxID()]
		require.False(t, dup)
		seen[r.PaxID()] = struct{}{}
	}
}

func TestRequests_RejectsTooFewLocations(t *testing.T) {
	_, err := generator.Requests(generator.Params{Count: 1, Locations: []request.Location{}})
	require.Error(t, err)
}
