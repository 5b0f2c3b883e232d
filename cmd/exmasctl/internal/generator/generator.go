// Package generator builds the synthetic grid network and request set
// exmasctl runs the engine against.
package generator

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/exmas-go/exmas/internal/network"
	"github.com/exmas-go/exmas/request"
)

// Grid builds a width*height grid of locations named "x,y", connected to
// their 4-neighbors in both directions with the given per-link cost. It is a
// deliberately simple stand-in for a real street network: enough structure
// for Dijkstra to find genuinely different shortest paths, nothing more.
func Grid(width, height int, linkTravelTime, linkDistance float64) (*network.Graph, []request.Location) {
	g := network.New()
	locs := make([]request.Location, 0, width*height)

	loc := func(x, y int) request.Location {
		return request.Location(fmt.Sprintf("%d,%d", x, y))
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			locs = append(locs, loc(x, y))
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			here := loc(x, y)
			if x+1 < width {
				right := loc(x+1, y)
				g.AddEdge(here, right, linkTravelTime, linkDistance)
				g.AddEdge(right, here, linkTravelTime, linkDistance)
			}
			if y+1 < height {
				down := loc(x, y+1)
				g.AddEdge(here, down, linkTravelTime, linkDistance)
				g.AddEdge(down, here, linkTravelTime, linkDistance)
			}
		}
	}
	return g, locs
}

// Params controls synthetic request generation.
type Params struct {
	Count             int
	Locations         []request.Location
	LinkTravelTime    float64
	LinkDistance      float64
	TimeSpread        float64 // requests uniformly spread over [0, TimeSpread]
	WindowSlack       float64 // earliest/latest = requestTime -/+ WindowSlack
	MaxTravelTimeSlack float64 // maxTravelTime = directTravelTime + slack
	BestAlternative   float64 // bestAlternativeScore, a flat utility floor
	Rand              *rand.Rand
}

// Requests produces p.Count synthetic requests over a Manhattan-distance
// estimate between random distinct locations in p.Locations, with PaxIDs
// assigned via google/uuid so downstream CSV output carries stable,
// collision-free passenger identities.
func Requests(p Params) ([]request.Request, error) {
	if len(p.Locations) < 2 {
		return nil, fmt.Errorf("generator: need at least 2 locations, got %d", len(p.Locations))
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	out := make([]request.Request, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		origin := p.Locations[rng.Intn(len(p.Locations))]
		destination := origin
		for destination == origin {
			destination = p.Locations[rng.Intn(len(p.Locations))]
		}

		hops := manhattanHops(origin, destination)
		directTravelTime := float64(hops) * p.LinkTravelTime
		directDistance := float64(hops) * p.LinkDistance

		requestTime := rng.Float64() * p.TimeSpread
		maxTravelTime := directTravelTime + p.MaxTravelTimeSlack

		r, err := request.New(request.Params{
			Index:                i,
			PaxID:                uuid.NewString(),
			Origin:               origin,
			Destination:          destination,
			RequestTime:          requestTime,
			DirectTravelTime:     directTravelTime,
			DirectDistance:       directDistance,
			MaxTravelTime:        maxTravelTime,
			EarliestDeparture:    requestTime - p.WindowSlack,
			LatestDeparture:      requestTime + p.WindowSlack,
			BestAlternativeScore: p.BestAlternative,
		})
		if err != nil {
			return nil, fmt.Errorf("generator: request %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// manhattanHops estimates hop count between two "x,y"-formatted grid
// locations. Falls back to 1 for malformed input (never emitted by Grid).
func manhattanHops(a, b request.Location) int {
	ax, ay, aok := parseXY(a)
	bx, by, bok := parseXY(b)
	if !aok || !bok {
		return 1
	}
	return absInt(ax-bx) + absInt(ay-by)
}

func parseXY(loc request.Location) (x, y int, ok bool) {
	_, err := fmt.Sscanf(string(loc), "%d,%d", &x, &y)
	return x, y, err == nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
