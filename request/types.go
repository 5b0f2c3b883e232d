// Package request defines the immutable travel-request data model consumed
// by the ExMAS ride-generation engine: Location, Request, and the
// TravelSegment shape returned by the routing oracle.
//
// Requests are dense-indexed ([0, N)) and never mutated after construction.
// Two requests sharing a PaxID may never appear in the same ride; the engine
// enforces this, it is not re-validated here.
package request

import (
	"errors"
	"fmt"
)

// Sentinel errors for request construction.
var (
	// ErrEmptyPaxID indicates a request was built without a traveller identity.
	ErrEmptyPaxID = errors.New("request: paxId is empty")

	// ErrInfeasibleRequest indicates a structurally inverted pickup window:
	// earliestDeparture > latestDeparture. Fatal for that single request; it
	// is never admitted to the engine's request set.
	ErrInfeasibleRequest = errors.New("request: earliestDeparture after latestDeparture")

	// ErrBadTravelTime indicates directTravelTime > maxTravelTime.
	ErrBadTravelTime = errors.New("request: directTravelTime exceeds maxTravelTime")

	// ErrBadWindow indicates earliestDeparture > requestTime or requestTime > latestDeparture.
	ErrBadWindow = errors.New("request: requestTime outside [earliestDeparture, latestDeparture]")
)

// Location is an opaque identifier for a network point (a link or node id).
// Equality and hashing are all the engine ever needs; no geometric semantics
// are assumed or used internally.
type Location string

// Request is an immutable travel request. Construct with New; all fields
// are validated once at construction and never change afterward.
type Request struct {
	index int
	paxID string

	origin      Location
	destination Location

	requestTime float64

	directTravelTime float64
	directDistance   float64

	maxTravelTime float64

	earliestDeparture float64
	latestDeparture   float64

	positiveDelayRelComponent float64
	negativeDelayRelComponent float64

	bestAlternativeScore float64
	budget               float64
}

// Params bundles the raw fields needed to construct a Request. Index is
// assigned by the caller (the engine assigns dense indices in [0, N) across
// the whole request set); New only validates consistency of a single request.
type Params struct {
	Index       int
	PaxID       string
	Origin      Location
	Destination Location

	RequestTime float64

	DirectTravelTime float64
	DirectDistance   float64

	MaxTravelTime float64

	EarliestDeparture float64
	LatestDeparture   float64

	PositiveDelayRelComponent float64
	NegativeDelayRelComponent float64

	BestAlternativeScore float64
	Budget               float64
}

// New validates p and returns an immutable Request, or an error wrapping one
// of ErrEmptyPaxID, ErrBadTravelTime, ErrBadWindow, ErrInfeasibleRequest.
// This is the only constructor; Request has no exported fields to mutate.
func New(p Params) (Request, error) {
	if p.PaxID == "" {
		return Request{}, ErrEmptyPaxID
	}
	if p.DirectTravelTime > p.MaxTravelTime {
		return Request{}, fmt.Errorf("%w: index=%d direct=%.3f max=%.3f",
			ErrBadTravelTime, p.Index, p.DirectTravelTime, p.MaxTravelTime)
	}
	if p.EarliestDeparture > p.LatestDeparture {
		return Request{}, fmt.Errorf("%w: index=%d earliest=%.3f latest=%.3f",
			ErrInfeasibleRequest, p.Index, p.EarliestDeparture, p.LatestDeparture)
	}
	if p.EarliestDeparture > p.RequestTime || p.RequestTime > p.LatestDeparture {
		return Request{}, fmt.Errorf("%w: index=%d window=[%.3f,%.3f] requestTime=%.3f",
			ErrBadWindow, p.Index, p.EarliestDeparture, p.LatestDeparture, p.RequestTime)
	}

	return Request{
		index:                     p.Index,
		paxID:                     p.PaxID,
		origin:                    p.Origin,
		destination:               p.Destination,
		requestTime:               p.RequestTime,
		directTravelTime:          p.DirectTravelTime,
		directDistance:            p.DirectDistance,
		maxTravelTime:             p.MaxTravelTime,
		earliestDeparture:         p.EarliestDeparture,
		latestDeparture:           p.LatestDeparture,
		positiveDelayRelComponent: p.PositiveDelayRelComponent,
		negativeDelayRelComponent: p.NegativeDelayRelComponent,
		bestAlternativeScore:      p.BestAlternativeScore,
		budget:                    p.Budget,
	}, nil
}

// Index returns the dense [0, N) key used as the request's identity everywhere.
func (r Request) Index() int { return r.index }

// PaxID returns the opaque traveller identity. Two requests sharing a PaxID
// may never appear in the same ride.
func (r Request) PaxID() string { return r.paxID }

// Origin returns the pickup Location.
func (r Request) Origin() Location { return r.origin }

// Destination returns the dropoff Location.
func (r Request) Destination() Location { return r.destination }

// RequestTime returns the desired pickup instant, in seconds.
func (r Request) RequestTime() float64 { return r.requestTime }

// DirectTravelTime returns the reference unshared in-vehicle time.
func (r Request) DirectTravelTime() float64 { return r.directTravelTime }

// DirectDistance returns the reference unshared trip distance.
func (r Request) DirectDistance() float64 { return r.directDistance }

// MaxTravelTime returns the hard upper bound on realized in-vehicle time.
func (r Request) MaxTravelTime() float64 { return r.maxTravelTime }

// EarliestDeparture returns the absolute earliest pickup instant.
func (r Request) EarliestDeparture() float64 { return r.earliestDeparture }

// LatestDeparture returns the absolute latest pickup instant.
func (r Request) LatestDeparture() float64 { return r.latestDeparture }

// MaxNegativeDelay returns requestTime - earliestDeparture (>= 0).
func (r Request) MaxNegativeDelay() float64 { return r.requestTime - r.earliestDeparture }

// MaxPositiveDelay returns latestDeparture - requestTime (>= 0).
func (r Request) MaxPositiveDelay() float64 { return r.latestDeparture - r.requestTime }

// PositiveDelayRelComponent returns the portion of positive delay allowance
// already pre-consumed by detour, as supplied by the upstream request factory.
func (r Request) PositiveDelayRelComponent() float64 { return r.positiveDelayRelComponent }

// NegativeDelayRelComponent returns the portion of negative delay allowance
// already pre-consumed by detour, as supplied by the upstream request factory.
func (r Request) NegativeDelayRelComponent() float64 { return r.negativeDelayRelComponent }

// BestAlternativeScore returns the utility of the rider's best non-shared option.
func (r Request) BestAlternativeScore() float64 { return r.bestAlternativeScore }

// Budget returns the maximum utility degradation this rider accepts relative
// to BestAlternativeScore. May be negative. The engine does not read it:
// budget validation compares the scoring oracle's utility with
// BestAlternativeScore, so a negative Budget does not by itself reject a ride.
func (r Request) Budget() float64 { return r.budget }
