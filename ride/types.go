// Package ride defines the immutable Ride value type published by every
// stage of the ExMAS pipeline (SingleRideGenerator, PairGenerator,
// RideExtender), plus the degree-1 generator itself.
//
// A Ride is never mutated after Build returns it. Builders take ownership of
// the slices they are given (the caller must not retain and mutate them
// afterward); accessors return the owned slices directly rather than
// defensive copies, since the object is immutable — matching the "borrowed
// const view" publication strategy called out for systems ports of this
// design.
package ride

import (
	"errors"
	"fmt"

	"github.com/exmas-go/exmas/request"
)

// Kind identifies a ride's dropoff ordering.
type Kind uint8

const (
	// SINGLE is a degree-1 ride; the only kind degree=1 rides may have.
	SINGLE Kind = iota
	// FIFO orders dropoffs in pickup order.
	FIFO
	// LIFO orders dropoffs in reverse pickup order.
	LIFO
	// MIXED orders dropoffs in neither strict FIFO nor strict LIFO order.
	// Only reachable at degree >= 3 via RideExtender insertion.
	MIXED
)

// String renders the Kind for logs and test failure messages.
func (k Kind) String() string {
	switch k {
	case SINGLE:
		return "SINGLE"
	case FIFO:
		return "FIFO"
	case LIFO:
		return "LIFO"
	case MIXED:
		return "MIXED"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Sentinel errors for ride construction (spec.md §7's local-recovery kinds,
// surfaced here as Go errors so callers can fmt.Errorf/errors.Is around them
// instead of silently swallowing a programmer mistake).
var (
	// ErrDuplicatePassenger indicates the same PaxID appears twice in a candidate ride.
	ErrDuplicatePassenger = errors.New("ride: duplicate passenger paxId in candidate ride")
	// ErrShapeMismatch indicates the parallel slices passed to Build are inconsistent in length.
	ErrShapeMismatch = errors.New("ride: inconsistent slice lengths")
	// ErrBadTravelTime indicates passengerTravelTime is outside [directTravelTime-eps, maxTravelTime].
	ErrBadTravelTime = errors.New("ride: passenger travel time outside bounds")
	// ErrNegativeBudget indicates a passenger's remainingBudget is negative.
	ErrNegativeBudget = errors.New("ride: remaining budget is negative")
)

// Epsilon is the default numeric tolerance used when validating travel-time
// bounds and the remaining-budget sign (spec.md's ε = 1e-9).
const Epsilon = 1e-9

// Ride is an immutable planned shared trip.
type Ride struct {
	index  int
	degree int
	kind   Kind

	requests []request.Request

	originsOrdered              []request.Location
	destinationsOrdered         []request.Location
	destinationsOrderedRequests []int

	passengerTravelTime    []float64
	passengerDistance      []float64
	passengerNetworkUtil   []float64
	delay                  []float64
	remainingBudget        []float64

	connectionTravelTime []float64
	connectionDistance   []float64
	connectionUtility    []float64

	rideTravelTime float64
	rideDistance   float64
	rideUtility    float64
	startTime      float64
	endTime        float64
}

// Spec bundles everything needed to build a Ride. Build takes ownership of
// every slice field; callers must not mutate them after calling Build.
type Spec struct {
	Index  int
	Kind   Kind
	Requests []request.Request

	OriginsOrdered              []request.Location
	DestinationsOrdered         []request.Location
	DestinationsOrderedRequests []int

	PassengerTravelTime  []float64
	PassengerDistance    []float64
	PassengerNetworkUtil []float64
	Delay                []float64
	RemainingBudget      []float64

	ConnectionTravelTime []float64
	ConnectionDistance   []float64
	ConnectionUtility    []float64

	StartTime float64
}

// Build validates Spec against the Ride invariants of spec.md §3 (items 1,
// 2, 3 and 5; the delay window of item 4 is not checked here — pairgen and
// extend run delay.Optimize before calling Build — and item 6, the SINGLE
// identity-index rule, is enforced by the single-ride generator) and returns
// the immutable Ride.
func Build(s Spec) (Ride, error) {
	degree := len(s.Requests)
	if degree == 0 {
		return Ride{}, fmt.Errorf("%w: empty requests", ErrShapeMismatch)
	}
	if len(s.OriginsOrdered) != degree || len(s.DestinationsOrdered) != degree ||
		len(s.DestinationsOrderedRequests) != degree ||
		len(s.PassengerTravelTime) != degree || len(s.PassengerDistance) != degree ||
		len(s.PassengerNetworkUtil) != degree || len(s.Delay) != degree ||
		len(s.RemainingBudget) != degree {
		return Ride{}, fmt.Errorf("%w: degree=%d", ErrShapeMismatch, degree)
	}
	wantConn := 2*degree - 1
	if len(s.ConnectionTravelTime) != wantConn || len(s.ConnectionDistance) != wantConn ||
		len(s.ConnectionUtility) != wantConn {
		return Ride{}, fmt.Errorf("%w: want %d connection legs", ErrShapeMismatch, wantConn)
	}
	if s.Kind == SINGLE && degree != 1 {
		return Ride{}, fmt.Errorf("%w: SINGLE kind with degree=%d", ErrShapeMismatch, degree)
	}

	seen := make(map[string]struct{}, degree)
	for _, r := range s.Requests {
		if _, dup := seen[r.PaxID()]; dup {
			return Ride{}, fmt.Errorf("%w: paxId=%s", ErrDuplicatePassenger, r.PaxID())
		}
		seen[r.PaxID()] = struct{}{}
	}

	// SINGLE rides are exempt from the travel-time and budget checks below:
	// spec.md §4.2 makes SingleRideGenerator unconditional ("always feasible
	// by construction") and §8's Singles-identity property requires exactly
	// one produced ride per request regardless of what the scoring oracle
	// returns for it.
	if s.Kind != SINGLE {
		for i, r := range s.Requests {
			ptt := s.PassengerTravelTime[i]
			if ptt < r.DirectTravelTime()-Epsilon || ptt > r.MaxTravelTime()+Epsilon {
				return Ride{}, fmt.Errorf("%w: passenger %d ptt=%.6f direct=%.6f max=%.6f",
					ErrBadTravelTime, i, ptt, r.DirectTravelTime(), r.MaxTravelTime())
			}
			if s.RemainingBudget[i] < -Epsilon {
				return Ride{}, fmt.Errorf("%w: passenger %d remaining=%.6f",
					ErrNegativeBudget, i, s.RemainingBudget[i])
			}
		}
	}

	rideTravelTime := 0.0
	rideDistance := 0.0
	rideUtility := 0.0
	for i := range s.ConnectionTravelTime {
		rideTravelTime += s.ConnectionTravelTime[i]
		rideDistance += s.ConnectionDistance[i]
		rideUtility += s.ConnectionUtility[i]
	}

	r := Ride{
		index:                       s.Index,
		degree:                      degree,
		kind:                        s.Kind,
		requests:                    s.Requests,
		originsOrdered:              s.OriginsOrdered,
		destinationsOrdered:         s.DestinationsOrdered,
		destinationsOrderedRequests: s.DestinationsOrderedRequests,
		passengerTravelTime:         s.PassengerTravelTime,
		passengerDistance:           s.PassengerDistance,
		passengerNetworkUtil:        s.PassengerNetworkUtil,
		delay:                       s.Delay,
		remainingBudget:             s.RemainingBudget,
		connectionTravelTime:        s.ConnectionTravelTime,
		connectionDistance:          s.ConnectionDistance,
		connectionUtility:           s.ConnectionUtility,
		rideTravelTime:              rideTravelTime,
		rideDistance:                rideDistance,
		rideUtility:                 rideUtility,
		startTime:                   s.StartTime,
		endTime:                     s.StartTime + rideTravelTime,
	}

	return r, nil
}

// Index is the dense, unique, monotone-per-phase ride identity.
func (r Ride) Index() int { return r.index }

// Degree is the number of passengers carried.
func (r Ride) Degree() int { return r.degree }

// Kind is the dropoff-ordering discriminator.
func (r Ride) Kind() Kind { return r.kind }

// Requests returns the ordered-by-pickup request sequence. Requests[0]
// defines the ride's StartTime.
func (r Ride) Requests() []request.Request { return r.requests }

// OriginsOrdered returns pickup locations in pickup order.
func (r Ride) OriginsOrdered() []request.Location { return r.originsOrdered }

// DestinationsOrdered returns dropoff locations in dropoff order.
func (r Ride) DestinationsOrdered() []request.Location { return r.destinationsOrdered }

// DestinationsOrderedRequests returns, parallel to DestinationsOrdered, the
// request index each dropoff belongs to. Never recomputed from positions.
func (r Ride) DestinationsOrderedRequests() []int { return r.destinationsOrderedRequests }

// PassengerTravelTime returns per-passenger realized in-vehicle time, indexed
// by position in Requests().
func (r Ride) PassengerTravelTime() []float64 { return r.passengerTravelTime }

// PassengerDistance returns per-passenger realized distance.
func (r Ride) PassengerDistance() []float64 { return r.passengerDistance }

// PassengerNetworkUtility returns per-passenger realized routing utility.
func (r Ride) PassengerNetworkUtility() []float64 { return r.passengerNetworkUtil }

// Delay returns the optimized per-passenger start-time offset.
func (r Ride) Delay() []float64 { return r.delay }

// RemainingBudget returns the per-passenger residual utility after scoring;
// >= 0 on every published Ride.
func (r Ride) RemainingBudget() []float64 { return r.remainingBudget }

// ConnectionTravelTime returns the 2*degree-1 leg travel times of the
// concatenated pickup+dropoff sequence.
func (r Ride) ConnectionTravelTime() []float64 { return r.connectionTravelTime }

// ConnectionDistance returns the 2*degree-1 leg distances.
func (r Ride) ConnectionDistance() []float64 { return r.connectionDistance }

// ConnectionUtility returns the 2*degree-1 leg utilities.
func (r Ride) ConnectionUtility() []float64 { return r.connectionUtility }

// RideTravelTime is the sum of all connection travel times.
func (r Ride) RideTravelTime() float64 { return r.rideTravelTime }

// RideDistance is the sum of all connection distances.
func (r Ride) RideDistance() float64 { return r.rideDistance }

// RideUtility is the sum of all connection utilities.
func (r Ride) RideUtility() float64 { return r.rideUtility }

// StartTime is requests[0]'s requestTime. The optimized shift is carried in
// Delay and is not applied to StartTime.
func (r Ride) StartTime() float64 { return r.startTime }

// EndTime is StartTime + RideTravelTime.
func (r Ride) EndTime() float64 { return r.endTime }

// IsFIFOOrdered reports whether DestinationsOrderedRequests equals the
// request indices of Requests() in pickup order.
func (r Ride) IsFIFOOrdered() bool {
	for i, reqIdx := range r.destinationsOrderedRequests {
		if reqIdx != r.requests[i].Index() {
			return false
		}
	}
	return true
}

// IsLIFOOrdered reports whether DestinationsOrderedRequests equals the
// reverse pickup-order request index sequence.
func (r Ride) IsLIFOOrdered() bool {
	n := len(r.requests)
	for i, reqIdx := range r.destinationsOrderedRequests {
		if reqIdx != r.requests[n-1-i].Index() {
			return false
		}
	}
	return true
}
