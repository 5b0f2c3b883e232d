// Package horizon implements TimeFilter (spec.md's C1): a read-only,
// thread-safe index over request times that answers "which other requests
// fall within +/- horizon seconds of request i" in O(log n + k).
package horizon

import (
	"errors"
	"fmt"
	"sort"

	"github.com/exmas-go/exmas/request"
)

// ErrBadHorizon indicates a negative, non-zero horizon was supplied to
// Candidates; spec.md §4.1 treats horizon=0 as "no temporal pairing" (valid,
// returns empty) but any other non-positive value as a configuration error.
var ErrBadHorizon = errors.New("horizon: horizon must be zero or positive")

type entry struct {
	index       int
	requestTime float64
}

// TimeFilter pre-sorts a copy of the request set by RequestTime and answers
// horizon-window candidate queries against it. Built once in O(N log N);
// Candidates has no side effects and is safe for concurrent use.
type TimeFilter struct {
	sorted      []entry
	requestTime map[int]float64
}

// New builds a TimeFilter over requests in O(N log N).
func New(requests []request.Request) *TimeFilter {
	sorted := make([]entry, len(requests))
	byIndex := make(map[int]float64, len(requests))
	for i, r := range requests {
		sorted[i] = entry{index: r.Index(), requestTime: r.RequestTime()}
		byIndex[r.Index()] = r.RequestTime()
	}
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].requestTime < sorted[b].requestTime })
	return &TimeFilter{sorted: sorted, requestTime: byIndex}
}

// Candidates returns the indices of all requests j != i with
// |requestTime[i] - requestTime[j]| <= horizon, in ascending requestTime
// order. horizon == 0 always returns an empty slice. horizon < 0 returns
// ErrBadHorizon.
func (f *TimeFilter) Candidates(i int, horizon float64) ([]int, error) {
	if horizon < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrBadHorizon, horizon)
	}
	if horizon == 0 {
		return nil, nil
	}

	t := f.requestTime[i]
	lo := sort.Search(len(f.sorted), func(k int) bool { return f.sorted[k].requestTime >= t-horizon })
	hi := sort.Search(len(f.sorted), func(k int) bool { return f.sorted[k].requestTime > t+horizon })

	out := make([]int, 0, hi-lo)
	for _, e := range f.sorted[lo:hi] {
		if e.index == i {
			continue
		}
		out = append(out, e.index)
	}
	return out, nil
}

