// Package engine is the Orchestrator (spec.md's "—" row): it sequences
// TimeFilter, SingleRideGenerator, PairGenerator, ShareabilityGraph
// construction, and the RideExtender's iterative degree growth, assigning
// ride indices and enforcing the max-degree termination rule.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/exmas-go/exmas/extend"
	"github.com/exmas-go/exmas/horizon"
	"github.com/exmas-go/exmas/oracle"
	"github.com/exmas-go/exmas/pairgen"
	"github.com/exmas-go/exmas/request"
	"github.com/exmas-go/exmas/ride"
	"github.com/exmas-go/exmas/shareability"
)

// ErrConfiguration indicates an invalid Config (spec.md §7's
// ConfigurationError kind): fatal at startup, never recovered locally.
var ErrConfiguration = errors.New("engine: invalid configuration")

// Config bundles the recognized options of spec.md §6.
type Config struct {
	horizon     float64
	maxDegree   int
	timeBinSize float64
	epsilon     float64
	parallelism int
	logger      *zap.Logger
}

// Option configures a Config at construction, following the teacher's
// functional-options idiom (core.GraphOption).
type Option func(*Config)

// WithHorizon sets the PairGenerator temporal pairing window, in seconds.
func WithHorizon(seconds float64) Option { return func(c *Config) { c.horizon = seconds } }

// WithMaxDegree sets the upper bound on ride degree. 1 means singles only, 2
// means singles+pairs, >=3 enables iterative extension.
func WithMaxDegree(n int) Option { return func(c *Config) { c.maxDegree = n } }

// WithTimeBinSize sets the routing cache bin width, in seconds.
func WithTimeBinSize(seconds float64) Option { return func(c *Config) { c.timeBinSize = seconds } }

// WithEpsilon sets the value Config.Epsilon reports. It is not passed to
// delay.Optimize or ride.Build, which apply their own fixed 1e-9 tolerance.
func WithEpsilon(eps float64) Option { return func(c *Config) { c.epsilon = eps } }

// WithParallelism sets the worker count for PairGenerator/RideExtender fan-out.
// 0 means "use all cores" (passed through to errgroup.SetLimit as unlimited).
func WithParallelism(n int) Option { return func(c *Config) { c.parallelism = n } }

// WithLogger attaches a structured logger. Defaults to zap.NewNop(): the
// engine is a library, not an application, and must stay silent unless a
// caller opts in.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConfig builds a Config from opts, validating the spec.md §6 table.
// horizon < 0, maxDegree < 1, or timeBinSize <= 0 return ErrConfiguration.
func NewConfig(opts ...Option) (Config, error) {
	c := Config{
		maxDegree:   2,
		timeBinSize: 900,
		epsilon:     1e-9,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.horizon < 0 {
		return Config{}, fmt.Errorf("%w: horizon must be >= 0, got %v", ErrConfiguration, c.horizon)
	}
	if c.maxDegree < 1 {
		return Config{}, fmt.Errorf("%w: maxDegree must be >= 1, got %d", ErrConfiguration, c.maxDegree)
	}
	if c.timeBinSize <= 0 {
		return Config{}, fmt.Errorf("%w: timeBinSize must be > 0, got %v", ErrConfiguration, c.timeBinSize)
	}
	return c, nil
}

// Horizon returns the configured PairGenerator temporal window, in seconds.
func (c Config) Horizon() float64 { return c.horizon }

// MaxDegree returns the configured upper bound on ride degree.
func (c Config) MaxDegree() int { return c.maxDegree }

// TimeBinSize returns the configured routing cache bin width, in seconds —
// callers wrapping their own routing oracle in oracle.NewCached should pass
// this value through rather than hardcoding one.
func (c Config) TimeBinSize() float64 { return c.timeBinSize }

// Epsilon returns the configured numeric tolerance. Run does not use it: the
// delay and ride packages apply their own fixed 1e-9 tolerance.
func (c Config) Epsilon() float64 { return c.epsilon }

// Parallelism returns the configured fan-out worker limit.
func (c Config) Parallelism() int { return c.parallelism }

// Summary is the run-level report spec.md §7 requires: total routing
// attempts, failures, success rate, and the ride count produced per degree.
type Summary struct {
	RoutingAttempts  uint64
	RoutingFailures  uint64
	RoutingSuccessRate float64
	RidesByDegree    map[int]int
}

// Run sequences the full pipeline over requests using routing and scoring,
// per cfg, and returns the published rides (singles first, then pairs, then
// degree-3, ... per spec.md §6) plus the run Summary.
func Run(ctx context.Context, requests []request.Request, routing oracle.CountingRoutingOracle, scoring oracle.ScoringOracle, cfg Config) ([]ride.Ride, Summary, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	byIndex := make(map[int]request.Request, len(requests))
	for _, r := range requests {
		byIndex[r.Index()] = r
	}

	singles, err := ride.GenerateSingles(ctx, requests, scoring)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("engine: generating singles: %w", err)
	}

	ridesByDegree := map[int]int{1: len(singles)}
	allRides := append([]ride.Ride{}, singles...)

	if cfg.maxDegree < 2 {
		return allRides, summarize(routing, ridesByDegree), nil
	}

	tf := horizon.New(requests)
	pairRes, err := pairgen.Generate(ctx, requests, tf, cfg.horizon, routing, scoring, len(requests), cfg.parallelism)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("engine: generating pairs: %w", err)
	}
	ridesByDegree[2] = len(pairRes.Rides)
	allRides = append(allRides, pairRes.Rides...)

	logger.Debug("pair phase complete", zap.Int("pairs", len(pairRes.Rides)))

	if cfg.maxDegree < 3 || len(pairRes.Rides) == 0 {
		return allRides, summarize(routing, ridesByDegree), nil
	}

	graph := shareability.Build(pairRes.Rides)
	currentDegree := pairRes.Rides
	nextIndex := len(requests) + len(pairRes.Rides)

	for degree := 2; degree < cfg.maxDegree; degree++ {
		res, err := extend.Extend(ctx, currentDegree, byIndex, graph, routing, scoring, nextIndex, cfg.parallelism)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("engine: extending degree %d->%d: %w", degree, degree+1, err)
		}
		if len(res.Rides) == 0 {
			logger.Debug("extension phase produced no rides, stopping", zap.Int("fromDegree", degree))
			break
		}
		ridesByDegree[degree+1] = len(res.Rides)
		allRides = append(allRides, res.Rides...)
		nextIndex += len(res.Rides)
		currentDegree = res.Rides
	}

	return allRides, summarize(routing, ridesByDegree), nil
}

func summarize(routing oracle.CountingRoutingOracle, ridesByDegree map[int]int) Summary {
	counters := routing.Counters()
	return Summary{
		RoutingAttempts:    counters.Attempts,
		RoutingFailures:    counters.Failures,
		RoutingSuccessRate: counters.SuccessRate(),
		RidesByDegree:      ridesByDegree,
	}
}

// LogIfDegraded emits a zap Warn when the summary's routing failure rate
// exceeds 10%, per spec.md §7's closing paragraph.
func LogIfDegraded(logger *zap.Logger, s Summary) {
	if logger == nil {
		return
	}
	if s.RoutingAttempts == 0 {
		return
	}
	failureRate := 1 - s.RoutingSuccessRate
	if failureRate > 0.10 {
		logger.Warn("routing oracle failure rate exceeds 10%",
			zap.Float64("failureRate", failureRate),
			zap.Uint64("attempts", s.RoutingAttempts),
			zap.Uint64("failures", s.RoutingFailures))
	}
}
