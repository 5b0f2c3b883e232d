// Package report renders an engine run as a CSV of published rides
// (gocsv) and records its routing-oracle health as Prometheus gauges
// (client_golang) on a caller-supplied registry. exmasctl writes the CSV;
// it sets the gauges on a run-local registry that it neither serves nor
// writes out.
package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/exmas-go/exmas/engine"
	"github.com/exmas-go/exmas/ride"
)

// Row is one published ride, flattened for CSV: per-passenger columns are
// joined with ";" since gocsv has no native repeated-field support.
type Row struct {
	Index       int    `csv:"index"`
	Degree      int    `csv:"degree"`
	Kind        string `csv:"kind"`
	Requests    string `csv:"requestIndices"`
	DropoffSeq  string `csv:"destinationsOrderedRequests"`
	Delay       string `csv:"delay"`
	RemBudget   string `csv:"remainingBudget"`
	TravelTime  float64 `csv:"rideTravelTime"`
	Distance    float64 `csv:"rideDistance"`
	Utility     float64 `csv:"rideUtility"`
	StartTime   float64 `csv:"startTime"`
}

// Rows converts a published-ride slice into CSV rows, preserving index order.
func Rows(rides []ride.Ride) []Row {
	out := make([]Row, len(rides))
	for i, r := range rides {
		reqIdx := make([]int, r.Degree())
		for p, req := range r.Requests() {
			reqIdx[p] = req.Index()
		}
		out[i] = Row{
			Index:      r.Index(),
			Degree:     r.Degree(),
			Kind:       r.Kind().String(),
			Requests:   joinInts(reqIdx),
			DropoffSeq: joinInts(r.DestinationsOrderedRequests()),
			Delay:      joinFloats(r.Delay()),
			RemBudget:  joinFloats(r.RemainingBudget()),
			TravelTime: r.RideTravelTime(),
			Distance:   r.RideDistance(),
			Utility:    r.RideUtility(),
			StartTime:  r.StartTime(),
		}
	}
	return out
}

// WriteCSV marshals rides as CSV to w via gocsv.
func WriteCSV(w io.Writer, rides []ride.Ride) error {
	return gocsv.Marshal(Rows(rides), w)
}

// Metrics is the Prometheus surface exmasctl registers for one run: routing
// attempt/failure counters and the ride count produced per degree, set once
// from the run's engine.Summary (this is a batch CLI, not a long-lived
// server, so gauges rather than counters match the semantics).
type Metrics struct {
	RoutingAttempts prometheus.Gauge
	RoutingFailures prometheus.Gauge
	SuccessRate     prometheus.Gauge
	RidesByDegree   *prometheus.GaugeVec
}

// NewMetrics registers a fresh Metrics set against reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RoutingAttempts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "exmas_routing_attempts_total",
			Help: "Routing oracle calls made during the last run.",
		}),
		RoutingFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "exmas_routing_failures_total",
			Help: "Routing oracle calls that resolved to unreachable or errored during the last run.",
		}),
		SuccessRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "exmas_routing_success_rate",
			Help: "Routing oracle success rate observed during the last run.",
		}),
		RidesByDegree: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "exmas_rides_by_degree",
			Help: "Published ride count by degree for the last run.",
		}, []string{"degree"}),
	}
	for _, c := range []prometheus.Collector{m.RoutingAttempts, m.RoutingFailures, m.SuccessRate, m.RidesByDegree} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one engine.Summary into m.
func (m *Metrics) Observe(s engine.Summary) {
	m.RoutingAttempts.Set(float64(s.RoutingAttempts))
	m.RoutingFailures.Set(float64(s.RoutingFailures))
	m.SuccessRate.Set(s.RoutingSuccessRate)
	for degree, count := range s.RidesByDegree {
		m.RidesByDegree.WithLabelValues(itoa(degree)).Set(float64(count))
	}
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = itoa(v)
	}
	return strings.Join(parts, ";")
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = ftoa(v)
	}
	return strings.Join(parts, ";")
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
