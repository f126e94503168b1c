// Package metrics exposes Prometheus instrumentation for scans.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// Scan results used as label values.
const (
	ResultOK     = "ok"
	ResultError  = "error"
	ResultLocked = "locked"
)

var (
	// ScansTotal counts sport scans by outcome.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsarb_scans_total",
			Help: "Total number of sport scans",
		},
		[]string{"sport", "result"},
	)

	// OpportunitiesDetectedTotal counts detected arbitrage opportunities.
	OpportunitiesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsarb_opportunities_detected_total",
			Help: "Total number of arbitrage opportunities detected",
		},
		[]string{"sport"},
	)

	// IneligibleEventsTotal counts events that could not be analysed.
	IneligibleEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsarb_ineligible_events_total",
			Help: "Total number of events skipped for missing outcome coverage",
		},
		[]string{"sport"},
	)

	// OpportunityMarginBPS tracks profit margins in basis points.
	OpportunityMarginBPS = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsarb_opportunity_margin_bps",
		Help:    "Arbitrage opportunity profit margin in basis points",
		Buckets: []float64{10, 25, 50, 100, 200, 500, 1000, 2000, 5000},
	})

	// ScanDurationSeconds tracks the latency of a full sport scan.
	ScanDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsarb_scan_duration_seconds",
			Help:    "Duration of a sport scan including the provider call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sport"},
	)

	// RequestsRemaining is the provider quota from the last response.
	RequestsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportsarb_provider_requests_remaining",
		Help: "Odds provider requests remaining in the current period",
	})
)

// ObserveScan records one completed scan.
func ObserveScan(r domain.ScanResult, took time.Duration) {
	ScansTotal.WithLabelValues(r.SportKey, ResultOK).Inc()
	ScanDurationSeconds.WithLabelValues(r.SportKey).Observe(took.Seconds())
	IneligibleEventsTotal.WithLabelValues(r.SportKey).Add(float64(r.IneligibleEvents))
	OpportunitiesDetectedTotal.WithLabelValues(r.SportKey).Add(float64(len(r.Opportunities)))
	for _, o := range r.Opportunities {
		OpportunityMarginBPS.Observe(o.ProfitMargin * 10_000)
	}
	if r.APIRequestsRemaining != nil {
		RequestsRemaining.Set(float64(*r.APIRequestsRemaining))
	}
}

// ObserveFailure records a scan that did not complete.
func ObserveFailure(sport, result string) {
	ScansTotal.WithLabelValues(sport, result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
