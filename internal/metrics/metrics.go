// Package metrics exposes Prometheus counters for game activity and
// statistics computations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gameshow/internal/events"
)

// Collector records game events and statistics work. It observes session
// buses directly.
type Collector struct {
	events          *prometheus.CounterVec
	pointsAwarded   *prometheus.CounterVec
	sessionsCreated prometheus.Counter
	statsComputed   *prometheus.CounterVec
	statsLatency    prometheus.Histogram
	archiveFailures prometheus.Counter
}

// New registers every metric with reg. Pass a fresh registry in tests to
// avoid duplicate registration.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		events: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gameshow_events_total",
				Help: "Session events published, by kind.",
			},
			[]string{"kind"},
		),
		pointsAwarded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gameshow_points_total",
				Help: "Absolute points moved by round results and bonuses.",
			},
			[]string{"source"},
		),
		sessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "gameshow_sessions_created_total",
			Help: "Game sessions created.",
		}),
		statsComputed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gameshow_stats_computations_total",
				Help: "Statistics snapshots computed, by output format.",
			},
			[]string{"format"},
		),
		statsLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gameshow_stats_duration_seconds",
			Help:    "Time spent computing and rendering statistics.",
			Buckets: prometheus.DefBuckets,
		}),
		archiveFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "gameshow_archive_failures_total",
			Help: "Finished games that could not be written to the database.",
		}),
	}
}

func (c *Collector) Notify(ev events.Event) {
	c.events.WithLabelValues(string(ev.Kind())).Inc()
	switch e := ev.(type) {
	case events.RoundSubmitted:
		for _, ch := range e.Changes {
			c.pointsAwarded.WithLabelValues("round").Add(float64(abs(ch.Points)))
		}
	case events.BonusAwarded:
		c.pointsAwarded.WithLabelValues("bonus").Add(float64(e.Points))
	}
}

func (c *Collector) SessionCreated() {
	c.sessionsCreated.Inc()
}

func (c *Collector) ArchiveFailed() {
	c.archiveFailures.Inc()
}

// ObserveStats records one statistics request in the given format.
func (c *Collector) ObserveStats(format string, d time.Duration) {
	c.statsComputed.WithLabelValues(format).Inc()
	c.statsLatency.Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
