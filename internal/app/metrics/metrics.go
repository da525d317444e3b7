package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sondetracker"

// Collector holds the reconciliation loop instruments.
type Collector struct {
	Cycles        prometheus.Counter
	ChangedCycles prometheus.Counter
	SkippedTicks  prometheus.Counter
	FileErrors    prometheus.Counter
	ParsedFiles   prometheus.Counter
	Flights       prometheus.Gauge
	ActiveFlights prometheus.Gauge
	State         prometheus.Gauge
	CycleDuration prometheus.Histogram
}

// New creates the instruments and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Reconciliation cycles run.",
		}),
		ChangedCycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changed_cycles_total",
			Help:      "Reconciliation cycles that inserted or replaced a flight.",
		}),
		SkippedTicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_ticks_total",
			Help:      "Timer ticks dropped because a cycle was still running.",
		}),
		FileErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_errors_total",
			Help:      "Per-file read or stat failures.",
		}),
		ParsedFiles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parsed_files_total",
			Help:      "Files read and parsed.",
		}),
		Flights: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flights",
			Help:      "Flights in the store.",
		}),
		ActiveFlights: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_flights",
			Help:      "Flights selected for display.",
		}),
		State: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_state",
			Help:      "Scheduler state: 0 idle, 1 polling, 2 cycle running, 3 stopped.",
		}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a reconciliation cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}
