package storemetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CommitsTotal counts every commit attempt by backend and outcome.
	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefstore_commits_total",
			Help: "Total number of snapshot store commits, by backend and result.",
		},
		[]string{"backend", "result"},
	)

	// CommitDuration measures durable commit latency by backend.
	CommitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prefstore_commit_duration_seconds",
			Help:    "Duration of a single snapshot store commit.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// BatchSize records how many handle writes land in one committed
	// batch transaction. The batch engine's entire reason to exist is
	// collapsing N single-key commits into one.
	BatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prefstore_batch_writes",
			Help:    "Number of handle writes applied within a single batch commit.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// ObserverSubscribers tracks live reactive-sequence subscribers per
	// backend, useful for spotting leaked observers that never cancel.
	ObserverSubscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prefstore_observer_subscribers",
			Help: "Live reactive observer subscribers, by backend.",
		},
		[]string{"backend"},
	)
)

// Collector satisfies flatstore.CommitObserver and docstore.CommitObserver
// structurally (both interfaces have the identical ObserveCommit method
// shape), so one Collector instruments either backend.
type Collector struct{}

// NewCollector returns a ready-to-use commit observer. Metrics are
// package-level prometheus collectors; register them once at startup
// with Register.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) ObserveCommit(backend string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CommitsTotal.WithLabelValues(backend, result).Inc()
	CommitDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// ObserveSubscribers satisfies flatstore.SubscriberObserver and
// docstore.SubscriberObserver structurally, the same way ObserveCommit
// satisfies CommitObserver.
func (c *Collector) ObserveSubscribers(backend string, count int) {
	ObserverSubscribers.WithLabelValues(backend).Set(float64(count))
}

// Register adds every collector to reg. Call once at process startup.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{CommitsTotal, CommitDuration, BatchSize, ObserverSubscribers} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
