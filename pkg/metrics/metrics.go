// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LifecycleEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "landing",
		Name:      "lifecycle_events_total",
		Help:      "Lifecycle events dispatched on the bus, by event type.",
	}, []string{"event_type"})

	ListenerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "landing",
		Name:      "lifecycle_listener_errors_total",
		Help:      "Lifecycle listeners that returned an error, by event type.",
	}, []string{"event_type"})

	Flushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "landing",
		Name:      "unit_of_work_flushes_total",
		Help:      "Unit-of-work flushes committed to Postgres.",
	})

	FlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "landing",
		Name:      "unit_of_work_flush_seconds",
		Help:      "Time spent committing a unit-of-work flush.",
		Buckets:   prometheus.DefBuckets,
	})

	PageHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "landing",
		Name:      "page_hits_total",
		Help:      "Public page hits, by response code.",
	}, []string{"code"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "landing",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limit rule, by rule name.",
	}, []string{"rule"})
)
