package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcileTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "estia",
		Subsystem: "access",
		Name:      "reconcile_total",
		Help:      "Total access reconciliation runs.",
	})

	reconcileFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "estia",
		Subsystem: "access",
		Name:      "reconcile_failures_total",
		Help:      "Reconciliation runs that failed to fetch and kept the last decision.",
	})

	decisionsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "estia",
		Subsystem: "access",
		Name:      "decisions_published_total",
		Help:      "Published access decisions by status.",
	}, []string{"status"})

	notifyEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "estia",
		Subsystem: "access",
		Name:      "notify_events_total",
		Help:      "Realtime change notifications received by channel kind.",
	}, []string{"kind"})

	controllersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "estia",
		Subsystem: "access",
		Name:      "controllers_active",
		Help:      "Live per-business access controllers.",
	})
)
