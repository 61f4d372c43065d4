// Package metrics exposes Prometheus collectors for directory operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	// GalleryOps counts gallery operations by operation and outcome.
	GalleryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localconnect",
			Subsystem: "gallery",
			Name:      "operations_total",
			Help:      "Total number of gallery operations.",
		},
		[]string{"op", "status"},
	)

	// GalleryRollbacks counts optimistic removals that had to be reversed.
	GalleryRollbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "localconnect",
			Subsystem: "gallery",
			Name:      "rollbacks_total",
			Help:      "Total number of rolled-back optimistic gallery removals.",
		},
	)

	// OrphanedObjects counts objects left behind by record-insert failures.
	OrphanedObjects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "localconnect",
			Subsystem: "gallery",
			Name:      "orphaned_objects_total",
			Help:      "Total number of uploaded objects orphaned by record failures.",
		},
	)

	// ProfileOps counts profile coordinator operations by operation and outcome.
	ProfileOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localconnect",
			Subsystem: "profile",
			Name:      "operations_total",
			Help:      "Total number of profile operations.",
		},
		[]string{"op", "status"},
	)

	// SweepRemoved counts orphaned objects removed by the maintenance sweep.
	SweepRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "localconnect",
			Subsystem: "maintenance",
			Name:      "orphans_removed_total",
			Help:      "Total number of orphaned objects removed by sweeps.",
		},
	)
)

func init() {
	Registry.MustRegister(
		GalleryOps,
		GalleryRollbacks,
		OrphanedObjects,
		ProfileOps,
		SweepRemoved,
	)
}

// Handler returns an HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
