// Package metrics holds the Prometheus instruments shared by the services.
// All collectors are registered with the default registry in init, so the
// promhttp handler in main exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SagaRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_runs_total",
			Help: "Multi-step operations run, by saga and outcome.",
		}, []string{"saga", "outcome"})

	SagaCompensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Compensating actions executed, by saga, step and outcome.",
		}, []string{"saga", "step", "outcome"})

	ImageUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Image uploads, by result.",
		}, []string{"result"})

	OrphanedBlobsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orphaned_blobs_total",
			Help: "Blobs left in storage because their metadata row could not be written.",
		})

	LogoCleanupFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "logo_cleanup_failures_total",
			Help: "Logo deletions that failed while the owning site was removed or edited.",
		})

	CountCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "count_cache_hits_total",
			Help: "Status count lookups served from cache.",
		})

	CountCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "count_cache_misses_total",
			Help: "Status count lookups that queried the store.",
		})
)

func init() {
	prometheus.MustRegister(
		SagaRunsTotal,
		SagaCompensationsTotal,
		ImageUploadsTotal,
		OrphanedBlobsTotal,
		LogoCleanupFailuresTotal,
		CountCacheHitsTotal,
		CountCacheMissesTotal,
	)
}
