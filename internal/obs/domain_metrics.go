package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesTotal counts quote computations by sell channel and outcome.
	QuotesTotal *prometheus.CounterVec
	// AvailabilityDeniedTotal counts quotes whose requested quantity exceeded pool allocation.
	AvailabilityDeniedTotal prometheus.Counter
	// CatalogRefreshTotal counts catalog snapshot refresh outcomes.
	CatalogRefreshTotal *prometheus.CounterVec
	// CatalogSnapshotAge reports how old the served catalog snapshot is.
	CatalogSnapshotAge prometheus.Gauge
	// TasksProcessedTotal counts background task executions by type and outcome.
	TasksProcessedTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		if namespace == "" {
			namespace = DefaultNamespace
		}
		QuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Count of quote computations by channel and result.",
		}, []string{"channel", "result"})
		AvailabilityDeniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_denied_total",
			Help:      "Number of quotes where the pool allocation could not cover the requested quantity.",
		})
		CatalogRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_snapshot_refresh_total",
			Help:      "Count of catalog snapshot refreshes by result.",
		}, []string{"result"})
		CatalogSnapshotAge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_snapshot_age_seconds",
			Help:      "Age of the catalog snapshot currently served.",
		})
		TasksProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_processed_total",
			Help:      "Count of background task executions by type and result.",
		}, []string{"type", "result"})

		QuotesTotal = registerOrReuse(reg, QuotesTotal)
		AvailabilityDeniedTotal = registerOrReuse(reg, AvailabilityDeniedTotal)
		CatalogRefreshTotal = registerOrReuse(reg, CatalogRefreshTotal)
		CatalogSnapshotAge = registerOrReuse(reg, CatalogSnapshotAge)
		TasksProcessedTotal = registerOrReuse(reg, TasksProcessedTotal)
	})
}
