// Package monitor exposes Prometheus instrumentation for the neighbour
// cache, the estimators and the optimizer.
//
// Metrics are registered on the default registry with promauto, so an
// application only needs to serve promhttp.Handler() to scrape them.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"

	ResultPass = "pass"
	ResultFail = "fail"

	OpPut   = "put"
	OpLoad  = "load"
	OpWrite = "write"
)

var (
	// CacheLookups counts cached-path neighbour lookups by result (hit, miss).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kernreg_neighbor_cache_lookups_total",
			Help: "Neighbour cache lookups on the cached k-NN path",
		},
		[]string{"result"},
	)

	// CacheRecords counts neighbour lists stored, loaded from or written to disk.
	CacheRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kernreg_neighbor_cache_records_total",
			Help: "Neighbour lists processed by cache operation",
		},
		[]string{"op"},
	)

	// Predictions counts predictions made per estimator.
	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kernreg_predictions_total",
			Help: "Predictions produced by each estimator",
		},
		[]string{"estimator"},
	)

	// OptimizerEpochs counts completed optimizer epochs.
	OptimizerEpochs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kernreg_optimizer_epochs_total",
			Help: "Completed stochastic gradient epochs",
		},
	)

	// OptimizerSteps counts per-example gradient evaluations.
	OptimizerSteps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kernreg_optimizer_steps_total",
			Help: "Per-example gradient evaluations performed by the optimizer",
		},
	)

	// GradientChecks counts finite-difference verifications by result.
	GradientChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kernreg_gradient_checks_total",
			Help: "Finite-difference gradient checks by result",
		},
		[]string{"result"},
	)
)
