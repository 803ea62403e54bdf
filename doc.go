// Package kernreg provides nonparametric kernel regression for Go: pluggable
// distances and kernels, k-nearest-neighbour search backed by a persistent
// neighbour cache, kernel-weighted and local-linear estimators, and a
// stochastic gradient optimizer with a finite-difference gradient verifier.
//
// # Quick Start
//
// Predict the label of training point q from its neighbours:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/kernreg/distance"
//	    "github.com/YuminosukeSato/kernreg/hp"
//	    "github.com/YuminosukeSato/kernreg/kernel"
//	    "github.com/YuminosukeSato/kernreg/neighbors"
//	    "github.com/YuminosukeSato/kernreg/regression"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
//	    y := mat.NewVecDense(5, []float64{0, 1, 4, 9, 16})
//
//	    h := hp.NewBuilder().K(2).Bandwidth(1.5).Build()
//
//	    knn, err := neighbors.NewKNearestNeighbors(distance.Euclidean{}, X, y, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    pred, err := knn.Apply(h, 2)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("k-NN:", pred)
//
//	    pred, err = regression.WeightedAverage{}.Apply(distance.Euclidean{}, kernel.Gaussian{}, h, X, 2, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("kernel average:", pred)
//	}
//
// # Packages
//
//   - hp: immutable hyperparameter bag with explicit absent fields, YAML loading
//   - distance: distance functions (Euclidean)
//   - kernel: kernel weights (Gaussian, Epanechnikov)
//   - neighbors: k-NN search, the on-disk neighbour cache, batch precompute
//   - regression: WeightedAverage, LocalLinearRegression, leave-one-out evaluation, bandwidth tuning
//   - optimize: CheckGradient and StochasticGradient
//   - metrics: MSE, RMSE, MAE, R²
//   - preprocessing: feature standardization before distance computation
//   - core/model: Estimator contract and optimizer state
//   - core/parallel: range splitting over CPU cores
//   - pkg/errors, pkg/log, pkg/monitor: errors, structured logging, Prometheus counters
//
// # Concurrency
//
// Everything runs synchronously on the caller's goroutine. The neighbour
// cache carries no locks; callers that share one cache between estimators
// must serialize writes themselves.
package kernreg
