package neighbors

import (
	"math"
	"time"

	"github.com/YuminosukeSato/kernreg/core/parallel"
	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/log"
)

type precomputeConfig struct {
	parallelThreshold int
	skipCached        bool
}

// PrecomputeOption configures Precompute.
type PrecomputeOption func(*precomputeConfig)

// WithParallelThreshold はキー数が threshold を超えた場合にランキング計算を
// CPU コア数のワーカーに分割します。Cache への Put は常に呼び出し元の
// goroutine で行われます。既定では逐次実行です。
func WithParallelThreshold(threshold int) PrecomputeOption {
	return func(cfg *precomputeConfig) {
		cfg.parallelThreshold = threshold
	}
}

// WithRecompute は既にキャッシュ済みのキーも計算し直して上書きします。
func WithRecompute() PrecomputeOption {
	return func(cfg *precomputeConfig) {
		cfg.skipCached = false
	}
}

// Precompute は keys の各クエリ点について近傍ランキングを計算し、
// knn の Cache に保存します。保存した件数を返します。
//
// 計算に失敗したキーがあっても残りのキーは保存され、エラーはまとめて返されます。
//
//	missing := knn.Cache().MissingKeys(knn.NumPoints())
//	n, err := neighbors.Precompute(knn, neighbors.Indices(missing), neighbors.WithParallelThreshold(1000))
func Precompute(knn *KNearestNeighbors, keys []int, opts ...PrecomputeOption) (int, error) {
	if knn == nil {
		return 0, errors.NewValueError("neighbors.Precompute", "estimator must not be nil")
	}
	cfg := &precomputeConfig{
		parallelThreshold: math.MaxInt,
		skipCached:        true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	todo := make([]int, 0, len(keys))
	for _, key := range keys {
		if cfg.skipCached && knn.cache.ContainsKey(key) {
			continue
		}
		todo = append(todo, key)
	}

	start := time.Now()
	rankings := make([][]int, len(todo))
	failures := make([]error, len(todo))

	// 各ワーカーは自分の範囲のスロットにだけ書き込みます。
	parallel.ParallelizeWithThreshold(len(todo), cfg.parallelThreshold, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			ranking, err := knn.Rank(todo[i])
			if err != nil {
				failures[i] = errors.Wrapf(err, "precompute key %d", todo[i])
				continue
			}
			rankings[i] = ranking[:min(Capacity, len(ranking))]
		}
	})

	stored := 0
	var errs []error
	for i, key := range todo {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			continue
		}
		if err := knn.cache.Put(key, rankings[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		stored++
	}

	knn.logger.Info("neighbour rankings precomputed",
		log.OperationKey, log.OperationPrecompute,
		log.CacheRecordsKey, stored,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return stored, errors.Join(errs...)
}
