package neighbors

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/distance"
	"github.com/YuminosukeSato/kernreg/hp"
	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/log"
	"github.com/YuminosukeSato/kernreg/pkg/monitor"
)

const estimatorName = "KNearestNeighbors"

// KNearestNeighbors は訓練点の中からクエリ点に近い k 点を探し、
// そのラベルの平均を予測値として返します。
//
// クエリは訓練点のインデックスで指定し、クエリ点自身は近傍から除外されます。
// Cache は複数のインスタンスで共有できますが、同時に書き込む場合は
// 呼び出し側で排他制御が必要です。
type KNearestNeighbors struct {
	id       string
	distance distance.Distance
	points   mat.Matrix
	labels   mat.Vector
	cache    *Cache
	logger   log.Logger
}

// Option configures a KNearestNeighbors.
type Option func(*KNearestNeighbors)

// WithLogger sets the logger. The default is log.GetLogger().
func WithLogger(logger log.Logger) Option {
	return func(knn *KNearestNeighbors) {
		knn.logger = logger
	}
}

// NewKNearestNeighbors は k-NN 推定器を作成します。
// cache が nil の場合は専用の空の Cache を使います。
func NewKNearestNeighbors(d distance.Distance, points mat.Matrix, labels mat.Vector, cache *Cache, opts ...Option) (*KNearestNeighbors, error) {
	const op = "NewKNearestNeighbors"
	if d == nil {
		return nil, errors.NewValueError(op, "distance must not be nil")
	}
	if points == nil || labels == nil {
		return nil, errors.NewValueError(op, "points and labels must not be nil")
	}
	r, c := points.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if labels.Len() != r {
		return nil, errors.NewDimensionError(op, r, labels.Len(), 0)
	}

	knn := &KNearestNeighbors{
		id:       uuid.NewString(),
		distance: d,
		points:   points,
		labels:   labels,
		cache:    cache,
		logger:   log.GetLogger(),
	}
	for _, opt := range opts {
		opt(knn)
	}
	if knn.cache == nil {
		knn.cache = NewCache(WithCacheLogger(knn.logger))
	}
	knn.logger = knn.logger.With(
		log.ModelNameKey, estimatorName,
		log.EstimatorIDKey, knn.id,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return knn, nil
}

// ID returns the instance identifier attached to log records.
func (knn *KNearestNeighbors) ID() string { return knn.id }

// Cache returns the cache backing the cached path.
func (knn *KNearestNeighbors) Cache() *Cache { return knn.cache }

// NumPoints returns the number of training points.
func (knn *KNearestNeighbors) NumPoints() int {
	r, _ := knn.points.Dims()
	return r
}

// Rank は queryIndex 以外の全訓練点を距離の昇順に並べたインデックス列を返します。
// 距離が等しい点は元のインデックス順に並びます (安定ソート)。
func (knn *KNearestNeighbors) Rank(queryIndex int) ([]int, error) {
	if err := knn.validateQuery(queryIndex); err != nil {
		return nil, err
	}
	n := knn.NumPoints()

	query, err := distance.Row(knn.points, queryIndex)
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, n-1)
	dists := make([]float64, n)
	for i := 0; i < n; i++ {
		if i == queryIndex {
			continue
		}
		row, err := distance.Row(knn.points, i)
		if err != nil {
			return nil, err
		}
		d, err := knn.distance.Apply(row, query)
		if err != nil {
			return nil, err
		}
		dists[i] = d
		indices = append(indices, i)
	}

	slices.SortStableFunc(indices, func(a, b int) int {
		return cmp.Compare(dists[a], dists[b])
	})
	return indices, nil
}

// ApplyExact はキャッシュを使わずに近傍を計算し、上位 k 点のラベル平均を返します。
func (knn *KNearestNeighbors) ApplyExact(h hp.Hp, queryIndex int) (float64, error) {
	const op = "KNearestNeighbors.ApplyExact"
	k, err := knn.validate(op, h, queryIndex)
	if err != nil {
		return 0, err
	}
	ranking, err := knn.Rank(queryIndex)
	if err != nil {
		return 0, err
	}
	monitor.Predictions.WithLabelValues(estimatorName).Inc()
	return knn.mean(ranking[:k]), nil
}

// Apply はキャッシュ経由で近傍を取得し、上位 k 点のラベル平均を返します。
// キャッシュに k 点以上のリストがあれば再利用し、無ければ計算して保存します。
func (knn *KNearestNeighbors) Apply(h hp.Hp, queryIndex int) (float64, error) {
	neighbors, err := knn.neighbors("KNearestNeighbors.Apply", h, queryIndex)
	if err != nil {
		return 0, err
	}
	monitor.Predictions.WithLabelValues(estimatorName).Inc()
	return knn.mean(neighbors), nil
}

// Neighbors はキャッシュ経由で queryIndex の近い順 k 点のインデックスを返します。
func (knn *KNearestNeighbors) Neighbors(h hp.Hp, queryIndex int) ([]int, error) {
	return knn.neighbors("KNearestNeighbors.Neighbors", h, queryIndex)
}

func (knn *KNearestNeighbors) neighbors(op string, h hp.Hp, queryIndex int) ([]int, error) {
	k, err := knn.validate(op, h, queryIndex)
	if err != nil {
		return nil, err
	}

	if list, ok := knn.cache.Get(queryIndex); ok && len(list) >= k && knn.consistent(list[:k], queryIndex) {
		monitor.CacheLookups.WithLabelValues(monitor.ResultHit).Inc()
		knn.logger.Debug("neighbour ranking reused",
			log.QueryIndexKey, queryIndex,
			log.CacheHitKey, true,
		)
		return list[:k], nil
	}
	monitor.CacheLookups.WithLabelValues(monitor.ResultMiss).Inc()

	ranking, err := knn.Rank(queryIndex)
	if err != nil {
		return nil, err
	}
	if err := knn.cache.Put(queryIndex, ranking[:min(Capacity, len(ranking))]); err != nil {
		return nil, err
	}
	knn.logger.Debug("neighbour ranking cached",
		log.QueryIndexKey, queryIndex,
		log.CacheHitKey, false,
	)
	// k が Capacity を超える場合でも、この呼び出しは完全なランキングから答えます。
	return ranking[:k], nil
}

// validate は設定エラーを引数エラーより先に報告します。
func (knn *KNearestNeighbors) validate(op string, h hp.Hp, queryIndex int) (int, error) {
	k, err := h.RequireK(op)
	if err != nil {
		return 0, err
	}
	if err := knn.validateQuery(queryIndex); err != nil {
		return 0, err
	}
	available := knn.NumPoints() - 1
	if k < 1 || k > available {
		return 0, errors.NewValidationError(hp.FieldK, "must be between 1 and the number of other points", k)
	}
	return k, nil
}

// consistent は読み込んだキャッシュが別の点集合のものでないことを確かめます。
// 範囲外のインデックスやクエリ自身を含むリストはミスとして計算し直します。
func (knn *KNearestNeighbors) consistent(list []int, queryIndex int) bool {
	n := knn.NumPoints()
	for _, i := range list {
		if i < 0 || i >= n || i == queryIndex {
			knn.logger.Warn("cached neighbour ranking does not match the points",
				log.QueryIndexKey, queryIndex,
				log.CacheKeyKey, i,
			)
			return false
		}
	}
	return true
}

func (knn *KNearestNeighbors) validateQuery(queryIndex int) error {
	if queryIndex < 0 || queryIndex >= knn.NumPoints() {
		return errors.NewValidationError("queryIndex", "index out of range", queryIndex)
	}
	return nil
}

func (knn *KNearestNeighbors) mean(indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += knn.labels.AtVec(i)
	}
	return sum / float64(len(indices))
}
