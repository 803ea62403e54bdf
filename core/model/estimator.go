package model

import "github.com/YuminosukeSato/kernreg/hp"

// Estimator は訓練点のインデックスを受け取り、その点の予測値を返すモデルのインターフェース
//
// クエリ点自身は予測に使われないため、Estimator を全インデックスに適用すると
// leave-one-out 予測になる。
type Estimator interface {
	// Estimate は queryIndex の予測値を返す
	Estimate(h hp.Hp, queryIndex int) (float64, error)
}

// EstimatorFunc は関数を Estimator として扱うためのアダプタ
//
//	est := model.EstimatorFunc(knn.Apply)
type EstimatorFunc func(h hp.Hp, queryIndex int) (float64, error)

// Estimate は f(h, queryIndex) を呼び出す
func (f EstimatorFunc) Estimate(h hp.Hp, queryIndex int) (float64, error) {
	return f(h, queryIndex)
}
