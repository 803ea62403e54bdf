// Package regression はカーネル重み付きの推定器と、その評価・バンド幅調整を提供する
package regression

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/core/model"
	"github.com/YuminosukeSato/kernreg/distance"
	"github.com/YuminosukeSato/kernreg/hp"
	"github.com/YuminosukeSato/kernreg/kernel"
	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/monitor"
)

// WeightedAverage はカーネル重み付き平均 (Nadaraya-Watson 推定) です。
// クエリ点自身は、座標が同じ点が他にあっても重みの和から除外されます。
type WeightedAverage struct{}

// Apply は Σw_i*y_i / Σw_i を返します。w_i = k(d, points[i], points[queryIndex], h)。
// 全ての重みが0の場合は ErrDivideByZero を包んだ *errors.ModelError を返します。
func (WeightedAverage) Apply(d distance.Distance, k kernel.Kernel, h hp.Hp, points mat.Matrix, queryIndex int, labels mat.Vector) (float64, error) {
	const op = "WeightedAverage.Apply"
	if _, err := h.RequireWidth(op); err != nil {
		return 0, err
	}
	n, err := validateInputs(op, d, k, points, labels)
	if err != nil {
		return 0, err
	}
	if queryIndex < 0 || queryIndex >= n {
		return 0, errors.NewValidationError("queryIndex", "index out of range", queryIndex)
	}

	var weightSum, weighted float64
	for i := 0; i < n; i++ {
		if i == queryIndex {
			continue
		}
		w, err := k.ApplyRows(d, points, i, queryIndex, h)
		if err != nil {
			return 0, err
		}
		weightSum += w
		weighted += w * labels.AtVec(i)
	}

	if weightSum == 0 {
		return 0, errors.NewModelError(op, "all kernel weights are zero", errors.ErrDivideByZero)
	}
	monitor.Predictions.WithLabelValues("WeightedAverage").Inc()
	return weighted / weightSum, nil
}

// Bind は d, k, points, labels を固定した Estimator を返します。
func (w WeightedAverage) Bind(d distance.Distance, k kernel.Kernel, points mat.Matrix, labels mat.Vector) model.EstimatorFunc {
	return func(h hp.Hp, queryIndex int) (float64, error) {
		return w.Apply(d, k, h, points, queryIndex, labels)
	}
}

// validateInputs は共通の引数チェックを行い、訓練点の数を返します。
func validateInputs(op string, d distance.Distance, k kernel.Kernel, points mat.Matrix, labels mat.Vector) (int, error) {
	if d == nil {
		return 0, errors.NewValueError(op, "distance must not be nil")
	}
	if k == nil {
		return 0, errors.NewValueError(op, "kernel must not be nil")
	}
	if points == nil || labels == nil {
		return 0, errors.NewValueError(op, "points and labels must not be nil")
	}
	n, c := points.Dims()
	if n == 0 || c == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if labels.Len() != n {
		return 0, errors.NewDimensionError(op, n, labels.Len(), 0)
	}
	return n, nil
}
