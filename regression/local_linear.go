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

// LocalLinearRegression はクエリ位置の周りで重み付き最小二乗法により
// y ≈ β·[1, x] を当てはめ、クエリ位置での値を返します。
// WeightedAverage は0次の当てはめに相当します。
type LocalLinearRegression struct{}

// Apply は全訓練点を w_i = k(d, points[i], query, h) で重み付けして当てはめます。
// 重み付き計画行列が特異な場合は ErrSingularMatrix を包んだ *errors.ModelError を返します。
func (l LocalLinearRegression) Apply(d distance.Distance, k kernel.Kernel, h hp.Hp, points mat.Matrix, query mat.Vector, labels mat.Vector) (float64, error) {
	return l.fit("LocalLinearRegression.Apply", d, k, h, points, query, labels, -1)
}

// ApplyIndex は queryIndex 行目をクエリ位置とし、その点を当てはめから除外します。
func (l LocalLinearRegression) ApplyIndex(d distance.Distance, k kernel.Kernel, h hp.Hp, points mat.Matrix, queryIndex int, labels mat.Vector) (float64, error) {
	const op = "LocalLinearRegression.ApplyIndex"
	if points == nil {
		return 0, errors.NewValueError(op, "points must not be nil")
	}
	query, err := distance.Row(points, queryIndex)
	if err != nil {
		return 0, err
	}
	return l.fit(op, d, k, h, points, query, labels, queryIndex)
}

// Bind は d, k, points, labels を固定した leave-one-out の Estimator を返します。
func (l LocalLinearRegression) Bind(d distance.Distance, k kernel.Kernel, points mat.Matrix, labels mat.Vector) model.EstimatorFunc {
	return func(h hp.Hp, queryIndex int) (float64, error) {
		return l.ApplyIndex(d, k, h, points, queryIndex, labels)
	}
}

// fit は正規方程式 (XᵀWX)β = XᵀWy を解きます。exclude >= 0 の行は使いません。
func (LocalLinearRegression) fit(op string, d distance.Distance, k kernel.Kernel, h hp.Hp, points mat.Matrix, query mat.Vector, labels mat.Vector, exclude int) (float64, error) {
	if _, err := h.RequireWidth(op); err != nil {
		return 0, err
	}
	n, err := validateInputs(op, d, k, points, labels)
	if err != nil {
		return 0, err
	}
	if query == nil {
		return 0, errors.NewValueError(op, "query must not be nil")
	}
	_, c := points.Dims()
	if query.Len() != c {
		return 0, errors.NewDimensionError(op, c, query.Len(), 1)
	}

	// z_i = [1, x_i]
	p := c + 1
	xtwx := mat.NewDense(p, p, nil)
	xtwy := mat.NewVecDense(p, nil)
	z := mat.NewVecDense(p, nil)
	for i := 0; i < n; i++ {
		if i == exclude {
			continue
		}
		row, err := distance.Row(points, i)
		if err != nil {
			return 0, err
		}
		w, err := k.Apply(d, row, query, h)
		if err != nil {
			return 0, err
		}
		if w == 0 {
			continue
		}
		z.SetVec(0, 1)
		for j := 0; j < c; j++ {
			z.SetVec(j+1, row.AtVec(j))
		}
		// XᵀWX += w z zᵀ, XᵀWy += w y z
		xtwx.RankOne(xtwx, w, z, z)
		xtwy.AddScaledVec(xtwy, w*labels.AtVec(i), z)
	}

	var inv mat.Dense
	if err := inv.Inverse(xtwx); err != nil {
		return 0, errors.NewModelError(op, "singular weighted design matrix", errors.ErrSingularMatrix)
	}
	beta := mat.NewVecDense(p, nil)
	beta.MulVec(&inv, xtwy)

	pred := beta.AtVec(0)
	for j := 0; j < c; j++ {
		pred += beta.AtVec(j+1) * query.AtVec(j)
	}
	monitor.Predictions.WithLabelValues("LocalLinearRegression").Inc()
	return pred, nil
}
