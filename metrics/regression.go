// Package metrics は推定器の予測精度を評価する回帰指標を提供する
package metrics

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

// residuals は yTrue - yPred を返す
func residuals(op string, yTrue, yPred mat.Vector) (*mat.VecDense, error) {
	if yTrue == nil || yPred == nil {
		return nil, errors.NewValueError(op, "vector must not be nil")
	}
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}

	diff := mat.NewVecDense(n, nil)
	diff.SubVec(yTrue, yPred)
	return diff, nil
}

// MSE は平均二乗誤差 (1/n)Σ(yTrue-yPred)² を計算する
func MSE(yTrue, yPred mat.Vector) (float64, error) {
	diff, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return mat.Dot(diff, diff) / float64(diff.Len()), nil
}

// RMSE は平方根平均二乗誤差を計算する
func RMSE(yTrue, yPred mat.Vector) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差 (1/n)Σ|yTrue-yPred| を計算する
func MAE(yTrue, yPred mat.Vector) (float64, error) {
	diff, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return mat.Norm(diff, 1) / float64(diff.Len()), nil
}

// R2Score は決定係数 1 - RSS/TSS を計算する
//
// yTrue が定数で TSS が0の場合、予測が完全一致なら1、そうでなければ
// UndefinedMetricWarning を出して0を返す。
func R2Score(yTrue, yPred mat.Vector) (float64, error) {
	diff, err := residuals("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	values := make([]float64, yTrue.Len())
	for i := range values {
		values[i] = yTrue.AtVec(i)
	}
	mean := stat.Mean(values, nil)

	var tss float64
	for _, v := range values {
		tss += (v - mean) * (v - mean)
	}
	rss := mat.Dot(diff, diff)

	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "no variance in yTrue", 0))
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// Report は回帰指標をまとめたもの
type Report struct {
	N    int
	MSE  float64
	RMSE float64
	MAE  float64
	R2   float64
}

// MarshalZerologObject はzerologのイベントに指標を追加する
func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Int("n", r.N).
		Float64("mse", r.MSE).
		Float64("rmse", r.RMSE).
		Float64("mae", r.MAE).
		Float64("r2", r.R2)
}

// Evaluate は全ての回帰指標を計算する
func Evaluate(yTrue, yPred mat.Vector) (Report, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	return Report{
		N:    yTrue.Len(),
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  mae,
		R2:   r2,
	}, nil
}
