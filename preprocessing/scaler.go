// Package preprocessing は距離計算の前に特徴量のスケールを揃える変換を提供する
//
// ユークリッド距離は特徴量の単位に敏感なため、単位の異なる特徴量を持つ点集合は
// 近傍探索やカーネル推定の前に標準化しておく。
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

// minScale より小さい標準偏差は定数特徴量とみなし、スケールを1にする
const minScale = 1e-8

// StandardScaler は各特徴量を平均0、標準偏差1に変換する
type StandardScaler struct {
	// Mean は各特徴量の平均値
	Mean []float64
	// Scale は各特徴量の標準偏差 (母標準偏差)
	Scale []float64
}

// NewStandardScaler は未学習の StandardScaler を作成する
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fitted reports whether Fit has been called successfully.
func (s *StandardScaler) Fitted() bool {
	return s.Mean != nil
}

// Fit は各列の平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		m, variance := stat.PopMeanVariance(col, nil)
		mean[j] = m
		scale[j] = sqrtOrOne(variance)
	}
	s.Mean, s.Scale = mean, scale
	return nil
}

// Transform は (X - Mean) / Scale を返す
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	return s.apply("StandardScaler.Transform", X, func(v float64, j int) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	})
}

// InverseTransform は X*Scale + Mean を返す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	return s.apply("StandardScaler.InverseTransform", X, func(v float64, j int) float64 {
		return v*s.Scale[j] + s.Mean[j]
	})
}

// FitTransform は Fit の後に同じデータを Transform する
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *StandardScaler) String() string {
	if !s.Fitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", len(s.Mean))
}

func (s *StandardScaler) apply(op string, X mat.Matrix, fn func(v float64, j int) float64) (*mat.Dense, error) {
	if !s.Fitted() {
		return nil, errors.NewModelError(op, "scaler is not fitted", nil)
	}
	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, errors.NewDimensionError(op, len(s.Mean), c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 { return fn(v, j) }, X)
	return result, nil
}

func sqrtOrOne(variance float64) float64 {
	sd := math.Sqrt(variance)
	if sd < minScale {
		return 1
	}
	return sd
}
