// Package distance は特徴ベクトル間の距離関数を提供します。
//
// 距離関数は閉じた集合 (現在は Euclidean のみ) で、Distance インターフェース
// 越しに利用します。名前からの選択には Parse を使います。
package distance

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

// Distance は2点間の非負の距離を計算します。
// 実装は対称 (Apply(a, b) == Apply(b, a)) で、Apply(a, a) == 0 を満たします。
type Distance interface {
	// Apply は2つの点の距離を返します。
	Apply(a, b mat.Vector) (float64, error)
	// ApplyRows は points の i 行目と j 行目の距離を返します。
	ApplyRows(points mat.Matrix, i, j int) (float64, error)
	// Name は Parse が受け付ける名前を返します。
	Name() string
}

// NameEuclidean は Euclidean の名前です。
const NameEuclidean = "euclidean"

// Euclidean はユークリッド距離 sqrt(Σ(a_i-b_i)^2) です。
type Euclidean struct{}

// Apply はユークリッド距離を計算します。
func (Euclidean) Apply(a, b mat.Vector) (float64, error) {
	if a == nil || b == nil {
		return 0, errors.NewValueError("Euclidean.Apply", "point must not be nil")
	}
	if a.Len() != b.Len() {
		return 0, errors.NewDimensionError("Euclidean.Apply", a.Len(), b.Len(), 1)
	}
	var sum float64
	for i := 0; i < a.Len(); i++ {
		diff := a.AtVec(i) - b.AtVec(i)
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}

// ApplyRows は行列の2行間のユークリッド距離を計算します。
func (e Euclidean) ApplyRows(points mat.Matrix, i, j int) (float64, error) {
	a, b, err := Rows(points, i, j)
	if err != nil {
		return 0, err
	}
	return e.Apply(a, b)
}

// Name returns "euclidean".
func (Euclidean) Name() string { return NameEuclidean }

// Parse は名前から Distance を返します。大文字小文字は区別しません。
func Parse(name string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameEuclidean:
		return Euclidean{}, nil
	default:
		return nil, errors.NewValidationError("distance", "unknown distance", name)
	}
}

// Row は points の i 行目をベクトルとして返します。
// *mat.Dense などの RowViewer はコピーせずにビューを返します。
func Row(points mat.Matrix, i int) (mat.Vector, error) {
	if points == nil {
		return nil, errors.NewValueError("distance.Row", "points must not be nil")
	}
	r, c := points.Dims()
	if i < 0 || i >= r {
		return nil, errors.NewValidationError("row", "index out of range", i)
	}
	if rv, ok := points.(mat.RowViewer); ok {
		return rv.RowView(i), nil
	}
	row := mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		row.SetVec(j, points.At(i, j))
	}
	return row, nil
}

// Rows は points の i 行目と j 行目を返します。
func Rows(points mat.Matrix, i, j int) (mat.Vector, mat.Vector, error) {
	a, err := Row(points, i)
	if err != nil {
		return nil, nil, err
	}
	b, err := Row(points, j)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
