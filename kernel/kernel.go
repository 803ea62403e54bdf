// Package kernel は距離を [0,1] の重みに変換するカーネル関数を提供します。
//
// カーネル幅は hp.Hp の bandwidth (未設定なら sigma) から取得します。
// どちらも無い場合は *errors.ConfigError を返し、既定値で補うことはしません。
package kernel

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/distance"
	"github.com/YuminosukeSato/kernreg/hp"
	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

// Kernel は2点間の距離から重みを計算します。
type Kernel interface {
	// Apply は d(a, b) に対する重みを返します。
	Apply(d distance.Distance, a, b mat.Vector, h hp.Hp) (float64, error)
	// ApplyRows は points の i 行目と j 行目に対する重みを返します。
	ApplyRows(d distance.Distance, points mat.Matrix, i, j int, h hp.Hp) (float64, error)
	// Name は Parse が受け付ける名前を返します。
	Name() string
}

// Kernel names accepted by Parse.
const (
	NameGaussian     = "gaussian"
	NameEpanechnikov = "epanechnikov"
)

// Gaussian は exp(-(d/bandwidth)^2 / 2) です。距離0で重み1になります。
type Gaussian struct{}

// Apply はガウスカーネルの重みを計算します。
func (g Gaussian) Apply(d distance.Distance, a, b mat.Vector, h hp.Hp) (float64, error) {
	dist, bw, err := prepare("Gaussian.Apply", d, a, b, h)
	if err != nil {
		return 0, err
	}
	return g.weight(dist, bw), nil
}

// ApplyRows はガウスカーネルを行インデックスで適用します。
func (g Gaussian) ApplyRows(d distance.Distance, points mat.Matrix, i, j int, h hp.Hp) (float64, error) {
	a, b, err := distance.Rows(points, i, j)
	if err != nil {
		return 0, err
	}
	return g.Apply(d, a, b, h)
}

// Name returns "gaussian".
func (Gaussian) Name() string { return NameGaussian }

func (Gaussian) weight(dist, bw float64) float64 {
	u := dist / bw
	return math.Exp(-u * u / 2)
}

// Epanechnikov は u = d/bandwidth として 0.75(1-u^2) (u < 1)、それ以外は0です。
// u == 1 ちょうどでも0を返します。
type Epanechnikov struct{}

// Apply はエパネチニコフカーネルの重みを計算します。
func (e Epanechnikov) Apply(d distance.Distance, a, b mat.Vector, h hp.Hp) (float64, error) {
	dist, bw, err := prepare("Epanechnikov.Apply", d, a, b, h)
	if err != nil {
		return 0, err
	}
	return e.weight(dist, bw), nil
}

// ApplyRows はエパネチニコフカーネルを行インデックスで適用します。
func (e Epanechnikov) ApplyRows(d distance.Distance, points mat.Matrix, i, j int, h hp.Hp) (float64, error) {
	a, b, err := distance.Rows(points, i, j)
	if err != nil {
		return 0, err
	}
	return e.Apply(d, a, b, h)
}

// Name returns "epanechnikov".
func (Epanechnikov) Name() string { return NameEpanechnikov }

func (Epanechnikov) weight(dist, bw float64) float64 {
	u := dist / bw
	if u >= 1 {
		return 0
	}
	return 0.75 * (1 - u*u)
}

// Parse は名前から Kernel を返します。大文字小文字は区別しません。
func Parse(name string) (Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameGaussian:
		return Gaussian{}, nil
	case NameEpanechnikov:
		return Epanechnikov{}, nil
	default:
		return nil, errors.NewValidationError("kernel", "unknown kernel", name)
	}
}

// prepare は設定と引数を検証してから距離を計算します。
// 設定エラーは距離の計算より先に報告されます。
func prepare(op string, d distance.Distance, a, b mat.Vector, h hp.Hp) (float64, float64, error) {
	bw, err := h.RequireWidth(op)
	if err != nil {
		return 0, 0, err
	}
	if d == nil {
		return 0, 0, errors.NewValueError(op, "distance must not be nil")
	}
	if a == nil || b == nil {
		return 0, 0, errors.NewValueError(op, "point must not be nil")
	}
	dist, err := d.Apply(a, b)
	if err != nil {
		return 0, 0, err
	}
	return dist, bw, nil
}
