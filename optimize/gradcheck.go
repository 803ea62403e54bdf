// Package optimize は勾配の数値検証と確率的勾配降下法を提供します。
//
// 解析的な勾配は学習に使う前に CheckGradient で検証してください。誤った勾配は
// エラーにならずに最適化結果を静かに壊します。
package optimize

import (
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/log"
	"github.com/YuminosukeSato/kernreg/pkg/monitor"
)

// LossFunc は params における example 番目のサンプルの損失を返します。
type LossFunc func(params mat.Vector, example int) float64

// GradientFunc は params における example 番目のサンプルの損失の勾配を返します。
// 返すベクトルの長さは params と同じでなければなりません。
type GradientFunc func(params mat.Vector, example int) mat.Vector

// DefaultEpsilon is the default finite-difference step.
const DefaultEpsilon = 1e-4

type checkConfig struct {
	epsilon float64
	logger  log.Logger
}

// CheckOption configures CheckGradient.
type CheckOption func(*checkConfig)

// WithEpsilon sets the finite-difference step.
func WithEpsilon(eps float64) CheckOption {
	return func(cfg *checkConfig) {
		cfg.epsilon = eps
	}
}

// WithCheckLogger sets the logger used to report the result.
func WithCheckLogger(logger log.Logger) CheckOption {
	return func(cfg *checkConfig) {
		cfg.logger = logger
	}
}

// CheckGradient は各サンプル・各座標 j について中心差分
// (loss(w+εe_j) - loss(w-εe_j)) / 2ε と grad の j 成分を比較します。
// 差の絶対値が tolerance を超えると *errors.GradientMismatchError を返します。
//
// 摂動は params のコピーに対して行うため、呼び出し側の params は変更されません。
// loss や grad の panic は *errors.PanicError として返されます。
func CheckGradient(loss LossFunc, grad GradientFunc, params mat.Vector, examples []int, tolerance float64, opts ...CheckOption) (err error) {
	const op = "optimize.CheckGradient"
	defer errors.Recover(&err, op)

	cfg := &checkConfig{epsilon: DefaultEpsilon, logger: log.GetLogger()}
	for _, opt := range opts {
		opt(cfg)
	}

	if loss == nil || grad == nil {
		return errors.NewValueError(op, "loss and gradient functions must not be nil")
	}
	if params == nil || params.Len() == 0 {
		return errors.NewValueError(op, "params must not be empty")
	}
	if len(examples) == 0 {
		return errors.NewValueError(op, "at least one example is required")
	}
	if tolerance < 0 {
		return errors.NewValidationError("tolerance", "must not be negative", tolerance)
	}
	if !(cfg.epsilon > 0) {
		return errors.NewValidationError("epsilon", "must be positive", cfg.epsilon)
	}

	dim := params.Len()
	w := mat.VecDenseCopyOf(params)
	for _, example := range examples {
		analytic := grad(w, example)
		if analytic == nil {
			return errors.NewValueError(op, "gradient function returned nil")
		}
		if analytic.Len() != dim {
			return errors.NewDimensionError(op, dim, analytic.Len(), 0)
		}

		for j := 0; j < dim; j++ {
			numeric := centralDifference(loss, w, example, j, cfg.epsilon)
			if !scalar.EqualWithinAbs(analytic.AtVec(j), numeric, tolerance) {
				monitor.GradientChecks.WithLabelValues(monitor.ResultFail).Inc()
				mismatch := errors.NewGradientMismatchError(j, example, analytic.AtVec(j), numeric, tolerance)
				cfg.logger.Error("gradient check failed", mismatch,
					log.OperationKey, log.OperationCheck,
					log.ErrorCodeKey, log.ErrorGradientMismatch,
				)
				return mismatch
			}
		}
	}

	monitor.GradientChecks.WithLabelValues(monitor.ResultPass).Inc()
	cfg.logger.Debug("gradient check passed",
		log.OperationKey, log.OperationCheck,
		log.SamplesKey, len(examples),
		log.FeaturesKey, dim,
	)
	return nil
}

// centralDifference は w の j 成分を ±eps 摂動して差分商を返し、w を元に戻します。
// 分母には実際に表現された摂動後の値の差を使います。
func centralDifference(loss LossFunc, w *mat.VecDense, example, j int, eps float64) float64 {
	orig := w.AtVec(j)
	defer w.SetVec(j, orig)

	w.SetVec(j, orig+eps)
	plusAt := w.AtVec(j)
	plus := loss(w, example)

	w.SetVec(j, orig-eps)
	minusAt := w.AtVec(j)
	minus := loss(w, example)

	return (plus - minus) / (plusAt - minusAt)
}
