package regression

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/core/model"
	"github.com/YuminosukeSato/kernreg/hp"
	"github.com/YuminosukeSato/kernreg/metrics"
	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/log"
)

type evalConfig struct {
	logger log.Logger
}

// EvalOption configures LeaveOneOut and TuneBandwidth.
type EvalOption func(*evalConfig)

// WithLogger sets the logger. The default is log.GetLogger().
func WithLogger(logger log.Logger) EvalOption {
	return func(cfg *evalConfig) {
		cfg.logger = logger
	}
}

func newEvalConfig(opts []EvalOption) *evalConfig {
	cfg := &evalConfig{logger: log.GetLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LeaveOneOut は est を先頭から numberTestSamples 個 (未設定なら全て) の
// インデックスに適用し、予測とラベルの回帰指標を返します。
// Estimator はクエリ点自身を使わないため、これは leave-one-out 評価になります。
func LeaveOneOut(est model.Estimator, h hp.Hp, labels mat.Vector, opts ...EvalOption) (metrics.Report, error) {
	const op = "regression.LeaveOneOut"
	cfg := newEvalConfig(opts)
	if est == nil || labels == nil {
		return metrics.Report{}, errors.NewValueError(op, "estimator and labels must not be nil")
	}

	n := labels.Len()
	m := n
	if samples, ok := h.NumberTestSamples(); ok {
		if samples < 1 || samples > n {
			return metrics.Report{}, errors.NewValidationError(hp.FieldNumberTestSamples, "must be between 1 and the number of points", samples)
		}
		m = samples
	}

	start := time.Now()
	yTrue := mat.NewVecDense(m, nil)
	yPred := mat.NewVecDense(m, nil)
	for q := 0; q < m; q++ {
		pred, err := est.Estimate(h, q)
		if err != nil {
			return metrics.Report{}, errors.Wrapf(err, "leave-one-out prediction for index %d", q)
		}
		yTrue.SetVec(q, labels.AtVec(q))
		yPred.SetVec(q, pred)
	}

	report, err := metrics.Evaluate(yTrue, yPred)
	if err != nil {
		return metrics.Report{}, err
	}
	cfg.logger.Debug("leave-one-out evaluation finished",
		log.OperationKey, log.OperationEvaluate,
		log.HyperParamsKey, h.String(),
		log.SamplesKey, m,
		log.LossKey, report.MSE,
		log.R2ScoreKey, report.R2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return report, nil
}
