package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/core/model"
	"github.com/YuminosukeSato/kernreg/hp"
	"github.com/YuminosukeSato/kernreg/metrics"
	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/log"
)

const (
	// lowerCutoffRatio は探索区間の下端を initial1DCutoff に対する比で与えます。
	lowerCutoffRatio = 1e-3
	// DefaultTuneIterations is the default number of golden-section steps.
	DefaultTuneIterations = 40
)

var invPhi = (math.Sqrt(5) - 1) / 2

// TuneResult は TuneBandwidth の結果です。
type TuneResult struct {
	Hp          hp.Hp
	Bandwidth   float64
	Report      metrics.Report
	Evaluations int
}

// TuneBandwidth は (0, initial1DCutoff] の範囲で leave-one-out MSE を最小にする
// バンド幅を黄金分割探索で求め、bandwidth を置き換えた Hp を返します。
//
// 重みが全て0になる、または計画行列が特異になるバンド幅は損失 +Inf として扱います。
// 最適値が区間の端にある場合は ConvergenceWarning を出します。
func TuneBandwidth(est model.Estimator, h hp.Hp, labels mat.Vector, iterations int, opts ...EvalOption) (TuneResult, error) {
	const op = "regression.TuneBandwidth"
	cfg := newEvalConfig(opts)
	hi, err := h.RequireInitial1DCutoff(op)
	if err != nil {
		return TuneResult{}, err
	}
	if iterations < 1 {
		iterations = DefaultTuneIterations
	}
	lo := hi * lowerCutoffRatio

	best := TuneResult{Bandwidth: math.NaN()}
	bestLoss := math.Inf(1)
	loss := func(bw float64) (float64, error) {
		candidate := h.ToBuilder().Bandwidth(bw).Build()
		report, err := LeaveOneOut(est, candidate, labels, opts...)
		best.Evaluations++
		if err != nil {
			if errors.Is(err, errors.ErrDivideByZero) || errors.Is(err, errors.ErrSingularMatrix) {
				return math.Inf(1), nil
			}
			return 0, err
		}
		if report.MSE < bestLoss {
			bestLoss = report.MSE
			best.Hp = candidate
			best.Bandwidth = bw
			best.Report = report
		}
		return report.MSE, nil
	}

	a, b := lo, hi
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, err := loss(c)
	if err != nil {
		return TuneResult{}, err
	}
	fd, err := loss(d)
	if err != nil {
		return TuneResult{}, err
	}
	for i := 0; i < iterations; i++ {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			if fc, err = loss(c); err != nil {
				return TuneResult{}, err
			}
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			if fd, err = loss(d); err != nil {
				return TuneResult{}, err
			}
		}
	}

	if math.IsNaN(best.Bandwidth) {
		return TuneResult{}, errors.NewModelError(op, "no bandwidth in range produced finite weights", errors.ErrDivideByZero)
	}

	// 端から区間幅の1%以内なら、区間外に最適値がある可能性が高い。
	margin := (hi - lo) * 0.01
	if best.Bandwidth-lo < margin || hi-best.Bandwidth < margin {
		errors.Warn(errors.NewConvergenceWarning("TuneBandwidth", best.Evaluations,
			"optimum lies at the edge of the search interval; consider changing initial_1d_cutoff"))
	}

	cfg.logger.Info("bandwidth tuned",
		log.OperationKey, log.OperationTune,
		log.BandwidthKey, best.Bandwidth,
		log.LossKey, best.Report.MSE,
		log.StepKey, best.Evaluations,
	)
	return best, nil
}
