package optimize

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/core/model"
	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/log"
	"github.com/YuminosukeSato/kernreg/pkg/monitor"
)

// ExampleHook は各サンプルの処理後に呼ばれます。true を返すとその場で停止します。
type ExampleHook func(s *StochasticGradient, input mat.Vector, label float64) bool

// IterationHook は各エポックの終わりに学習率の減衰後に呼ばれます。
// epoch はこのオプティマイザで完了したエポックの通し番号 (0始まり) です。
// true を返すと次のエポックを始めずに停止します。
type IterationHook func(s *StochasticGradient, epoch int) bool

// Config は StochasticGradient の構成です。
type Config struct {
	// Inputs は1行1サンプルの訓練入力です。
	Inputs mat.Matrix
	// Labels は Inputs の各行に対応するラベルです。
	Labels mat.Vector
	// Dimension はパラメータベクトルの長さです。
	Dimension int
	// Gradient はサンプル1件の勾配を返します。
	Gradient GradientFunc
	// LearningRate は初期学習率です。
	LearningRate float64
	// Decay は各エポック後に学習率に掛ける係数です。1 で減衰なし。
	Decay float64
	// Shuffle が true なら各エポックで新しいランダム順序を使います。
	Shuffle bool
	// OnExample と OnIteration は nil でもかまいません。
	OnExample   ExampleHook
	OnIteration IterationHook
	// Averaged が true ならエポック内の勾配の算術平均でエポック末に1回だけ更新します。
	Averaged bool
}

// StochasticGradient はサンプルごとの勾配でパラメータを更新する最適化器です。
//
// 収束判定は行いません。停止するのは要求エポック数を終えたときか、
// フックが停止を要求したときだけです。1つのインスタンスを複数の
// goroutine から同時に使ってはいけません。
type StochasticGradient struct {
	cfg          Config
	id           string
	params       *mat.VecDense
	learningRate float64
	epoch        int
	rng          *rand.Rand
	state        *model.StateManager
	logger       log.Logger
}

// Option configures a StochasticGradient.
type Option func(*StochasticGradient)

// WithRandomState は shuffle の乱数シードを固定します。
func WithRandomState(seed uint64) Option {
	return func(s *StochasticGradient) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithInitialParameters は初期パラメータを設定します (既定はゼロベクトル)。
// 値はコピーされます。
func WithInitialParameters(params mat.Vector) Option {
	return func(s *StochasticGradient) {
		s.params = mat.VecDenseCopyOf(params)
	}
}

// WithLogger sets the logger. The default is log.GetLogger().
func WithLogger(logger log.Logger) Option {
	return func(s *StochasticGradient) {
		s.logger = logger
	}
}

// NewStochasticGradient は構成を検証して最適化器を作成します。
func NewStochasticGradient(cfg Config, opts ...Option) (*StochasticGradient, error) {
	const op = "NewStochasticGradient"
	if cfg.Inputs == nil || cfg.Labels == nil {
		return nil, errors.NewValueError(op, "inputs and labels must not be nil")
	}
	if cfg.Gradient == nil {
		return nil, errors.NewValueError(op, "gradient function must not be nil")
	}
	rows, _ := cfg.Inputs.Dims()
	if rows == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if cfg.Labels.Len() != rows {
		return nil, errors.NewDimensionError(op, rows, cfg.Labels.Len(), 0)
	}
	if cfg.Dimension < 1 {
		return nil, errors.NewValidationError("Dimension", "must be positive", cfg.Dimension)
	}
	if !(cfg.LearningRate > 0) {
		return nil, errors.NewValidationError("LearningRate", "must be positive", cfg.LearningRate)
	}
	if !(cfg.Decay > 0) {
		return nil, errors.NewValidationError("Decay", "must be positive", cfg.Decay)
	}

	s := &StochasticGradient{
		cfg:          cfg,
		id:           uuid.NewString(),
		learningRate: cfg.LearningRate,
		state:        model.NewStateManager(),
		logger:       log.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.params == nil {
		s.params = mat.NewVecDense(cfg.Dimension, nil)
	}
	if s.params.Len() != cfg.Dimension {
		return nil, errors.NewDimensionError(op, cfg.Dimension, s.params.Len(), 0)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.logger = s.logger.With(
		log.ModelNameKey, "StochasticGradient",
		log.EstimatorIDKey, s.id,
		log.SamplesKey, rows,
		log.LearningRateKey, cfg.LearningRate,
	)
	return s, nil
}

// Parameters は現在のパラメータベクトルを返します。
// コピーではないため、次の Iterate で書き換わります。
func (s *StochasticGradient) Parameters() *mat.VecDense { return s.params }

// LearningRate returns the current, decayed learning rate.
func (s *StochasticGradient) LearningRate() float64 { return s.learningRate }

// Epoch returns the number of completed epochs.
func (s *StochasticGradient) Epoch() int { return s.epoch }

// State returns the optimizer state.
func (s *StochasticGradient) State() model.OptimizerState { return s.state.State() }

// Steps returns the number of per-example gradient evaluations so far.
func (s *StochasticGradient) Steps() int {
	_, steps := s.state.Progress()
	return steps
}

// Iterate は訓練データ全体を numberEpochs 回走査し、パラメータベクトルを返します。
// フックが停止を要求した場合はそこで打ち切ります。平均化モードでエポック途中に
// 停止した場合、そのエポックの部分和は適用されません。
//
// エポック後にパラメータが NaN/Inf になった場合は *errors.NumericalInstabilityError、
// 勾配関数やフックの panic は *errors.PanicError を返します。
func (s *StochasticGradient) Iterate(numberEpochs int) (params *mat.VecDense, err error) {
	const op = "StochasticGradient.Iterate"
	if numberEpochs < 0 {
		return s.params, errors.NewValidationError("numberEpochs", "must not be negative", numberEpochs)
	}
	if err := s.state.Transition(model.Iterating); err != nil {
		return s.params, errors.WithStack(err)
	}
	defer func() {
		_ = s.state.Transition(model.Stopped)
		params = s.params
	}()
	defer errors.Recover(&err, op)

	n := s.cfg.Labels.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	var sum *mat.VecDense
	if s.cfg.Averaged {
		sum = mat.NewVecDense(s.cfg.Dimension, nil)
	}

	for e := 0; e < numberEpochs; e++ {
		if s.cfg.Shuffle {
			s.rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		for _, idx := range order {
			g := s.cfg.Gradient(s.params, idx)
			if g == nil || g.Len() != s.cfg.Dimension {
				got := 0
				if g != nil {
					got = g.Len()
				}
				return s.params, errors.NewDimensionError(op, s.cfg.Dimension, got, 0)
			}
			if s.cfg.Averaged {
				sum.AddVec(sum, g)
			} else {
				s.params.AddScaledVec(s.params, -s.learningRate, g)
			}
			s.state.RecordStep()
			monitor.OptimizerSteps.Inc()

			if s.cfg.OnExample != nil && s.cfg.OnExample(s, row(s.cfg.Inputs, idx), s.cfg.Labels.AtVec(idx)) {
				s.logger.Info("stopped by example hook",
					log.OperationKey, log.OperationIterate,
					log.EpochKey, s.epoch,
					log.StepKey, s.Steps(),
				)
				return s.params, nil
			}
		}

		if s.cfg.Averaged {
			s.params.AddScaledVec(s.params, -s.learningRate/float64(n), sum)
			sum.Zero()
		}
		if err := errors.CheckNumericalStability(op, s.params.RawVector().Data, s.epoch); err != nil {
			s.logger.Error("parameters diverged", err,
				log.OperationKey, log.OperationIterate,
				log.EpochKey, s.epoch,
			)
			return s.params, err
		}

		s.learningRate *= s.cfg.Decay
		epoch := s.epoch
		s.epoch++
		s.state.RecordEpoch()
		monitor.OptimizerEpochs.Inc()
		if s.logger.Enabled(context.Background(), log.LevelDebug) {
			s.logger.Debug("epoch finished",
				log.OperationKey, log.OperationIterate,
				log.EpochKey, epoch,
				log.LearningRateKey, s.learningRate,
			)
		}

		if s.cfg.OnIteration != nil && s.cfg.OnIteration(s, epoch) {
			s.logger.Info("stopped by iteration hook",
				log.OperationKey, log.OperationIterate,
				log.EpochKey, epoch,
			)
			return s.params, nil
		}
	}
	return s.params, nil
}

func row(m mat.Matrix, i int) mat.Vector {
	if rv, ok := m.(mat.RowViewer); ok {
		return rv.RowView(i)
	}
	data := mat.Row(nil, i, m)
	return mat.NewVecDense(len(data), data)
}
