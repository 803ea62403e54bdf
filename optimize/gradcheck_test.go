package optimize

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/log"
)

// 正則化付き二乗損失 0.5(w·x_e - y_e)² + 0.5λ|w|²
var (
	checkInputs = mat.NewDense(3, 2, []float64{
		1, 2,
		-0.5, 3,
		2, -1,
	})
	checkLabels = []float64{1, -2, 0.5}
	lambda      = 0.1
)

func residual(w mat.Vector, e int) float64 {
	return w.AtVec(0)*checkInputs.At(e, 0) + w.AtVec(1)*checkInputs.At(e, 1) - checkLabels[e]
}

func quadraticLoss(w mat.Vector, e int) float64 {
	r := residual(w, e)
	return 0.5*r*r + 0.5*lambda*mat.Dot(w, w)
}

func correctGradient(w mat.Vector, e int) mat.Vector {
	r := residual(w, e)
	return mat.NewVecDense(2, []float64{
		r*checkInputs.At(e, 0) + lambda*w.AtVec(0),
		r*checkInputs.At(e, 1) + lambda*w.AtVec(1),
	})
}

// missingRegularization は正則化項の勾配を落としている。
func missingRegularization(w mat.Vector, e int) mat.Vector {
	r := residual(w, e)
	return mat.NewVecDense(2, []float64{r * checkInputs.At(e, 0), r * checkInputs.At(e, 1)})
}

func TestCheckGradientAcceptsCorrect(t *testing.T) {
	params := mat.NewVecDense(2, []float64{0.7, -1.3})
	logger, _ := log.NewTestLogger(log.LevelDebug)

	err := CheckGradient(quadraticLoss, correctGradient, params, []int{0, 1, 2}, 1e-10, WithCheckLogger(logger))
	if err != nil {
		t.Fatalf("CheckGradient() error = %v", err)
	}
	if params.AtVec(0) != 0.7 || params.AtVec(1) != -1.3 {
		t.Errorf("params were modified: %v", mat.Formatted(params.T()))
	}
	if !logger.ContainsMessage("gradient check passed") {
		t.Error("expected pass log entry")
	}
}

func TestCheckGradientRejectsWrong(t *testing.T) {
	params := mat.NewVecDense(2, []float64{0.7, -1.3})

	err := CheckGradient(quadraticLoss, missingRegularization, params, []int{0, 1, 2}, 1e-10)

	var mismatch *errors.GradientMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected GradientMismatchError, got %v", err)
	}
	if mismatch.Coordinate != 0 || mismatch.Example != 0 {
		t.Errorf("first mismatch at (%d, %d), want (0, 0)", mismatch.Coordinate, mismatch.Example)
	}
	var valErr *errors.ValueError
	if errors.As(err, &valErr) {
		t.Error("a mismatch must be distinguishable from argument errors")
	}
}

func TestCheckGradientArguments(t *testing.T) {
	params := mat.NewVecDense(2, []float64{1, 1})

	tests := []struct {
		name  string
		check func() error
		want  interface{}
	}{
		{
			name: "wrong gradient length",
			check: func() error {
				short := func(w mat.Vector, e int) mat.Vector { return mat.NewVecDense(1, []float64{0}) }
				return CheckGradient(quadraticLoss, short, params, []int{0}, 1e-6)
			},
			want: new(*errors.DimensionError),
		},
		{
			name:  "nil loss",
			check: func() error { return CheckGradient(nil, correctGradient, params, []int{0}, 1e-6) },
			want:  new(*errors.ValueError),
		},
		{
			name:  "no examples",
			check: func() error { return CheckGradient(quadraticLoss, correctGradient, params, nil, 1e-6) },
			want:  new(*errors.ValueError),
		},
		{
			name:  "negative tolerance",
			check: func() error { return CheckGradient(quadraticLoss, correctGradient, params, []int{0}, -1) },
			want:  new(*errors.ValidationError),
		},
		{
			name: "bad epsilon",
			check: func() error {
				return CheckGradient(quadraticLoss, correctGradient, params, []int{0}, 1e-6, WithEpsilon(0))
			},
			want: new(*errors.ValidationError),
		},
		{
			name: "panicking loss",
			check: func() error {
				boom := func(w mat.Vector, e int) float64 { panic("boom") }
				return CheckGradient(boom, correctGradient, params, []int{0}, 1e-6)
			},
			want: new(*errors.PanicError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.As(err, tt.want) {
				t.Errorf("unexpected error type: %v", err)
			}
		})
	}
}
