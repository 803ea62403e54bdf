package regression

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/distance"
	"github.com/YuminosukeSato/kernreg/hp"
	"github.com/YuminosukeSato/kernreg/kernel"
	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

func column(values ...float64) *mat.Dense {
	return mat.NewDense(len(values), 1, values)
}

func TestWeightedAverageExcludesSelf(t *testing.T) {
	// Point 1 has the same coordinate as the query point 0.
	points := column(0, 0, 1, 3)
	labels := mat.NewVecDense(4, []float64{100, 10, 20, 30})
	h := hp.NewBuilder().Bandwidth(1).Build()

	got, err := WeightedAverage{}.Apply(distance.Euclidean{}, kernel.Gaussian{}, h, points, 0, labels)
	if err != nil {
		t.Fatal(err)
	}

	w1, w2, w3 := 1.0, math.Exp(-0.5), math.Exp(-4.5)
	want := (10*w1 + 20*w2 + 30*w3) / (w1 + w2 + w3)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestWeightedAverageBind(t *testing.T) {
	points := column(0, 1, 2)
	labels := mat.NewVecDense(3, []float64{1, 2, 3})
	est := WeightedAverage{}.Bind(distance.Euclidean{}, kernel.Epanechnikov{}, points, labels)

	// bandwidth 1.5: only the direct neighbours of 1 are in the support, both with u = 2/3.
	got, err := est.Estimate(hp.NewBuilder().Bandwidth(1.5).Build(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("Estimate() = %v, want 2", got)
	}
}

func TestWeightedAverageErrors(t *testing.T) {
	points := column(0, 1, 2, 3)
	labels := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	var wa WeightedAverage

	_, err := wa.Apply(distance.Euclidean{}, kernel.Epanechnikov{}, hp.NewBuilder().Bandwidth(0.5).Build(), points, 1, labels)
	var modelErr *errors.ModelError
	if !errors.As(err, &modelErr) || !errors.Is(err, errors.ErrDivideByZero) {
		t.Errorf("all-zero weights: expected ModelError(ErrDivideByZero), got %v", err)
	}

	// Gaussian weights underflow to exactly zero as well.
	_, err = wa.Apply(distance.Euclidean{}, kernel.Gaussian{}, hp.NewBuilder().Bandwidth(0.01).Build(), points, 1, labels)
	if !errors.Is(err, errors.ErrDivideByZero) {
		t.Errorf("underflow: expected ErrDivideByZero, got %v", err)
	}

	_, err = wa.Apply(distance.Euclidean{}, kernel.Gaussian{}, hp.NewBuilder().K(2).Build(), points, 1, labels)
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("missing bandwidth: expected ConfigError, got %v", err)
	}

	h := hp.NewBuilder().Bandwidth(1).Build()
	_, err = wa.Apply(distance.Euclidean{}, nil, h, points, 1, labels)
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Errorf("nil kernel: expected ValueError, got %v", err)
	}

	_, err = wa.Apply(distance.Euclidean{}, kernel.Gaussian{}, h, points, 4, labels)
	var vErr *errors.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("query out of range: expected ValidationError, got %v", err)
	}

	_, err = wa.Apply(distance.Euclidean{}, kernel.Gaussian{}, h, points, 0, mat.NewVecDense(3, nil))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("label mismatch: expected DimensionError, got %v", err)
	}
}

func TestLocalLinearRecoversLinearFunction(t *testing.T) {
	tests := []struct {
		name   string
		points *mat.Dense
		f      func(x []float64) float64
		query  []float64
		kernel kernel.Kernel
		bw     float64
	}{
		{
			name:   "1d gaussian",
			points: column(0, 0.5, 1, 2, 3.5, 4),
			f:      func(x []float64) float64 { return 3*x[0] + 2 },
			query:  []float64{1.5},
			kernel: kernel.Gaussian{},
			bw:     1,
		},
		{
			name: "2d epanechnikov",
			points: mat.NewDense(6, 2, []float64{
				0, 0,
				1, 0,
				0, 1,
				1, 1,
				0.5, 0.2,
				0.3, 0.8,
			}),
			f:      func(x []float64) float64 { return 1 + 2*x[0] - x[1] },
			query:  []float64{0.4, 0.5},
			kernel: kernel.Epanechnikov{},
			bw:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, c := tt.points.Dims()
			labels := mat.NewVecDense(n, nil)
			for i := 0; i < n; i++ {
				labels.SetVec(i, tt.f(mat.Row(nil, i, tt.points)))
			}
			h := hp.NewBuilder().Bandwidth(tt.bw).Build()

			got, err := LocalLinearRegression{}.Apply(distance.Euclidean{}, tt.kernel, h, tt.points, mat.NewVecDense(c, tt.query), labels)
			if err != nil {
				t.Fatal(err)
			}
			if want := tt.f(tt.query); math.Abs(got-want) > 1e-9 {
				t.Errorf("Apply() = %v, want %v", got, want)
			}
		})
	}
}

func TestLocalLinearApplyIndexExcludesQuery(t *testing.T) {
	points := column(0, 1, 2, 3, 10)
	// The outlier label at index 4 must not influence its own prediction.
	labels := mat.NewVecDense(5, []float64{0, 2, 4, 6, 999})
	h := hp.NewBuilder().Bandwidth(100).Build()

	est := LocalLinearRegression{}.Bind(distance.Euclidean{}, kernel.Gaussian{}, points, labels)
	got, err := est.Estimate(h, 4)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-20) > 1e-6 {
		t.Errorf("Estimate(4) = %v, want 20", got)
	}
}

func TestLocalLinearSingular(t *testing.T) {
	points := column(0, 1, 2, 3)
	labels := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	h := hp.NewBuilder().Bandwidth(0.5).Build()

	// Only the point at 0 lies inside the support: rank-one design.
	_, err := LocalLinearRegression{}.Apply(distance.Euclidean{}, kernel.Epanechnikov{}, h, points, mat.NewVecDense(1, []float64{0}), labels)
	var modelErr *errors.ModelError
	if !errors.As(err, &modelErr) || !errors.Is(err, errors.ErrSingularMatrix) {
		t.Errorf("expected ModelError(ErrSingularMatrix), got %v", err)
	}

	_, err = LocalLinearRegression{}.Apply(distance.Euclidean{}, kernel.Gaussian{}, h, points, mat.NewVecDense(2, nil), labels)
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("query dimension: expected DimensionError, got %v", err)
	}
}
