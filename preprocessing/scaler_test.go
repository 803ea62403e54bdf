package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 100,
		2, 100,
		3, 100,
		4, 100,
	})

	s := NewStandardScaler()
	scaled, err := s.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(s.Mean[0]-2.5) > 1e-12 || math.Abs(s.Scale[0]-math.Sqrt(1.25)) > 1e-12 {
		t.Errorf("column 0: mean %v scale %v", s.Mean[0], s.Scale[0])
	}
	// A constant column keeps scale 1 and is centred to zero.
	if s.Scale[1] != 1 || scaled.At(2, 1) != 0 {
		t.Errorf("constant column: scale %v value %v", s.Scale[1], scaled.At(2, 1))
	}

	var sum, sumSq float64
	for i := 0; i < 4; i++ {
		v := scaled.At(i, 0)
		sum += v
		sumSq += v * v
	}
	if math.Abs(sum) > 1e-12 || math.Abs(sumSq/4-1) > 1e-12 {
		t.Errorf("scaled column 0 has mean %v, variance %v", sum/4, sumSq/4)
	}

	back, err := s.InverseTransform(scaled)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(back, X, 1e-12) {
		t.Errorf("InverseTransform did not restore X:\n%v", mat.Formatted(back))
	}
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandardScaler()
	if _, err := s.Transform(mat.NewDense(1, 1, nil)); err == nil {
		t.Error("Transform before Fit should fail")
	}
	if err := s.Fit(&mat.Dense{}); err == nil {
		t.Error("empty data should fail")
	}

	if err := s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatal(err)
	}
	_, err := s.Transform(mat.NewDense(2, 3, nil))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}
}
