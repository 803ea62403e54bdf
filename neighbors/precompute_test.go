package neighbors

import (
	"slices"
	"testing"

	"github.com/YuminosukeSato/kernreg/hp"
)

func TestPrecompute(t *testing.T) {
	knn := newKNN(t, nil)

	n, err := Precompute(knn, []int{0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Precompute stored %d, want 2", n)
	}

	missing := Indices(knn.Cache().MissingKeys(knn.NumPoints()))
	if !slices.Equal(missing, []int{1, 3, 4, 5}) {
		t.Fatalf("MissingKeys = %v", missing)
	}

	// Parallel workers must produce the same rankings as the serial path.
	n, err = Precompute(knn, missing, WithParallelThreshold(0))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(missing) {
		t.Errorf("Precompute stored %d, want %d", n, len(missing))
	}
	for q := 0; q < knn.NumPoints(); q++ {
		want, err := knn.Rank(q)
		if err != nil {
			t.Fatal(err)
		}
		got, ok := knn.Cache().Get(q)
		if !ok || !slices.Equal(got, want) {
			t.Errorf("cache[%d] = %v, want %v", q, got, want)
		}
	}

	// Already cached keys are skipped unless recomputation is requested.
	if n, _ := Precompute(knn, []int{0}); n != 0 {
		t.Errorf("cached key recomputed, stored %d", n)
	}
	if n, _ := Precompute(knn, []int{0}, WithRecompute()); n != 1 {
		t.Errorf("WithRecompute stored %d, want 1", n)
	}
}

func TestPrecomputeCollectsErrors(t *testing.T) {
	knn := newKNN(t, nil)

	n, err := Precompute(knn, []int{1, 99, 2})
	if err == nil {
		t.Fatal("expected an error for index 99")
	}
	if n != 2 {
		t.Errorf("stored %d, want 2", n)
	}

	got, err := knn.Apply(hp.NewBuilder().K(1).Build(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != 50 {
		t.Errorf("Apply(k=1, 2) = %v, want 50", got)
	}
}
