package hp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

func TestAbsentIsNotZero(t *testing.T) {
	var h Hp

	if _, ok := h.K(); ok {
		t.Error("zero Hp should not have k")
	}
	if _, ok := h.Width(); ok {
		t.Error("zero Hp should not have a width")
	}

	zero := NewBuilder().K(0).Bandwidth(0).Build()
	if k, ok := zero.K(); !ok || k != 0 {
		t.Errorf("K() = %d, %v; want 0, true", k, ok)
	}
	if bw, ok := zero.Bandwidth(); !ok || bw != 0 {
		t.Errorf("Bandwidth() = %v, %v; want 0, true", bw, ok)
	}
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name      string
		h         Hp
		wantWidth float64
		wantCfg   bool
		wantValid bool
	}{
		{name: "bandwidth", h: NewBuilder().Bandwidth(0.5).Build(), wantWidth: 0.5},
		{name: "sigma fallback", h: NewBuilder().Sigma(2).Build(), wantWidth: 2},
		{name: "bandwidth wins over sigma", h: NewBuilder().Sigma(2).Bandwidth(0.1).Build(), wantWidth: 0.1},
		{name: "absent", h: NewBuilder().K(3).Build(), wantCfg: true},
		{name: "non-positive", h: NewBuilder().Bandwidth(0).Build(), wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := tt.h.RequireWidth("test")

			var cfgErr *errors.ConfigError
			if got := errors.As(err, &cfgErr); got != tt.wantCfg {
				t.Fatalf("ConfigError = %v, want %v (err=%v)", got, tt.wantCfg, err)
			}
			var valErr *errors.ValidationError
			if got := errors.As(err, &valErr); got != tt.wantValid {
				t.Fatalf("ValidationError = %v, want %v (err=%v)", got, tt.wantValid, err)
			}
			if err == nil && w != tt.wantWidth {
				t.Errorf("width = %v, want %v", w, tt.wantWidth)
			}
		})
	}

	if _, err := (Hp{}).RequireK("KNearestNeighbors.ApplyExact"); err == nil {
		t.Error("RequireK on empty Hp should fail")
	}
}

func TestBuilderIsolation(t *testing.T) {
	b := NewBuilder().K(3)
	first := b.Build()
	b.K(7)
	second := b.Build()

	if k, _ := first.K(); k != 3 {
		t.Errorf("first.K() = %d, want 3", k)
	}
	if k, _ := second.K(); k != 7 {
		t.Errorf("second.K() = %d, want 7", k)
	}

	derived := first.ToBuilder().Bandwidth(0.4).Build()
	if _, ok := first.Bandwidth(); ok {
		t.Error("ToBuilder must not mutate the source Hp")
	}
	if k, _ := derived.K(); k != 3 {
		t.Errorf("derived.K() = %d, want 3", k)
	}
}

func TestStringAndFields(t *testing.T) {
	h := NewBuilder().K(5).Bandwidth(0.25).Build()

	if got := h.String(); got != "Hp{k=5, bandwidth=0.25}" {
		t.Errorf("String() = %q", got)
	}
	fields := h.Fields()
	if len(fields) != 2 || fields[FieldK] != 5 {
		t.Errorf("Fields() = %v", fields)
	}
}

func TestDecode(t *testing.T) {
	h, err := Decode(strings.NewReader("k: 8\nbandwidth: 0.25\nnumber_test_samples: 20\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if k, ok := h.K(); !ok || k != 8 {
		t.Errorf("K() = %d, %v", k, ok)
	}
	if _, ok := h.Sigma(); ok {
		t.Error("sigma was not in the file and must stay absent")
	}
	if n, ok := h.NumberTestSamples(); !ok || n != 20 {
		t.Errorf("NumberTestSamples() = %d, %v", n, ok)
	}

	if _, err := Decode(strings.NewReader("bandwith: 0.3\n")); err == nil {
		t.Error("unknown key should be rejected")
	}

	empty, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if len(empty.Fields()) != 0 {
		t.Errorf("empty document should produce an empty Hp, got %v", empty)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hp.yaml")
	if err := os.WriteFile(path, []byte("sigma: 1.5\ninitial_1d_cutoff: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if w, ok := h.Width(); !ok || w != 1.5 {
		t.Errorf("Width() = %v, %v", w, ok)
	}
	if c, err := h.RequireInitial1DCutoff("test"); err != nil || c != 4 {
		t.Errorf("RequireInitial1DCutoff() = %v, %v", c, err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
