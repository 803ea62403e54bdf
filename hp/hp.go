// Package hp provides the hyperparameter bag shared by kernels, estimators
// and k-nearest-neighbour search.
//
// Every field is optional. An unset field is reported as absent by its
// accessor, it is never replaced by a default, so callers must handle
// missing configuration explicitly (the Require* helpers turn absence into
// an *errors.ConfigError). An Hp is immutable once built.
package hp

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

// Field names, used in ConfigError and in YAML files.
const (
	FieldK                 = "k"
	FieldBandwidth         = "bandwidth"
	FieldSigma             = "sigma"
	FieldInitial1DCutoff   = "initial_1d_cutoff"
	FieldNumberTestSamples = "number_test_samples"
)

// Hp is an immutable set of optional hyperparameters.
// The zero value has every field absent.
type Hp struct {
	k                 *int
	bandwidth         *float64
	sigma             *float64
	initial1DCutoff   *float64
	numberTestSamples *int
}

// K returns the number of neighbours.
func (h Hp) K() (int, bool) { return getInt(h.k) }

// Bandwidth returns the kernel width.
func (h Hp) Bandwidth() (float64, bool) { return getFloat(h.bandwidth) }

// Sigma returns the Gaussian width.
func (h Hp) Sigma() (float64, bool) { return getFloat(h.sigma) }

// Initial1DCutoff returns the upper end of the one-dimensional bandwidth search.
func (h Hp) Initial1DCutoff() (float64, bool) { return getFloat(h.initial1DCutoff) }

// NumberTestSamples returns how many query indices an evaluation should use.
func (h Hp) NumberTestSamples() (int, bool) { return getInt(h.numberTestSamples) }

// Width returns the kernel width: bandwidth when set, otherwise sigma.
func (h Hp) Width() (float64, bool) {
	if bw, ok := h.Bandwidth(); ok {
		return bw, true
	}
	return h.Sigma()
}

// RequireK returns k or a ConfigError naming op.
func (h Hp) RequireK(op string) (int, error) {
	k, ok := h.K()
	if !ok {
		return 0, errors.NewConfigError(op, FieldK)
	}
	return k, nil
}

// RequireWidth returns the kernel width or a ConfigError naming op.
// A width that is not strictly positive is a ValidationError.
func (h Hp) RequireWidth(op string) (float64, error) {
	w, ok := h.Width()
	if !ok {
		return 0, errors.NewConfigError(op, FieldBandwidth)
	}
	if !(w > 0) {
		return 0, errors.NewValidationError(FieldBandwidth, "must be positive", w)
	}
	return w, nil
}

// RequireInitial1DCutoff returns initial1DCutoff or a ConfigError naming op.
func (h Hp) RequireInitial1DCutoff(op string) (float64, error) {
	c, ok := h.Initial1DCutoff()
	if !ok {
		return 0, errors.NewConfigError(op, FieldInitial1DCutoff)
	}
	if !(c > 0) {
		return 0, errors.NewValidationError(FieldInitial1DCutoff, "must be positive", c)
	}
	return c, nil
}

// Fields returns the set fields as a map, for structured logging.
func (h Hp) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if v, ok := h.K(); ok {
		fields[FieldK] = v
	}
	if v, ok := h.Bandwidth(); ok {
		fields[FieldBandwidth] = v
	}
	if v, ok := h.Sigma(); ok {
		fields[FieldSigma] = v
	}
	if v, ok := h.Initial1DCutoff(); ok {
		fields[FieldInitial1DCutoff] = v
	}
	if v, ok := h.NumberTestSamples(); ok {
		fields[FieldNumberTestSamples] = v
	}
	return fields
}

// String lists the set fields in declaration order, e.g. "Hp{k=5, bandwidth=0.3}".
func (h Hp) String() string {
	var parts []string
	if v, ok := h.K(); ok {
		parts = append(parts, fmt.Sprintf("%s=%d", FieldK, v))
	}
	if v, ok := h.Bandwidth(); ok {
		parts = append(parts, fmt.Sprintf("%s=%g", FieldBandwidth, v))
	}
	if v, ok := h.Sigma(); ok {
		parts = append(parts, fmt.Sprintf("%s=%g", FieldSigma, v))
	}
	if v, ok := h.Initial1DCutoff(); ok {
		parts = append(parts, fmt.Sprintf("%s=%g", FieldInitial1DCutoff, v))
	}
	if v, ok := h.NumberTestSamples(); ok {
		parts = append(parts, fmt.Sprintf("%s=%d", FieldNumberTestSamples, v))
	}
	return "Hp{" + strings.Join(parts, ", ") + "}"
}

// ToBuilder returns a Builder pre-populated with h's fields.
func (h Hp) ToBuilder() *Builder {
	return &Builder{h: h.clone()}
}

func (h Hp) clone() Hp {
	return Hp{
		k:                 copyPtr(h.k),
		bandwidth:         copyPtr(h.bandwidth),
		sigma:             copyPtr(h.sigma),
		initial1DCutoff:   copyPtr(h.initial1DCutoff),
		numberTestSamples: copyPtr(h.numberTestSamples),
	}
}

func getInt(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func getFloat(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
