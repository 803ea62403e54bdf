package hp

// Builder accumulates fields and produces an immutable Hp.
//
//	h := hp.NewBuilder().K(5).Bandwidth(0.3).Build()
type Builder struct {
	h Hp
}

// NewBuilder returns a Builder with every field absent.
func NewBuilder() *Builder {
	return &Builder{}
}

// K sets the number of neighbours.
func (b *Builder) K(k int) *Builder {
	b.h.k = &k
	return b
}

// Bandwidth sets the kernel width.
func (b *Builder) Bandwidth(bw float64) *Builder {
	b.h.bandwidth = &bw
	return b
}

// Sigma sets the Gaussian width, used when bandwidth is absent.
func (b *Builder) Sigma(sigma float64) *Builder {
	b.h.sigma = &sigma
	return b
}

// Initial1DCutoff sets the upper end of the bandwidth search.
func (b *Builder) Initial1DCutoff(c float64) *Builder {
	b.h.initial1DCutoff = &c
	return b
}

// NumberTestSamples sets how many query indices an evaluation uses.
func (b *Builder) NumberTestSamples(n int) *Builder {
	b.h.numberTestSamples = &n
	return b
}

// Build returns the accumulated Hp. Later changes to the Builder do not
// affect Hp values already built.
func (b *Builder) Build() Hp {
	return b.h.clone()
}
