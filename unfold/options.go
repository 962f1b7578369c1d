package unfold

import (
	"io"
	"math/rand"
)

// DefaultNToys is the toy-batch size used for toy-derived covariance when
// the caller does not override it.
const DefaultNToys = 50

// Options collects the tunable knobs of an engine. Construct it through
// New with functional Option values; the zero value is usable and maps to
// the documented defaults.
type Options struct {
	ntoys int
	seed  int64
	rng   *rand.Rand
	diag  io.Writer
	sys   SystematicsTreatment
}

// Option mutates Options during construction.
type Option func(*Options)

// WithNToys sets the batch size used when a toy-derived covariance is
// requested. Panics on non-positive n: that is a programming error, not a
// runtime condition.
func WithNToys(n int) Option {
	if n <= 0 {
		panic("unfold: WithNToys requires a positive count")
	}
	return func(o *Options) { o.ntoys = n }
}

// WithSeed seeds the engine's private random stream. Seed 0 selects the
// fixed default seed, keeping zero-value construction deterministic.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.seed = seed }
}

// WithRand supplies an explicit random stream, overriding WithSeed. The
// engine takes ownership of the generator's sequence: toys consume it in
// order.
func WithRand(r *rand.Rand) Option {
	return func(o *Options) { o.rng = r }
}

// WithDiagnostics directs verbose diagnostics (inversion conditioning,
// failure notes) to w. Nil disables them, which is the default.
func WithDiagnostics(w io.Writer) Option {
	return func(o *Options) { o.diag = w }
}

// WithSystematics selects which inputs the toy engine randomizes.
func WithSystematics(s SystematicsTreatment) Option {
	return func(o *Options) { o.sys = s }
}

// gatherOptions applies opts over the defaults.
func gatherOptions(opts ...Option) Options {
	o := Options{ntoys: DefaultNToys}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
