package unfold

import (
	"sort"

	"github.com/katalvlaran/unfold/matrix"
)

// Method is the pluggable unfolding strategy. Implementations read the
// engine's inputs through its exported accessors (Response, Vmeasured,
// GetMeasuredCov) and must not retain the engine between calls.
//
// Cov may return (nil, nil) to request the engine's default covariance
// propagation, which truncates the measured covariance into truth shape.
type Method interface {
	// Name returns a short tag used in diagnostics.
	Name() string

	// Unfold computes the truth-shaped result vector.
	Unfold(e *Engine) ([]float64, error)

	// Cov computes the nt x nt propagated covariance, or (nil, nil) for
	// the engine default.
	Cov(e *Engine) (*matrix.Dense, error)

	// Settings describes the regularisation parameter, zero value if none.
	Settings() ParmSettings

	// SetRegParm assigns the regularisation value. Strategies without a
	// parameter treat it as a no-op.
	SetRegParm(v float64) error

	// RegParm reports the current value, RegParmUnset if none applies.
	RegParm() float64
}

// methodRegistry maps algorithm tags to strategy factories. The built-in
// strategies register themselves here; external packages extend it via
// RegisterMethod.
var methodRegistry = map[Algorithm]func() Method{
	AlgNone:     func() Method { return &noneMethod{} },
	AlgBayes:    func() Method { return newBayesMethod() },
	AlgBinByBin: func() Method { return &binByBinMethod{} },
	AlgInvert:   func() Method { return &invertMethod{} },
}

// RegisterMethod installs a strategy factory for an algorithm tag,
// replacing any previous registration. Panics on a nil factory: that is a
// programming error.
func RegisterMethod(alg Algorithm, factory func() Method) {
	if factory == nil {
		panic("unfold: RegisterMethod requires a non-nil factory")
	}
	methodRegistry[alg] = factory
}

// RegisteredAlgorithms lists the algorithm tags with a registered
// strategy, in ascending tag order.
func RegisteredAlgorithms() []Algorithm {
	out := make([]Algorithm, 0, len(methodRegistry))
	for a := range methodRegistry {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// newMethod resolves an algorithm tag into a fresh strategy instance.
func newMethod(alg Algorithm) (Method, error) {
	factory, ok := methodRegistry[alg]
	if !ok {
		return nil, unfoldErrorf(alg.String(), ErrAlgorithmUnavailable)
	}
	return factory(), nil
}

// noneMethod copies the measured vector into the truth shape without any
// inversion. With unequal binnings only the first min(nm, nt) bins carry
// over; the remainder stays zero.
type noneMethod struct{}

func (noneMethod) Name() string { return "none" }

func (noneMethod) Unfold(e *Engine) ([]float64, error) {
	vm := e.Vmeasured()
	rec := make([]float64, e.NumTruth())
	nb := len(vm)
	if len(rec) < nb {
		nb = len(rec)
	}
	copy(rec, vm[:nb])
	return rec, nil
}

func (noneMethod) Cov(*Engine) (*matrix.Dense, error) { return nil, nil }

func (noneMethod) Settings() ParmSettings { return ParmSettings{} }

// SetRegParm is a no-op: the identity copy has nothing to regularise.
func (noneMethod) SetRegParm(float64) error { return nil }

func (noneMethod) RegParm() float64 { return RegParmUnset }
