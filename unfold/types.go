package unfold

// Algorithm selects the unfolding strategy. Only the tags with a
// registered strategy can be constructed into an engine; the remainder
// reserve their identities for external registrations via RegisterMethod.
type Algorithm int

const (
	// AlgNone performs no inversion: the measured vector is copied into
	// the truth shape bin by bin.
	AlgNone Algorithm = iota

	// AlgBayes is iterative Bayesian unfolding (D'Agostini).
	AlgBayes

	// AlgSVD is regularised SVD unfolding (reserved, no built-in strategy).
	AlgSVD

	// AlgBinByBin applies multiplicative correction factors derived from
	// the training sample; it requires equal measured and truth binning.
	AlgBinByBin

	// AlgTUnfold is reserved for an externally registered strategy.
	AlgTUnfold

	// AlgInvert unfolds by (pseudo)inverting the response matrix.
	AlgInvert

	// AlgDagostini is reserved for an externally registered strategy.
	AlgDagostini

	// AlgIDS is reserved for an externally registered strategy.
	AlgIDS

	// AlgGP is reserved for an externally registered strategy.
	AlgGP
)

// String returns the algorithm tag name.
func (a Algorithm) String() string {
	switch a {
	case AlgNone:
		return "none"
	case AlgBayes:
		return "bayes"
	case AlgSVD:
		return "svd"
	case AlgBinByBin:
		return "binbybin"
	case AlgTUnfold:
		return "tunfold"
	case AlgInvert:
		return "invert"
	case AlgDagostini:
		return "dagostini"
	case AlgIDS:
		return "ids"
	case AlgGP:
		return "gp"
	default:
		return "unknown"
	}
}

// ErrorTreatment selects how uncertainty on the unfolded result is
// computed and reported. It is a property of the query, not of the
// engine: switching treatments between calls never invalidates the
// unfolded result itself, only the error-derived caches.
type ErrorTreatment int

const (
	// TreatNone reports no propagated errors; diagnostic accessors fall
	// back to sqrt of the result contents.
	TreatNone ErrorTreatment = iota

	// TreatErrors reports diagonal errors from the propagated covariance.
	TreatErrors

	// TreatCovariance reports the full propagated covariance matrix.
	TreatCovariance

	// TreatToyCov reports covariance estimated empirically from a batch of
	// toy unfolds.
	TreatToyCov

	// TreatFitErrors reports errors taken from an external fit; the
	// built-in strategies resolve it like TreatErrors.
	TreatFitErrors

	// TreatDefault defers to the treatment already selected on the engine.
	TreatDefault
)

// String returns the treatment name.
func (t ErrorTreatment) String() string {
	switch t {
	case TreatNone:
		return "no-error"
	case TreatErrors:
		return "errors"
	case TreatCovariance:
		return "covariance"
	case TreatToyCov:
		return "toy-covariance"
	case TreatFitErrors:
		return "fit-errors"
	case TreatDefault:
		return "default"
	default:
		return "unknown"
	}
}

// SystematicsTreatment controls which inputs the toy engine randomizes.
type SystematicsTreatment int

const (
	// SysNone randomizes the measured vector only.
	SysNone SystematicsTreatment = iota

	// SysAll additionally draws a toy variant of the response model.
	SysAll

	// SysNoMeasured leaves the measured vector fixed (response toys only,
	// when combined with a response that supports them).
	SysNoMeasured
)

// BiasMethod selects the protocol CalculateBias uses.
type BiasMethod int

const (
	// BiasEstimator compares one deterministic unfold of the expectation
	// against the reference truth.
	BiasEstimator BiasMethod = iota

	// BiasClosure averages relative pulls over a batch of toy unfolds.
	BiasClosure

	// BiasAsimov runs a doubly stochastic truth-and-measurement toy grid.
	BiasAsimov
)

// Status is the explicit state of the engine's result cache.
type Status int

const (
	// StatusIdle means no unfold has been attempted this cache generation.
	StatusIdle Status = iota

	// StatusUnfolded means the cached result vector is valid.
	StatusUnfolded

	// StatusFailed means the unfold failed; the failure is sticky until
	// the next reset and the result vector reads as zeros.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUnfolded:
		return "unfolded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParmSettings describes the regularisation parameter a strategy accepts:
// its valid range, scan step and default. A strategy without a parameter
// reports the zero value.
type ParmSettings struct {
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// RegParmUnset is returned by RegParm when no regularisation value has
// been set and the strategy has no default.
const RegParmUnset = -1e30

// Chi2Fail is the sentinel chi-squared value reported when the unfold
// failed or the requested treatment could not produce the weight matrix.
const Chi2Fail = -1.0
