package unfold

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/katalvlaran/unfold/matrix"
)

// Engine drives one unfolding problem: a strategy, a response model, a
// measured distribution and the lazy cache of everything derived from
// them. Construct it with New; all result accessors trigger the unfold on
// first use and reuse the cached outcome afterwards.
//
// An Engine is not safe for concurrent use. Clone gives an independent
// copy with its own cache and a derived random stream.
type Engine struct {
	alg  Algorithm
	m    Method
	res  Response
	meas *Distribution

	// covOverride replaces the measured covariance derived from the
	// distribution when SetMeasuredCov was called.
	covOverride *matrix.Dense

	nm, nt int

	treatment ErrorTreatment
	sys       SystematicsTreatment
	ntoys     int
	rng       *rand.Rand
	diag      io.Writer

	c cache
}

// New builds an engine for the given algorithm, response and measured
// distribution. The response and distribution are cloned; use
// AdoptResponse afterwards to share a response without copying. Returns
// ErrAlgorithmUnavailable for tags without a registered strategy.
func New(alg Algorithm, res Response, meas *Distribution, opts ...Option) (*Engine, error) {
	m, err := newMethod(alg)
	if err != nil {
		return nil, err
	}
	o := gatherOptions(opts...)
	rng := o.rng
	if rng == nil {
		rng = rngFromSeed(o.seed)
	}
	e := &Engine{
		alg:       alg,
		m:         m,
		treatment: TreatErrors,
		sys:       o.sys,
		ntoys:     o.ntoys,
		rng:       rng,
		diag:      o.diag,
	}
	if err := e.Setup(res, meas); err != nil {
		return nil, err
	}
	return e, nil
}

// Setup installs clones of the response and measured distribution and
// resets the cache. The measured length must match the response binning.
func (e *Engine) Setup(res Response, meas *Distribution) error {
	if res == nil {
		return unfoldErrorf("Setup", ErrNilResponse)
	}
	if meas == nil {
		return unfoldErrorf("Setup", ErrNilMeasured)
	}
	if meas.Len() != res.NumMeasured() {
		return unfoldErrorf("Setup", ErrDimensionMismatch)
	}
	e.res = res.Clone()
	e.meas = meas.Clone()
	e.nm = res.NumMeasured()
	e.nt = res.NumTruth()
	e.covOverride = nil
	e.reset()
	return nil
}

// AdoptResponse installs the response without cloning it; the caller must
// not mutate it afterwards. The measured distribution is kept, so the
// binning must still match.
func (e *Engine) AdoptResponse(res Response) error {
	if res == nil {
		return unfoldErrorf("AdoptResponse", ErrNilResponse)
	}
	if e.meas != nil && e.meas.Len() != res.NumMeasured() {
		return unfoldErrorf("AdoptResponse", ErrDimensionMismatch)
	}
	e.res = res
	e.nm = res.NumMeasured()
	e.nt = res.NumTruth()
	e.reset()
	return nil
}

// reset starts a fresh cache generation.
func (e *Engine) reset() {
	e.c.reset()
	e.c.parms = e.m.Settings()
}

// ForceRecalculation discards every cached quantity, including a sticky
// failure, so the next accessor redoes the unfold.
func (e *Engine) ForceRecalculation() { e.reset() }

// Algorithm returns the strategy tag the engine was built with.
func (e *Engine) Algorithm() Algorithm { return e.alg }

// Response returns the installed response model.
func (e *Engine) Response() Response { return e.res }

// NumTruth returns the truth-side bin count.
func (e *Engine) NumTruth() int { return e.nt }

// NumMeasured returns the measured-side bin count.
func (e *Engine) NumMeasured() int { return e.nm }

// Status reports the cache state: idle before the first access, unfolded
// or failed after it.
func (e *Engine) Status() Status { return e.c.status }

// Failed reports whether the current generation ended in a sticky failure.
func (e *Engine) Failed() bool { return e.c.status == StatusFailed }

// SetDiagnostics redirects verbose diagnostics; nil silences them.
func (e *Engine) SetDiagnostics(w io.Writer) { e.diag = w }

// ------------------------------------------------------------------
// Measured-side projections.
// ------------------------------------------------------------------

// vmeasured returns the cached measured vector, filling it from the
// distribution on first use. Toys overwrite the returned slice in place.
func (e *Engine) vmeasured() []float64 {
	if e.c.vMes == nil {
		e.c.vMes = append([]float64(nil), e.meas.Values...)
	}
	return e.c.vMes
}

// emeasured returns the cached measured errors. Priority: an explicit
// covariance override, then the distribution's covariance, then its
// per-bin errors, then sqrt(|value|).
func (e *Engine) emeasured() []float64 {
	if e.c.eMes == nil {
		switch {
		case e.covOverride != nil:
			e.c.eMes = sqrtAbs(e.covOverride.Diag())
		case e.meas.Cov != nil:
			e.c.eMes = sqrtAbs(e.meas.Cov.Diag())
		case e.meas.Errors != nil:
			e.c.eMes = append([]float64(nil), e.meas.Errors...)
		default:
			e.c.eMes = sqrtAbs(e.meas.Values)
		}
	}
	return e.c.eMes
}

// measuredCov returns the cached nm x nm measured covariance, building a
// diagonal one from the errors when no full matrix was supplied.
func (e *Engine) measuredCov() *matrix.Dense {
	if e.c.covMes == nil {
		switch {
		case e.covOverride != nil:
			e.c.covMes = e.covOverride.Clone()
		case e.meas.Cov != nil:
			e.c.covMes = e.meas.Cov.Clone()
		default:
			em := e.emeasured()
			cm, _ := matrix.NewDense(e.nm, e.nm)
			for i := 0; i < e.nm; i++ {
				_ = cm.Set(i, i, em[i]*em[i])
			}
			e.c.covMes = cm
		}
	}
	return e.c.covMes
}

// Vmeasured returns a copy of the measured vector in use. During a toy
// generation this is the randomized vector, not the nominal one.
func (e *Engine) Vmeasured() []float64 {
	return append([]float64(nil), e.vmeasured()...)
}

// Emeasured returns a copy of the measured errors in use.
func (e *Engine) Emeasured() []float64 {
	return append([]float64(nil), e.emeasured()...)
}

// GetMeasuredCov returns a copy of the measured covariance.
func (e *Engine) GetMeasuredCov() *matrix.Dense {
	return e.measuredCov().Clone()
}

// SetMeasuredCov overrides the measured covariance with a clone of cov
// and resets the cache. cov must be nm x nm.
func (e *Engine) SetMeasuredCov(cov *matrix.Dense) error {
	if cov == nil || cov.Rows() != e.nm || cov.Cols() != e.nm {
		return unfoldErrorf("SetMeasuredCov", ErrDimensionMismatch)
	}
	e.covOverride = cov.Clone()
	e.reset()
	return nil
}

// ------------------------------------------------------------------
// The unfold itself.
// ------------------------------------------------------------------

// runUnfold executes the strategy once per cache generation. A failure is
// sticky: the status stays failed and the result reads as zeros until the
// next reset.
func (e *Engine) runUnfold() {
	if e.c.status != StatusIdle {
		return
	}
	rec, err := e.m.Unfold(e)
	if err != nil || len(rec) != e.nt {
		if e.diag != nil {
			if err != nil {
				fmt.Fprintf(e.diag, "%s unfold failed: %v\n", e.m.Name(), err)
			} else {
				fmt.Fprintf(e.diag, "%s unfold returned %d bins, want %d\n", e.m.Name(), len(rec), e.nt)
			}
		}
		e.c.status = StatusFailed
		e.c.rec = make([]float64, e.nt)
		return
	}
	e.c.rec = rec
	e.c.status = StatusUnfolded
}

// Vunfold returns a copy of the unfolded result, triggering the unfold on
// first access. After a failure it returns a zero vector of truth shape.
func (e *Engine) Vunfold() []float64 {
	e.runUnfold()
	return append([]float64(nil), e.c.rec...)
}

// resolveTreatment maps TreatDefault onto the engine's current selection.
func (e *Engine) resolveTreatment(t ErrorTreatment) ErrorTreatment {
	if t == TreatDefault {
		return e.treatment
	}
	return t
}

func validTreatment(t ErrorTreatment) bool {
	return t >= TreatNone && t <= TreatFitErrors
}

// UnfoldWithErrors runs the unfold (if needed) and prepares the error
// quantities the treatment requires: variances for TreatErrors and
// TreatFitErrors, the propagated covariance for TreatCovariance, the toy
// covariance for TreatToyCov. With wantWeights it additionally inverts
// the covariance into the weight matrix. Returns false, and marks the
// generation failed, when any required quantity could not be produced.
//
// Switching treatments between calls invalidates only the cached
// diagonal errors, never the unfolded result.
func (e *Engine) UnfoldWithErrors(t ErrorTreatment, wantWeights bool) bool {
	t = e.resolveTreatment(t)
	if !validTreatment(t) {
		if e.diag != nil {
			fmt.Fprintf(e.diag, "unknown error treatment %d\n", int(t))
		}
		return false
	}
	e.runUnfold()
	if e.c.status == StatusFailed {
		return false
	}
	if e.treatment != t {
		e.c.invalidateErrors()
		e.treatment = t
	}

	ok := true
	if wantWeights && (t == TreatErrors || t == TreatCovariance) {
		if !e.c.haveWgt {
			e.computeWgt()
		}
		ok = e.c.haveWgt
	} else {
		switch t {
		case TreatNone:
		case TreatErrors, TreatFitErrors:
			if !e.c.haveVariances {
				e.computeVariances()
			}
			ok = e.c.haveVariances
		case TreatCovariance:
			if !e.c.haveCov {
				e.computeCov()
			}
			ok = e.c.haveCov
		case TreatToyCov:
			if !e.c.haveErrMat {
				e.computeToyErrMat()
			}
			ok = e.c.haveErrMat
		}
	}
	if !ok {
		e.c.status = StatusFailed
	}
	return ok
}

// computeCov fills the propagated covariance, asking the strategy first
// and falling back to the truncated measured covariance.
func (e *Engine) computeCov() {
	cov, err := e.m.Cov(e)
	if err != nil {
		if e.diag != nil {
			fmt.Fprintf(e.diag, "%s covariance failed: %v\n", e.m.Name(), err)
		}
		return
	}
	if cov == nil {
		cov = e.defaultCov()
	}
	if cov.Rows() != e.nt || cov.Cols() != e.nt {
		if e.diag != nil {
			fmt.Fprintf(e.diag, "%s covariance has shape %dx%d, want %dx%d\n",
				e.m.Name(), cov.Rows(), cov.Cols(), e.nt, e.nt)
		}
		return
	}
	e.c.cov = cov
	e.c.haveCov = true
}

// defaultCov copies the top-left min(nm,nt) block of the measured
// covariance into truth shape. Used by strategies without their own
// propagation, mirroring the bin-copy unfold they pair with.
func (e *Engine) defaultCov() *matrix.Dense {
	cm := e.measuredCov()
	cov, _ := matrix.NewDense(e.nt, e.nt)
	nb := min(e.nm, e.nt)
	for i := 0; i < nb; i++ {
		for j := 0; j < nb; j++ {
			v, _ := cm.At(i, j)
			_ = cov.Set(i, j, v)
		}
	}
	return cov
}

// computeVariances fills the diagonal errors from the covariance.
func (e *Engine) computeVariances() {
	if !e.c.haveCov {
		e.computeCov()
	}
	if !e.c.haveCov {
		return
	}
	e.c.variances = e.c.cov.Diag()
	e.c.haveVariances = true
}

// computeWgt inverts the propagated covariance into the weight matrix.
func (e *Engine) computeWgt() {
	if !e.c.haveCov {
		e.computeCov()
	}
	if !e.c.haveCov {
		return
	}
	wgt, err := matrix.NewDense(e.nt, e.nt)
	if err != nil {
		return
	}
	if _, err := matrix.InvertDiagnose(wgt, e.c.cov, "covariance matrix", e.diag); err != nil {
		if e.diag != nil {
			fmt.Fprintf(e.diag, "weight matrix unavailable: %v\n", err)
		}
		return
	}
	e.c.wgt = wgt
	e.c.haveWgt = true
}

// ------------------------------------------------------------------
// Error accessors.
// ------------------------------------------------------------------

// Eunfold returns the nt x nt error matrix the treatment selects:
// diagonal result contents for TreatNone, diagonal variances for
// TreatErrors and TreatFitErrors, the propagated covariance for
// TreatCovariance, the toy covariance for TreatToyCov. When the unfold or
// the error computation failed it returns a zero matrix, not an error;
// only an out-of-range treatment is reported as ErrUnknownTreatment.
func (e *Engine) Eunfold(t ErrorTreatment) (*matrix.Dense, error) {
	t = e.resolveTreatment(t)
	if !validTreatment(t) {
		return nil, unfoldErrorf("Eunfold", ErrUnknownTreatment)
	}
	out, err := matrix.NewDense(e.nt, e.nt)
	if err != nil {
		return nil, unfoldErrorf("Eunfold", err)
	}
	if !e.UnfoldWithErrors(t, false) {
		return out, nil
	}
	switch t {
	case TreatNone:
		for i := 0; i < e.nt; i++ {
			_ = out.Set(i, i, e.c.rec[i])
		}
	case TreatErrors, TreatFitErrors:
		for i := 0; i < e.nt; i++ {
			_ = out.Set(i, i, e.c.variances[i])
		}
	case TreatCovariance:
		out = e.c.cov.Clone()
	case TreatToyCov:
		out = e.c.errMat.Clone()
	}
	return out, nil
}

// EunfoldV returns the per-bin errors for the treatment: the square root
// of the absolute diagonal of the matrix Eunfold selects. A failed unfold
// yields a zero vector. Errors are never negative.
func (e *Engine) EunfoldV(t ErrorTreatment) ([]float64, error) {
	t = e.resolveTreatment(t)
	if !validTreatment(t) {
		return nil, unfoldErrorf("EunfoldV", ErrUnknownTreatment)
	}
	ev := make([]float64, e.nt)
	if !e.UnfoldWithErrors(t, false) {
		return ev, nil
	}
	for i := 0; i < e.nt; i++ {
		var d float64
		switch t {
		case TreatNone:
			d = e.c.rec[i]
		case TreatErrors, TreatFitErrors:
			d = e.c.variances[i]
		case TreatCovariance:
			d, _ = e.c.cov.At(i, i)
		case TreatToyCov:
			d, _ = e.c.errMat.At(i, i)
		}
		ev[i] = math.Sqrt(math.Abs(d))
	}
	return ev, nil
}

// Wunfold returns the weight matrix (inverse covariance) under the
// treatment. For TreatNone it is the diagonal of reciprocal contents; for
// TreatErrors and TreatFitErrors the diagonal of the inverted covariance;
// for TreatCovariance the full inverted covariance; for TreatToyCov the
// inverted toy covariance. A failed unfold yields a zero matrix; an
// uninvertible toy covariance is a real error.
func (e *Engine) Wunfold(t ErrorTreatment) (*matrix.Dense, error) {
	t = e.resolveTreatment(t)
	if !validTreatment(t) {
		return nil, unfoldErrorf("Wunfold", ErrUnknownTreatment)
	}
	out, err := matrix.NewDense(e.nt, e.nt)
	if err != nil {
		return nil, unfoldErrorf("Wunfold", err)
	}
	if !e.UnfoldWithErrors(t, true) {
		return out, nil
	}
	switch t {
	case TreatNone:
		for i := 0; i < e.nt; i++ {
			if e.c.rec[i] != 0 {
				_ = out.Set(i, i, 1.0/e.c.rec[i])
			}
		}
	case TreatErrors:
		for i := 0; i < e.nt; i++ {
			d, _ := e.c.wgt.At(i, i)
			_ = out.Set(i, i, d)
		}
	case TreatFitErrors:
		for i := 0; i < e.nt; i++ {
			if e.c.variances[i] != 0 {
				_ = out.Set(i, i, 1.0/e.c.variances[i])
			}
		}
	case TreatCovariance:
		out = e.c.wgt.Clone()
	case TreatToyCov:
		if _, err := matrix.InvertDiagnose(out, e.c.errMat, "toy covariance", e.diag); err != nil {
			return nil, unfoldErrorf("Wunfold", err)
		}
	}
	return out, nil
}

// Chi2 computes the chi-squared of the unfolded result against a
// truth-shaped reference. Under TreatCovariance and TreatToyCov it is the
// full quadratic form through the weight matrix; under the other
// treatments a sum of squared pulls, skipping bins with non-positive
// error. Returns Chi2Fail when the unfold failed, the reference has the
// wrong shape, or the weight matrix could not be built.
func (e *Engine) Chi2(truth []float64, t ErrorTreatment) float64 {
	t = e.resolveTreatment(t)
	if !validTreatment(t) || len(truth) != e.nt {
		return Chi2Fail
	}
	useWgt := t == TreatCovariance || t == TreatToyCov
	if !e.UnfoldWithErrors(t, useWgt) {
		return Chi2Fail
	}

	res := make([]float64, e.nt)
	for i := range res {
		res[i] = e.c.rec[i] - truth[i]
	}

	if useWgt {
		w, err := e.Wunfold(t)
		if err != nil {
			return Chi2Fail
		}
		chi2, err := matrix.QuadForm(w, res)
		if err != nil {
			return Chi2Fail
		}
		return chi2
	}

	ev, err := e.EunfoldV(t)
	if err != nil {
		return Chi2Fail
	}
	var sum float64
	for i := range res {
		if ev[i] > 0 {
			p := res[i] / ev[i]
			sum += p * p
		}
	}
	return sum
}

// ------------------------------------------------------------------
// Bias accessors (filled by CalculateBias).
// ------------------------------------------------------------------

// Vbias returns the per-bin bias from the last CalculateBias.
func (e *Engine) Vbias() ([]float64, error) {
	if !e.c.haveBias {
		return nil, unfoldErrorf("Vbias", ErrBiasNotComputed)
	}
	return append([]float64(nil), e.c.bias...), nil
}

// Ebias returns the per-bin bias uncertainty from the last CalculateBias.
func (e *Engine) Ebias() ([]float64, error) {
	if !e.c.haveBias {
		return nil, unfoldErrorf("Ebias", ErrBiasNotComputed)
	}
	return append([]float64(nil), e.c.biasErr...), nil
}

// ------------------------------------------------------------------
// Knobs.
// ------------------------------------------------------------------

// SetNToys changes the toy-batch size and drops any cached toy covariance.
func (e *Engine) SetNToys(n int) error {
	if n <= 0 {
		return unfoldErrorf("SetNToys", ErrBadToyCount)
	}
	e.ntoys = n
	e.c.haveErrMat = false
	e.c.errMat = nil
	return nil
}

// NToys returns the configured toy-batch size.
func (e *Engine) NToys() int { return e.ntoys }

// IncludeSystematics selects which inputs toys randomize; a change resets
// the cache since every toy-derived quantity depends on it.
func (e *Engine) IncludeSystematics(s SystematicsTreatment) {
	if e.sys != s {
		e.sys = s
		e.reset()
	}
}

// Systematics returns the current systematics treatment.
func (e *Engine) Systematics() SystematicsTreatment { return e.sys }

// GetMinParm returns the lower bound of the regularisation parameter.
func (e *Engine) GetMinParm() float64 { return e.c.parms.Min }

// GetMaxParm returns the upper bound of the regularisation parameter.
func (e *Engine) GetMaxParm() float64 { return e.c.parms.Max }

// GetStepSizeParm returns the scan step of the regularisation parameter.
func (e *Engine) GetStepSizeParm() float64 { return e.c.parms.Step }

// GetDefaultParm returns the strategy's default regularisation value.
func (e *Engine) GetDefaultParm() float64 { return e.c.parms.Default }

// SetRegParm assigns the regularisation value and resets the cache, since
// the result depends on it.
func (e *Engine) SetRegParm(v float64) error {
	if err := e.m.SetRegParm(v); err != nil {
		return err
	}
	e.reset()
	return nil
}

// GetRegParm returns the current regularisation value, RegParmUnset when
// none applies.
func (e *Engine) GetRegParm() float64 { return e.m.RegParm() }

// Clone returns an independent engine: deep-copied inputs and cache, a
// fresh strategy instance carrying the same regularisation value, and a
// random stream derived from (and decorrelated against) the parent's.
// Deriving advances the parent stream by one draw.
func (e *Engine) Clone() *Engine {
	m, err := newMethod(e.alg)
	if err != nil {
		m = e.m
	} else if rp := e.m.RegParm(); rp != RegParmUnset {
		_ = m.SetRegParm(rp)
	}
	cp := &Engine{
		alg:       e.alg,
		m:         m,
		res:       e.res.Clone(),
		meas:      e.meas.Clone(),
		nm:        e.nm,
		nt:        e.nt,
		treatment: e.treatment,
		sys:       e.sys,
		ntoys:     e.ntoys,
		rng:       deriveRNG(e.rng, 1),
		diag:      e.diag,
	}
	if e.covOverride != nil {
		cp.covOverride = e.covOverride.Clone()
	}
	cp.c = e.c.clone()
	return cp
}
