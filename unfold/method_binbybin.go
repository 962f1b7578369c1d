package unfold

import "github.com/katalvlaran/unfold/matrix"

// binByBinMethod corrects each measured bin by the training-sample ratio
// truth/measured of the same bin. Migration between bins is ignored, so
// it is only defined for equal truth and measured binning.
type binByBinMethod struct{}

func (binByBinMethod) Name() string { return "binbybin" }

// factors returns the per-bin correction truth_i / measured_i from the
// training sample, zero where the training measured bin is empty.
func (binByBinMethod) factors(e *Engine) ([]float64, error) {
	if e.NumMeasured() != e.NumTruth() {
		return nil, unfoldErrorf("binbybin", ErrDimensionMismatch)
	}
	tt := e.Response().Truth()
	tm := e.Response().Measured()
	f := make([]float64, len(tt))
	for i := range f {
		if tm[i] != 0 {
			f[i] = tt[i] / tm[i]
		}
	}
	return f, nil
}

func (m binByBinMethod) Unfold(e *Engine) ([]float64, error) {
	f, err := m.factors(e)
	if err != nil {
		return nil, err
	}
	vm := e.Vmeasured()
	rec := make([]float64, len(f))
	for i := range rec {
		rec[i] = f[i] * vm[i]
	}
	return rec, nil
}

// Cov scales the measured errors by the same per-bin factors; the result
// is diagonal since the correction never mixes bins.
func (m binByBinMethod) Cov(e *Engine) (*matrix.Dense, error) {
	f, err := m.factors(e)
	if err != nil {
		return nil, err
	}
	em := e.Emeasured()
	cov, err := matrix.NewDense(len(f), len(f))
	if err != nil {
		return nil, err
	}
	for i := range f {
		s := f[i] * em[i]
		_ = cov.Set(i, i, s*s)
	}
	return cov, nil
}

func (binByBinMethod) Settings() ParmSettings { return ParmSettings{} }

func (binByBinMethod) SetRegParm(float64) error { return nil }

func (binByBinMethod) RegParm() float64 { return RegParmUnset }
