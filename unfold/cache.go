package unfold

import "github.com/katalvlaran/unfold/matrix"

// cache holds everything derived lazily from the engine inputs. One
// "generation" lives between two resets: within a generation the unfold
// runs at most once and every derived quantity is computed at most once
// per treatment.
type cache struct {
	status Status
	rec    []float64 // unfolded result, truth-shaped; zeros after failure

	haveCov bool
	cov     *matrix.Dense // propagated covariance, nt x nt

	haveWgt bool
	wgt     *matrix.Dense // inverse covariance (weight matrix)

	haveVariances bool
	variances     []float64 // diagonal of the propagated covariance

	haveErrMat bool
	errMat     *matrix.Dense // toy-sample covariance, nt x nt

	haveBias bool
	bias     []float64
	biasErr  []float64

	// Measured-side projections, filled on first use. Toys overwrite vMes
	// in place for the duration of one toy generation.
	vMes   []float64
	eMes   []float64
	covMes *matrix.Dense

	parms ParmSettings
}

// reset discards the whole generation. parms is re-derived by the engine
// after strategy changes, so it is cleared here too.
func (c *cache) reset() {
	*c = cache{}
}

// invalidateErrors drops only the treatment-dependent diagonal errors,
// keeping the unfolded result and the treatment-specific matrices. Called
// when the requested treatment differs from the previous one.
func (c *cache) invalidateErrors() {
	c.haveVariances = false
	c.variances = nil
}

// clone deep-copies the cache for Engine.Clone.
func (c *cache) clone() cache {
	cp := *c
	cp.rec = append([]float64(nil), c.rec...)
	cp.variances = append([]float64(nil), c.variances...)
	cp.bias = append([]float64(nil), c.bias...)
	cp.biasErr = append([]float64(nil), c.biasErr...)
	cp.vMes = append([]float64(nil), c.vMes...)
	cp.eMes = append([]float64(nil), c.eMes...)
	if c.cov != nil {
		cp.cov = c.cov.Clone()
	}
	if c.wgt != nil {
		cp.wgt = c.wgt.Clone()
	}
	if c.errMat != nil {
		cp.errMat = c.errMat.Clone()
	}
	if c.covMes != nil {
		cp.covMes = c.covMes.Clone()
	}
	return cp
}
