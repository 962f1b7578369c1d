package unfold

import (
	"math"

	"github.com/katalvlaran/unfold/hist"
	"github.com/katalvlaran/unfold/matrix"
)

// Distribution is a flat binned distribution: values, optional per-bin
// errors and an optional full covariance. Errors and Cov may be nil;
// accessors on the engine substitute sqrt(|value|) when no uncertainty is
// supplied.
type Distribution struct {
	Values []float64
	Errors []float64
	Cov    *matrix.Dense
}

// NewDistribution builds a distribution from copies of the given slices.
// errs may be nil.
func NewDistribution(values, errs []float64) *Distribution {
	d := &Distribution{Values: append([]float64(nil), values...)}
	if errs != nil {
		d.Errors = append([]float64(nil), errs...)
	}
	return d
}

// Len returns the number of bins.
func (d *Distribution) Len() int { return len(d.Values) }

// Clone returns a deep copy.
func (d *Distribution) Clone() *Distribution {
	if d == nil {
		return nil
	}
	cp := NewDistribution(d.Values, d.Errors)
	if d.Cov != nil {
		cp.Cov = d.Cov.Clone()
	}
	return cp
}

// FromHistogram flattens a histogram into a Distribution under the given
// overflow and density conventions.
func FromHistogram(h *hist.Histogram, includeOverflow, useDensity bool) (*Distribution, error) {
	v, err := hist.ToVector(h, includeOverflow, useDensity)
	if err != nil {
		return nil, err
	}
	e, err := hist.ToErrorVector(h, includeOverflow, useDensity)
	if err != nil {
		return nil, err
	}
	return &Distribution{Values: v, Errors: e}, nil
}

// ToHistogram rebuilds a histogram over the given edges from the
// distribution. The value layout must match the includeOverflow policy.
func (d *Distribution) ToHistogram(name string, edges []float64, includeOverflow bool) (*hist.Histogram, error) {
	if d == nil {
		return nil, ErrNilMeasured
	}
	return hist.FromVector(name, d.Values, d.Errors, edges, includeOverflow)
}

// sqrtAbs returns sqrt(|v_i|) per bin, the fallback uncertainty model for
// count-like contents.
func sqrtAbs(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Sqrt(math.Abs(x))
	}
	return out
}
