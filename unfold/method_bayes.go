package unfold

import (
	"math"

	"github.com/katalvlaran/unfold/matrix"
)

// Iteration-count bounds for the Bayesian strategy.
const (
	bayesMinIterations     = 1
	bayesMaxIterations     = 15
	bayesDefaultIterations = 4
)

// bayesMethod is iterative Bayesian unfolding after D'Agostini. The
// smearing matrix columns are read as P(measured|truth) times the truth
// efficiency; the prior starts from the training truth and is replaced by
// the unfolded estimate each iteration. The iteration count is the
// regularisation parameter: few iterations bias towards the prior, many
// approach the unregularised inverse.
type bayesMethod struct {
	iterations int

	// unfolding matrix of the last iteration, kept for error propagation.
	umat *matrix.Dense
}

func newBayesMethod() *bayesMethod {
	return &bayesMethod{iterations: bayesDefaultIterations}
}

func (*bayesMethod) Name() string { return "bayes" }

func (m *bayesMethod) Unfold(e *Engine) ([]float64, error) {
	r := e.Response().Matrix()
	nm, nt := r.Rows(), r.Cols()
	vm := e.Vmeasured()

	// Efficiency per truth bin: the column sum of the smearing matrix.
	eff := make([]float64, nt)
	for t := 0; t < nt; t++ {
		for i := 0; i < nm; i++ {
			v, _ := r.At(i, t)
			eff[t] += v
		}
	}

	// Starting prior: the training truth, uniform if it carries no weight.
	prior := e.Response().Truth()
	var ptot float64
	for _, p := range prior {
		ptot += math.Abs(p)
	}
	if ptot == 0 {
		for t := range prior {
			prior[t] = 1
		}
	}

	umat, err := matrix.NewDense(nt, nm)
	if err != nil {
		return nil, err
	}
	rec := make([]float64, nt)
	for it := 0; it < m.iterations; it++ {
		// denom[i] = sum_t R(i,t) * prior[t], the folded prior.
		denom := make([]float64, nm)
		for i := 0; i < nm; i++ {
			for t := 0; t < nt; t++ {
				v, _ := r.At(i, t)
				denom[i] += v * prior[t]
			}
		}

		// umat(t,i) = P(t|i)/eff_t = R(i,t)*prior[t] / (denom[i]*eff_t).
		for t := 0; t < nt; t++ {
			rec[t] = 0
			for i := 0; i < nm; i++ {
				var u float64
				if denom[i] != 0 && eff[t] != 0 {
					v, _ := r.At(i, t)
					u = v * prior[t] / (denom[i] * eff[t])
				}
				_ = umat.Set(t, i, u)
				rec[t] += u * vm[i]
			}
		}
		copy(prior, rec)
	}
	m.umat = umat

	return rec, nil
}

// Cov propagates the measured covariance through the final unfolding
// matrix: umat * covMes * umat^T. This is the first-order propagation
// that neglects the dependence of the unfolding matrix on the data.
func (m *bayesMethod) Cov(e *Engine) (*matrix.Dense, error) {
	if m.umat == nil {
		if _, err := m.Unfold(e); err != nil {
			return nil, err
		}
	}
	return matrix.ABAT(m.umat, e.GetMeasuredCov())
}

func (*bayesMethod) Settings() ParmSettings {
	return ParmSettings{
		Min:     bayesMinIterations,
		Max:     bayesMaxIterations,
		Step:    1,
		Default: bayesDefaultIterations,
	}
}

// SetRegParm sets the iteration count. Values outside the declared range
// or non-integral values are rejected.
func (m *bayesMethod) SetRegParm(v float64) error {
	n := int(v)
	if float64(n) != v || n < bayesMinIterations || n > bayesMaxIterations {
		return unfoldErrorf("bayes", ErrBadRegParm)
	}
	m.iterations = n
	m.umat = nil
	return nil
}

func (m *bayesMethod) RegParm() float64 { return float64(m.iterations) }
