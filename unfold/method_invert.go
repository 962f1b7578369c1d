package unfold

import "github.com/katalvlaran/unfold/matrix"

// invertMethod unfolds by applying the SVD pseudo-inverse of the smearing
// matrix to the measured vector. No regularisation: conditioning problems
// surface through the inversion diagnostics, an exactly singular response
// fails the unfold.
type invertMethod struct{}

func (invertMethod) Name() string { return "invert" }

func (m invertMethod) Unfold(e *Engine) ([]float64, error) {
	pinv, err := m.pinv(e)
	if err != nil {
		return nil, err
	}
	return matrix.MatVec(pinv, e.Vmeasured())
}

// Cov propagates the measured covariance through the pseudo-inverse:
// pinv * covMes * pinv^T.
func (m invertMethod) Cov(e *Engine) (*matrix.Dense, error) {
	pinv, err := m.pinv(e)
	if err != nil {
		return nil, err
	}
	return matrix.ABAT(pinv, e.GetMeasuredCov())
}

// pinv recomputes the pseudo-inverse from the current response. Not
// cached on the strategy: the response can change between generations.
func (invertMethod) pinv(e *Engine) (*matrix.Dense, error) {
	rm := e.Response().Matrix()
	pinv, err := matrix.NewDense(rm.Cols(), rm.Rows())
	if err != nil {
		return nil, err
	}
	if _, err := matrix.InvertDiagnose(pinv, rm, "response matrix", e.diag); err != nil {
		return nil, err
	}
	return pinv, nil
}

func (invertMethod) Settings() ParmSettings { return ParmSettings{} }

func (invertMethod) SetRegParm(float64) error { return nil }

func (invertMethod) RegParm() float64 { return RegParmUnset }
