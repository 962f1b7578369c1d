package unfold

import (
	"math"
	"math/rand"

	"github.com/katalvlaran/unfold/matrix"
)

// Response models how a true distribution maps to a measured one. The
// smearing matrix has one row per measured bin and one column per truth
// bin; Truth and Measured expose the training sample both projections are
// derived from. Toy produces a statistically fluctuated variant for
// systematic studies and must not mutate the receiver.
type Response interface {
	NumTruth() int
	NumMeasured() int

	// Matrix returns the nm x nt smearing matrix. Callers must not mutate it.
	Matrix() *matrix.Dense

	Truth() []float64
	TruthErrors() []float64
	Measured() []float64
	MeasuredErrors() []float64

	// Fold projects a truth-shaped vector through the smearing matrix.
	Fold(truth []float64) ([]float64, error)

	// Toy draws a fluctuated copy of the response using rng.
	Toy(rng *rand.Rand) Response

	UseOverflow() bool
	UseDensity() bool

	Clone() Response
}

// DenseResponse is the concrete Response backed by a matrix.Dense
// smearing matrix and a training truth sample. The training measured
// projection is the fold of the training truth.
type DenseResponse struct {
	m        *matrix.Dense
	mErr     *matrix.Dense
	truth    []float64
	truthErr []float64
	meas     []float64
	measErr  []float64
	overflow bool
	density  bool
}

// ResponseOption configures a DenseResponse at construction time.
type ResponseOption func(*DenseResponse)

// WithOverflowBins marks the response binning as including under/overflow
// slots at the vector edges.
func WithOverflowBins() ResponseOption {
	return func(r *DenseResponse) { r.overflow = true }
}

// WithDensityBins marks the response vectors as bin-width densities
// rather than raw contents.
func WithDensityBins() ResponseOption {
	return func(r *DenseResponse) { r.density = true }
}

// WithMatrixErrors supplies per-entry errors on the smearing matrix, used
// by Toy. Defaults to sqrt(|entry|), the count-statistics model.
func WithMatrixErrors(me *matrix.Dense) ResponseOption {
	return func(r *DenseResponse) { r.mErr = me }
}

// NewDenseResponse builds a response from an nm x nt smearing matrix and
// the training truth vector it was filled from. truthErrs may be nil, in
// which case sqrt(|truth|) is assumed. All inputs are copied.
func NewDenseResponse(m *matrix.Dense, truth, truthErrs []float64, opts ...ResponseOption) (*DenseResponse, error) {
	if m == nil {
		return nil, unfoldErrorf("NewDenseResponse", ErrNilResponse)
	}
	if len(truth) != m.Cols() {
		return nil, unfoldErrorf("NewDenseResponse", ErrDimensionMismatch)
	}
	if truthErrs != nil && len(truthErrs) != len(truth) {
		return nil, unfoldErrorf("NewDenseResponse", ErrDimensionMismatch)
	}

	r := &DenseResponse{
		m:     m.Clone(),
		truth: append([]float64(nil), truth...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.mErr != nil {
		if r.mErr.Rows() != m.Rows() || r.mErr.Cols() != m.Cols() {
			return nil, unfoldErrorf("NewDenseResponse", ErrDimensionMismatch)
		}
		r.mErr = r.mErr.Clone()
	}

	if truthErrs != nil {
		r.truthErr = append([]float64(nil), truthErrs...)
	} else {
		r.truthErr = sqrtAbs(truth)
	}

	meas, err := matrix.MatVec(r.m, r.truth)
	if err != nil {
		return nil, unfoldErrorf("NewDenseResponse", err)
	}
	r.meas = meas
	r.measErr = sqrtAbs(meas)

	return r, nil
}

// NumTruth returns the number of truth bins.
func (r *DenseResponse) NumTruth() int { return r.m.Cols() }

// NumMeasured returns the number of measured bins.
func (r *DenseResponse) NumMeasured() int { return r.m.Rows() }

// Matrix returns the smearing matrix. Callers must not mutate it.
func (r *DenseResponse) Matrix() *matrix.Dense { return r.m }

// Truth returns a copy of the training truth vector.
func (r *DenseResponse) Truth() []float64 {
	return append([]float64(nil), r.truth...)
}

// TruthErrors returns a copy of the training truth errors.
func (r *DenseResponse) TruthErrors() []float64 {
	return append([]float64(nil), r.truthErr...)
}

// Measured returns a copy of the folded training measured vector.
func (r *DenseResponse) Measured() []float64 {
	return append([]float64(nil), r.meas...)
}

// MeasuredErrors returns a copy of the training measured errors.
func (r *DenseResponse) MeasuredErrors() []float64 {
	return append([]float64(nil), r.measErr...)
}

// Fold projects a truth-shaped vector into measured space.
func (r *DenseResponse) Fold(truth []float64) ([]float64, error) {
	if len(truth) != r.m.Cols() {
		return nil, unfoldErrorf("Fold", ErrDimensionMismatch)
	}
	return matrix.MatVec(r.m, truth)
}

// Toy returns a copy whose smearing matrix entries are Gaussian-smeared
// by their errors. The training vectors are re-derived from the smeared
// matrix so the toy stays internally consistent.
func (r *DenseResponse) Toy(rng *rand.Rand) Response {
	if rng == nil {
		rng = rngFromSeed(0)
	}
	nm, nt := r.m.Rows(), r.m.Cols()
	sm := r.m.Clone()
	for i := 0; i < nm; i++ {
		for j := 0; j < nt; j++ {
			v, _ := sm.At(i, j)
			sigma := math.Sqrt(math.Abs(v))
			if r.mErr != nil {
				sigma, _ = r.mErr.At(i, j)
			}
			if sigma != 0 {
				_ = sm.Set(i, j, v+rng.NormFloat64()*sigma)
			}
		}
	}

	toy := r.clone()
	toy.m = sm
	if meas, err := matrix.MatVec(sm, toy.truth); err == nil {
		toy.meas = meas
		toy.measErr = sqrtAbs(meas)
	}
	return toy
}

// Clone returns a deep copy.
func (r *DenseResponse) Clone() Response { return r.clone() }

func (r *DenseResponse) clone() *DenseResponse {
	cp := &DenseResponse{
		m:        r.m.Clone(),
		truth:    append([]float64(nil), r.truth...),
		truthErr: append([]float64(nil), r.truthErr...),
		meas:     append([]float64(nil), r.meas...),
		measErr:  append([]float64(nil), r.measErr...),
		overflow: r.overflow,
		density:  r.density,
	}
	if r.mErr != nil {
		cp.mErr = r.mErr.Clone()
	}
	return cp
}

// UseOverflow reports whether the binning includes flow slots.
func (r *DenseResponse) UseOverflow() bool { return r.overflow }

// UseDensity reports whether the vectors are bin-width densities.
func (r *DenseResponse) UseDensity() bool { return r.density }
