package unfold

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/unfold/matrix"
)

// ToyBatch collects the outcome of RunToys. Results always holds one
// truth-shaped vector per toy; Errors and Chi2 hold entries only for the
// toys whose error computation succeeded, so they may be shorter.
type ToyBatch struct {
	Results [][]float64
	Errors  [][]float64
	Chi2    []float64
}

// randomizeVec adds a Gaussian fluctuation of width errs[i] to each entry
// in place. Zero-error bins stay fixed.
func randomizeVec(v, errs []float64, rng *rand.Rand) {
	for i := range v {
		if errs[i] != 0 {
			v[i] += rng.NormFloat64() * errs[i]
		}
	}
}

// RunToys repeats the unfold n times on randomized inputs. Each toy
// starts from a fresh cache generation; the measured vector is smeared by
// its errors unless the systematics treatment is SysNoMeasured, and under
// SysAll a toy variant of the response is drawn as well. Per-toy errors
// and chi-squared against the training truth are recorded when they can
// be computed; a toy whose error computation fails still contributes its
// result vector.
//
// The engine is restored to its nominal inputs and an idle cache
// afterwards; the random stream is left advanced.
func (e *Engine) RunToys(n int) (*ToyBatch, error) {
	if n <= 0 {
		return nil, unfoldErrorf("RunToys", ErrBadToyCount)
	}

	saved := e.treatment
	nominal := e.res
	truth := nominal.Truth()

	batch := &ToyBatch{Results: make([][]float64, 0, n)}
	for i := 0; i < n; i++ {
		e.reset()
		if e.sys != SysNoMeasured {
			randomizeVec(e.vmeasured(), e.emeasured(), e.rng)
		}
		if e.sys == SysAll {
			e.res = nominal.Toy(e.rng)
		}

		batch.Results = append(batch.Results, e.Vunfold())
		if saved != TreatNone && e.UnfoldWithErrors(TreatErrors, false) {
			ev, err := e.EunfoldV(TreatErrors)
			if err == nil {
				batch.Errors = append(batch.Errors, ev)
				batch.Chi2 = append(batch.Chi2, e.Chi2(truth, TreatErrors))
			}
		}
	}

	e.res = nominal
	e.reset()
	e.treatment = saved
	return batch, nil
}

// RunToy runs a single toy and returns its result, its per-bin errors
// (nil when unavailable) and its chi-squared against the training truth
// (Chi2Fail when unavailable).
func (e *Engine) RunToy() ([]float64, []float64, float64, error) {
	batch, err := e.RunToys(1)
	if err != nil {
		return nil, nil, Chi2Fail, err
	}
	rec := batch.Results[0]
	var ev []float64
	chi2 := Chi2Fail
	if len(batch.Errors) > 0 {
		ev = batch.Errors[0]
		chi2 = batch.Chi2[0]
	}
	return rec, ev, chi2, nil
}

// computeToyErrMat fills the toy-sample covariance from a batch of NToys
// unfolds using the unbiased estimator
//
//	Cov(i,j) = (sum x_i x_j - sum x_i * sum x_j / N) / (N - 1)
//
// which needs at least two toys. The batch invalidates the cache, so the
// nominal unfold is redone before the matrix is stored.
func (e *Engine) computeToyErrMat() {
	if e.ntoys <= 1 {
		if e.diag != nil {
			fmt.Fprintf(e.diag, "toy covariance needs at least 2 toys, have %d\n", e.ntoys)
		}
		return
	}
	batch, err := e.RunToys(e.ntoys)
	if err != nil {
		return
	}
	n := len(batch.Results)

	sum := make([]float64, e.nt)
	sum2, _ := matrix.NewDense(e.nt, e.nt)
	for _, x := range batch.Results {
		for i := 0; i < e.nt; i++ {
			sum[i] += x[i]
			for j := 0; j < e.nt; j++ {
				v, _ := sum2.At(i, j)
				_ = sum2.Set(i, j, v+x[i]*x[j])
			}
		}
	}

	errMat, _ := matrix.NewDense(e.nt, e.nt)
	norm := 1.0 / float64(n-1)
	for i := 0; i < e.nt; i++ {
		for j := 0; j < e.nt; j++ {
			s2, _ := sum2.At(i, j)
			_ = errMat.Set(i, j, norm*(s2-sum[i]*sum[j]/float64(n)))
		}
	}

	// RunToys left the cache idle; restore the nominal result so callers
	// see a consistent unfolded state alongside the toy covariance.
	e.runUnfold()
	if e.c.status != StatusUnfolded {
		return
	}
	e.c.errMat = errMat
	e.c.haveErrMat = true
}
