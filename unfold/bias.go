package unfold

import "math"

// CalculateBias quantifies the systematic deviation of the unfolding
// chain from a reference truth and stores the per-bin bias and its
// uncertainty on the engine (Vbias, Ebias).
//
// The reference truth defaults to the response's training truth when
// truth is nil. All three protocols run on a disposable sibling engine
// whose measured input is the expectation: the noiseless fold of the
// reference truth with count-statistics errors. The sibling shares this
// engine's random stream, so toy draws stay strictly ordered.
//
//   - BiasEstimator unfolds the expectation once and reports the
//     deviation from the reference truth, relative per bin where the
//     truth is non-zero and absolute where it is zero. ntoys is ignored.
//   - BiasClosure runs ntoys randomized unfolds and averages the
//     relative pull (toy - truth) / toy over bins with a non-zero toy
//     result. With a single toy the spread falls back to the root of the
//     summed squared deviations.
//   - BiasAsimov draws ntoys randomized truth vectors, and for each
//     folds and randomizes ntoys measurement toys, unfolding every one;
//     the bias is the mean relative deviation from the truth toy over
//     all ntoys*ntoys samples. The supplied truth is ignored: the truth
//     toys themselves are the reference.
func (e *Engine) CalculateBias(method BiasMethod, ntoys int, truth *Distribution) error {
	tv, te := e.biasTruth(truth)
	if len(tv) != e.nt {
		return unfoldErrorf("CalculateBias", ErrDimensionMismatch)
	}

	toy, err := e.biasEngine(tv)
	if err != nil {
		return err
	}

	var bias, sig []float64
	switch method {
	case BiasEstimator:
		bias, sig, err = biasEstimator(toy, tv, te)
	case BiasClosure:
		bias, sig, err = biasClosure(toy, tv, ntoys)
	case BiasAsimov:
		bias, sig, err = biasAsimov(toy, ntoys)
	default:
		return unfoldErrorf("CalculateBias", ErrUnknownBiasMethod)
	}
	if err != nil {
		return err
	}

	e.c.bias = bias
	e.c.biasErr = sig
	e.c.haveBias = true
	return nil
}

// CalculateBiasToys is the legacy entry point: zero toys selects the
// deterministic estimator, anything else the closure test.
func (e *Engine) CalculateBiasToys(ntoys int, truth *Distribution) error {
	if ntoys == 0 {
		return e.CalculateBias(BiasEstimator, 0, truth)
	}
	return e.CalculateBias(BiasClosure, ntoys, truth)
}

// biasTruth resolves the reference truth vector and its errors.
func (e *Engine) biasTruth(truth *Distribution) (tv, te []float64) {
	if truth != nil {
		tv = append([]float64(nil), truth.Values...)
		if truth.Errors != nil {
			te = append([]float64(nil), truth.Errors...)
		} else {
			te = make([]float64, len(tv))
		}
		return tv, te
	}
	return e.res.Truth(), e.res.TruthErrors()
}

// biasEngine builds the disposable sibling unfolding the expectation:
// the noiseless fold of the reference truth, with count-statistics errors.
func (e *Engine) biasEngine(tv []float64) (*Engine, error) {
	folded, err := e.res.Fold(tv)
	if err != nil {
		return nil, err
	}
	exp := &Distribution{Values: folded, Errors: sqrtAbs(folded)}

	toy, err := New(e.alg, e.res, exp,
		WithRand(e.rng), WithNToys(e.ntoys), WithSystematics(e.sys), WithDiagnostics(e.diag))
	if err != nil {
		return nil, err
	}
	if rp := e.m.RegParm(); rp != RegParmUnset {
		if err := toy.SetRegParm(rp); err != nil {
			return nil, err
		}
	}
	return toy, nil
}

// biasEstimator compares one deterministic unfold of the expectation with
// the reference truth.
func biasEstimator(toy *Engine, tv, te []float64) (bias, sig []float64, err error) {
	rec := toy.Vunfold()
	ev, err := toy.EunfoldV(TreatErrors)
	if err != nil {
		return nil, nil, err
	}

	nt := len(tv)
	bias = make([]float64, nt)
	sig = make([]float64, nt)
	for i := 0; i < nt; i++ {
		d := rec[i] - tv[i]
		s := math.Sqrt(te[i]*te[i] + ev[i]*ev[i])
		if tv[i] != 0 {
			bias[i] = d / tv[i]
			sig[i] = s / tv[i]
		} else {
			bias[i] = d
			sig[i] = s
		}
	}
	return bias, sig, nil
}

// biasClosure averages relative pulls over a batch of toy unfolds.
func biasClosure(toy *Engine, tv []float64, ntoys int) (bias, sig []float64, err error) {
	batch, err := toy.RunToys(ntoys)
	if err != nil {
		return nil, nil, err
	}

	nt := len(tv)
	n := len(batch.Results)
	pulls := make([][]float64, n)
	bias = make([]float64, nt)
	for i, rec := range batch.Results {
		pulls[i] = make([]float64, nt)
		for j := 0; j < nt; j++ {
			if rec[j] != 0 {
				pulls[i][j] = (rec[j] - tv[j]) / rec[j]
				bias[j] += pulls[i][j]
			}
		}
	}

	sig = make([]float64, nt)
	for j := 0; j < nt; j++ {
		mean := bias[j] / float64(n)
		var sum2 float64
		for i := 0; i < n; i++ {
			d := pulls[i][j] - mean
			sum2 += d * d
		}
		bias[j] = mean
		if n > 1 {
			sig[j] = math.Sqrt(sum2 / float64(n-1) / float64(n))
		} else {
			sig[j] = math.Sqrt(sum2)
		}
	}
	return bias, sig, nil
}

// biasAsimov runs the doubly stochastic truth-and-measurement grid.
func biasAsimov(toy *Engine, ntoys int) (bias, sig []float64, err error) {
	if ntoys <= 0 {
		return nil, nil, unfoldErrorf("CalculateBias", ErrBadToyCount)
	}
	res := toy.res
	nt := toy.nt
	truthErr := res.TruthErrors()

	var samples [][]float64
	for i := 0; i < ntoys; i++ {
		vtruth := res.Truth()
		randomizeVec(vtruth, truthErr, toy.rng)

		for j := 0; j < ntoys; j++ {
			folded, ferr := res.Fold(vtruth)
			if ferr != nil {
				return nil, nil, ferr
			}
			eMes := sqrtAbs(folded)
			randomizeVec(folded, eMes, toy.rng)

			toy.reset()
			toy.c.vMes = folded
			toy.c.eMes = eMes

			rec := toy.Vunfold()
			dev := make([]float64, nt)
			for b := 0; b < nt; b++ {
				if vtruth[b] > 0 {
					dev[b] = (vtruth[b] - rec[b]) / vtruth[b]
				}
			}
			samples = append(samples, dev)
		}
	}
	toy.reset()

	n := float64(len(samples))
	bias = make([]float64, nt)
	sig = make([]float64, nt)
	for b := 0; b < nt; b++ {
		var sum, sum2 float64
		for _, dev := range samples {
			sum += dev[b]
			sum2 += dev[b] * dev[b]
		}
		mean := sum / n
		bias[b] = mean
		if len(samples) > 1 {
			variance := math.Abs(sum2-sum*mean) / (n - 1)
			sig[b] = math.Sqrt(variance / n)
		}
	}
	return bias, sig, nil
}
