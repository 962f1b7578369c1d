package unfold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/unfold"
)

// TestInvert_RecoversTruth folds a known truth through a migrating
// response and checks the pseudo-inverse undoes it.
func TestInvert_RecoversTruth(t *testing.T) {
	res := mustResponse(t, 2, 2,
		[]float64{0.8, 0.2, 0.2, 0.8},
		[]float64{30, 70})
	// Measured = fold of the truth we want back.
	meas := unfold.NewDistribution([]float64{38, 62}, nil)

	e, err := unfold.New(unfold.AlgInvert, res, meas)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{30, 70}, e.Vunfold(), 1e-6)
}

// TestInvert_Rectangular checks the least-squares behaviour with more
// measured than truth bins.
func TestInvert_Rectangular(t *testing.T) {
	res := mustResponse(t, 3, 2,
		[]float64{1, 0, 0, 1, 0, 0},
		[]float64{5, 7})
	meas := unfold.NewDistribution([]float64{5, 7, 0}, nil)

	e, err := unfold.New(unfold.AlgInvert, res, meas)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5, 7}, e.Vunfold(), 1e-9)
	assert.Equal(t, 2, e.NumTruth())
	assert.Equal(t, 3, e.NumMeasured())
}

// TestBinByBin_CorrectionFactors applies the training-sample ratios to a
// fresh measurement.
func TestBinByBin_CorrectionFactors(t *testing.T) {
	// Training: truth (100, 50) folds to (50, 40), so the factors are
	// 2 and 1.25.
	res := mustResponse(t, 2, 2,
		[]float64{0.5, 0, 0, 0.8},
		[]float64{100, 50})
	meas := unfold.NewDistribution([]float64{60, 20}, nil)

	e, err := unfold.New(unfold.AlgBinByBin, res, meas)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{120, 25}, e.Vunfold(), 1e-9)
}

// TestBinByBin_RequiresSquare fails the unfold for unequal binnings.
func TestBinByBin_RequiresSquare(t *testing.T) {
	res := mustResponse(t, 3, 2,
		[]float64{1, 0, 0, 1, 0, 0},
		[]float64{5, 7})
	meas := unfold.NewDistribution([]float64{5, 7, 0}, nil)

	e, err := unfold.New(unfold.AlgBinByBin, res, meas)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, e.Vunfold())
	assert.True(t, e.Failed())
}

// TestBayes_IdentityResponse converges immediately when there is no
// migration: every iteration reproduces the measurement.
func TestBayes_IdentityResponse(t *testing.T) {
	res := identityResponse(t)
	meas := unfold.NewDistribution([]float64{10, 20, 30}, nil)

	e, err := unfold.New(unfold.AlgBayes, res, meas)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 20, 30}, e.Vunfold(), 1e-9)

	ev, err := e.EunfoldV(unfold.TreatErrors)
	require.NoError(t, err)
	for i, v := range ev {
		assert.Greater(t, v, 0.0, "bin %d", i)
	}
}

// TestBayes_RegParm checks the declared iteration range and rejection of
// values outside it.
func TestBayes_RegParm(t *testing.T) {
	e, err := unfold.New(unfold.AlgBayes, identityResponse(t),
		unfold.NewDistribution([]float64{10, 20, 30}, nil))
	require.NoError(t, err)

	assert.Equal(t, 1.0, e.GetMinParm())
	assert.Equal(t, 15.0, e.GetMaxParm())
	assert.Equal(t, 1.0, e.GetStepSizeParm())
	assert.Equal(t, 4.0, e.GetDefaultParm())
	assert.Equal(t, 4.0, e.GetRegParm())

	_ = e.Vunfold()
	require.NoError(t, e.SetRegParm(8))
	assert.Equal(t, unfold.StatusIdle, e.Status(), "regularisation change starts a new generation")
	assert.Equal(t, 8.0, e.GetRegParm())

	assert.ErrorIs(t, e.SetRegParm(0), unfold.ErrBadRegParm)
	assert.ErrorIs(t, e.SetRegParm(16), unfold.ErrBadRegParm)
	assert.ErrorIs(t, e.SetRegParm(2.5), unfold.ErrBadRegParm)
}

// TestNone_CopiesPrefix copies the first min(nm, nt) bins and leaves the
// remainder zero.
func TestNone_CopiesPrefix(t *testing.T) {
	res := mustResponse(t, 2, 3,
		[]float64{1, 0, 0, 0, 1, 0},
		[]float64{5, 7, 9})
	meas := unfold.NewDistribution([]float64{5, 7}, nil)

	e, err := unfold.New(unfold.AlgNone, res, meas)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 0}, e.Vunfold())
	assert.Equal(t, unfold.RegParmUnset, e.GetRegParm())
}

// TestRegisteredAlgorithms lists at least the built-in strategies.
func TestRegisteredAlgorithms(t *testing.T) {
	got := unfold.RegisteredAlgorithms()
	for _, want := range []unfold.Algorithm{
		unfold.AlgNone, unfold.AlgBayes, unfold.AlgBinByBin, unfold.AlgInvert,
	} {
		assert.Contains(t, got, want)
	}
}
