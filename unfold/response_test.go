package unfold_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/matrix"
	"github.com/katalvlaran/unfold/unfold"
)

// TestDenseResponse_Construction checks the derived projections and the
// dimension validation.
func TestDenseResponse_Construction(t *testing.T) {
	m, err := matrix.NewDenseData(2, 2, []float64{0.5, 0, 0, 0.8})
	require.NoError(t, err)

	res, err := unfold.NewDenseResponse(m, []float64{100, 50}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NumTruth())
	assert.Equal(t, 2, res.NumMeasured())
	assert.Equal(t, []float64{100, 50}, res.Truth())
	assert.Equal(t, []float64{50, 40}, res.Measured(), "training measured is the fold of the truth")

	_, err = unfold.NewDenseResponse(nil, []float64{1}, nil)
	assert.ErrorIs(t, err, unfold.ErrNilResponse)
	_, err = unfold.NewDenseResponse(m, []float64{1, 2, 3}, nil)
	assert.ErrorIs(t, err, unfold.ErrDimensionMismatch)
	_, err = unfold.NewDenseResponse(m, []float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, unfold.ErrDimensionMismatch)
}

// TestDenseResponse_Fold projects an arbitrary truth vector.
func TestDenseResponse_Fold(t *testing.T) {
	res := mustResponse(t, 2, 2,
		[]float64{0.8, 0.2, 0.2, 0.8},
		[]float64{30, 70})

	folded, err := res.Fold([]float64{10, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{8, 2}, folded, 1e-12)

	_, err = res.Fold([]float64{1, 2, 3})
	assert.ErrorIs(t, err, unfold.ErrDimensionMismatch)
}

// TestDenseResponse_ToyDeterministic draws toys from equal seeds and
// expects identical variants; the nominal response must stay untouched.
func TestDenseResponse_ToyDeterministic(t *testing.T) {
	res := mustResponse(t, 2, 2,
		[]float64{100, 20, 20, 100},
		[]float64{30, 70})
	nominal := res.Matrix().Clone()

	a := res.Toy(rand.New(rand.NewSource(17)))
	b := res.Toy(rand.New(rand.NewSource(17)))
	c := res.Toy(rand.New(rand.NewSource(18)))

	assert.True(t, a.Matrix().Equal(b.Matrix(), 0), "same seed, same toy")
	assert.False(t, a.Matrix().Equal(c.Matrix(), 1e-12), "different seed, different toy")
	assert.True(t, res.Matrix().Equal(nominal, 0), "drawing a toy must not mutate the nominal response")
	assert.False(t, a.Matrix().Equal(nominal, 1e-12), "the toy is actually fluctuated")
}

// TestDenseResponse_CloneIndependence deep-copies the training vectors.
func TestDenseResponse_CloneIndependence(t *testing.T) {
	res := mustResponse(t, 2, 2,
		[]float64{1, 0, 0, 1},
		[]float64{5, 7})

	cp := res.Clone()
	require.NoError(t, cp.Matrix().Set(0, 0, 99))
	v, err := res.Matrix().At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "clone mutation must not leak back")
}

// TestDenseResponse_Conventions checks the flag options.
func TestDenseResponse_Conventions(t *testing.T) {
	m, err := matrix.NewDenseData(1, 1, []float64{1})
	require.NoError(t, err)

	plain, err := unfold.NewDenseResponse(m, []float64{3}, nil)
	require.NoError(t, err)
	assert.False(t, plain.UseOverflow())
	assert.False(t, plain.UseDensity())

	flagged, err := unfold.NewDenseResponse(m, []float64{3}, nil,
		unfold.WithOverflowBins(), unfold.WithDensityBins())
	require.NoError(t, err)
	assert.True(t, flagged.UseOverflow())
	assert.True(t, flagged.UseDensity())
}
