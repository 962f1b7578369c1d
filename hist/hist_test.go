package hist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/hist"
)

// TestNew_BadEdges rejects degenerate edge sets.
func TestNew_BadEdges(t *testing.T) {
	_, err := hist.New("h", []float64{1})
	assert.ErrorIs(t, err, hist.ErrBadEdges, "single edge")

	_, err = hist.New("h", []float64{0, 1, 1})
	assert.ErrorIs(t, err, hist.ErrBadEdges, "non-increasing edges")
}

// TestFill_RoutesFlowBins checks in-range, underflow and overflow routing.
func TestFill_RoutesFlowBins(t *testing.T) {
	h, err := hist.NewUniform("h", 2, 0, 2)
	require.NoError(t, err)

	h.Fill(0.5, 1)  // bin 0
	h.Fill(1.5, 2)  // bin 1
	h.Fill(-1.0, 3) // underflow
	h.Fill(5.0, 4)  // overflow
	h.Fill(2.0, 7)  // upper edge goes to the last bin

	v0, err := h.Content(0)
	require.NoError(t, err)
	v1, err := h.Content(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v0)
	assert.Equal(t, 9.0, v1)
	assert.Equal(t, 3.0, h.Underflow())
	assert.Equal(t, 4.0, h.Overflow())
}

// TestToVector_OverflowPolicy checks both layouts.
func TestToVector_OverflowPolicy(t *testing.T) {
	h, err := hist.NewUniform("h", 3, 0, 3)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.SetContent(i, float64(10*(i+1))))
	}
	h.SetUnderflow(1, 0)
	h.SetOverflow(2, 0)

	v, err := hist.ToVector(h, false, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, v)

	v, err = hist.ToVector(h, true, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 10, 20, 30, 2}, v)
}

// TestToVector_Density divides by the bin width, flow slots unscaled.
func TestToVector_Density(t *testing.T) {
	h, err := hist.New("h", []float64{0, 1, 3})
	require.NoError(t, err)
	require.NoError(t, h.SetContent(0, 4))
	require.NoError(t, h.SetContent(1, 4))
	h.SetOverflow(6, 0)

	v, err := hist.ToVector(h, true, true)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 4, 2, 6}, v, 1e-12)
}

// TestFromVector_RoundTrip converts out and back with errors.
func TestFromVector_RoundTrip(t *testing.T) {
	edges := []float64{0, 1, 2, 4}
	h, err := hist.FromVector("h", []float64{5, 7, 9}, []float64{1, 2, 3}, edges, false)
	require.NoError(t, err)

	v, err := hist.ToVector(h, false, false)
	require.NoError(t, err)
	e, err := hist.ToErrorVector(h, false, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, v)
	assert.Equal(t, []float64{1, 2, 3}, e)
}

// TestFromVector_LengthMismatch enforces the layout contract.
func TestFromVector_LengthMismatch(t *testing.T) {
	edges := []float64{0, 1, 2}
	_, err := hist.FromVector("h", []float64{1, 2, 3}, nil, edges, false)
	assert.ErrorIs(t, err, hist.ErrDimensionMismatch, "3 values for 2 bins without overflow")

	_, err = hist.FromVector("h", []float64{1, 2, 3, 4}, nil, edges, true)
	assert.ErrorIs(t, err, hist.ErrDimensionMismatch, "4 values for 2 bins with overflow")
}
