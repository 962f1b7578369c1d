package unfold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/hist"
	"github.com/katalvlaran/unfold/unfold"
)

// TestDistribution_FromHistogram flattens a filled histogram and feeds it
// straight into an engine.
func TestDistribution_FromHistogram(t *testing.T) {
	h, err := hist.NewUniform("meas", 3, 0, 3)
	require.NoError(t, err)
	require.NoError(t, h.SetContent(0, 10))
	require.NoError(t, h.SetContent(1, 20))
	require.NoError(t, h.SetContent(2, 30))

	d, err := unfold.FromHistogram(h, false, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, d.Values)

	e, err := unfold.New(unfold.AlgInvert, identityResponse(t), d)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 20, 30}, e.Vunfold(), 1e-9)
}

// TestDistribution_ToHistogramRoundTrip rebuilds a histogram from the
// unfolded result.
func TestDistribution_ToHistogramRoundTrip(t *testing.T) {
	d := unfold.NewDistribution([]float64{5, 7}, []float64{1, 2})
	h, err := d.ToHistogram("rec", []float64{0, 1, 2}, false)
	require.NoError(t, err)

	v, err := h.Content(1)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	ev, err := h.Error(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, ev)
}

// TestDistribution_Clone is a deep copy.
func TestDistribution_Clone(t *testing.T) {
	d := unfold.NewDistribution([]float64{1, 2}, []float64{3, 4})
	cp := d.Clone()
	cp.Values[0] = 99
	assert.Equal(t, 1.0, d.Values[0])
}
