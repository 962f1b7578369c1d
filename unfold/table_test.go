package unfold_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/unfold"
)

// TestPrintTable_Columns renders the summary and checks the interesting
// cells are present.
func TestPrintTable_Columns(t *testing.T) {
	res := identityResponse(t)
	meas := unfold.NewDistribution([]float64{10, 20, 30}, nil)
	e, err := unfold.New(unfold.AlgInvert, res, meas)
	require.NoError(t, err)

	var sb strings.Builder
	truth := unfold.NewDistribution([]float64{10, 20, 30}, nil)
	require.NoError(t, e.PrintTable(&sb, truth, unfold.TreatErrors))

	out := sb.String()
	assert.Contains(t, out, "unfolded")
	assert.Contains(t, out, "train true")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "chi2=")
	assert.Equal(t, 5, strings.Count(out, "\n"), "header, three bins, chi2 footer")
}

// TestPrintTable_NoTruth omits the reference column and the footer.
func TestPrintTable_NoTruth(t *testing.T) {
	res := identityResponse(t)
	meas := unfold.NewDistribution([]float64{10, 20, 30}, nil)
	e, err := unfold.New(unfold.AlgInvert, res, meas)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, e.PrintTable(&sb, nil, unfold.TreatDefault))
	assert.NotContains(t, sb.String(), "chi2=")
}

// TestPrintTable_Errors validates the inputs.
func TestPrintTable_Errors(t *testing.T) {
	res := identityResponse(t)
	meas := unfold.NewDistribution([]float64{10, 20, 30}, nil)
	e, err := unfold.New(unfold.AlgInvert, res, meas)
	require.NoError(t, err)

	var sb strings.Builder
	err = e.PrintTable(&sb, unfold.NewDistribution([]float64{1}, nil), unfold.TreatErrors)
	assert.ErrorIs(t, err, unfold.ErrDimensionMismatch)
	err = e.PrintTable(&sb, nil, unfold.ErrorTreatment(42))
	assert.ErrorIs(t, err, unfold.ErrUnknownTreatment)
}
