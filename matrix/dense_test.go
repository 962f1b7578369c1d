// SPDX-License-Identifier: MIT

package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/matrix"
)

// TestNewDense_InvalidDimensions verifies that non-positive shapes are rejected.
func TestNewDense_InvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions, "zero rows must error")

	_, err = matrix.NewDense(3, -1)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions, "negative cols must error")
}

// TestNewDenseData_LengthMismatch verifies the data-length contract.
func TestNewDenseData_LengthMismatch(t *testing.T) {
	_, err := matrix.NewDenseData(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch, "short data must error")
}

// TestDense_AtSet exercises element access, bounds checking included.
func TestDense_AtSet(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)

	require.NoError(t, m.Set(1, 2, 42.0))
	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange, "row out of range")
	err = m.Set(0, 3, 1.0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange, "col out of range")
}

// TestDense_CloneIsDeep verifies that Clone copies the backing storage.
func TestDense_CloneIsDeep(t *testing.T) {
	m, err := matrix.NewDenseData(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 99.0))

	v, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "mutating the clone must not touch the original")
}

// TestDense_ResizeTo verifies reshaping discards content and zeroes storage.
func TestDense_ResizeTo(t *testing.T) {
	m, err := matrix.NewDenseData(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	require.NoError(t, m.ResizeTo(1, 2))
	assert.Equal(t, 1, m.Rows())
	assert.Equal(t, 2, m.Cols())
	v, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "resize must zero the content")

	assert.ErrorIs(t, m.ResizeTo(0, 1), matrix.ErrInvalidDimensions)
}

// TestDense_DiagAndEqual covers the diagonal accessor and tolerance compare.
func TestDense_DiagAndEqual(t *testing.T) {
	m, err := matrix.NewDenseData(2, 3, []float64{1, 0, 0, 0, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, m.Diag(), "diag of a 2x3 has length 2")

	o := m.Clone()
	require.NoError(t, o.Set(0, 0, 1+1e-12))
	assert.True(t, m.Equal(o, 1e-9), "within eps")
	assert.False(t, m.Equal(o, 1e-15), "outside eps")
	assert.False(t, m.Equal(nil, 1e-9), "nil never equals non-nil")
}

// TestIdentity builds the identity and checks a few entries.
func TestIdentity(t *testing.T) {
	id, err := matrix.Identity(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, id.Diag())
	v, err := id.At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}
