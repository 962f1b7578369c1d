// SPDX-License-Identifier: MIT
// Package matrix: deterministic dense kernels. All loops use fixed i->k->j
// (Mul) or i->j orders so identical inputs produce identical results.

package matrix

import (
	"fmt"
	"math"
)

// Operation name constants for unified error wrapping.
const (
	opMul       = "Mul"
	opTranspose = "Transpose"
	opMatVec    = "MatVec"
	opABAT      = "ABAT"
	opQuadForm  = "QuadForm"
)

// matrixErrorf wraps err with an operation tag, preserving the original
// error via %w so callers can still use errors.Is.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Mul performs standard matrix multiplication C = A x B (no aliasing).
// Zero entries of A are skipped; the loop order is i->k->j over row-major
// strides. Complexity: O(r*n*c).
func Mul(a, b *Dense) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	aRows, aCols, bCols := a.r, a.c, b.c
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	var rowA, rowB, rowR int
	var av float64
	for i := 0; i < aRows; i++ {
		rowA = i * aCols
		rowR = i * bCols
		for k := 0; k < aCols; k++ {
			av = a.data[rowA+k]
			if av == 0 {
				continue // skip zero for performance
			}
			rowB = k * bCols
			for j := 0; j < bCols; j++ {
				res.data[rowR+j] += av * b.data[rowB+j]
			}
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped.
// The original matrix is never mutated. Complexity: O(r*c).
func Transpose(m *Dense) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	res, err := NewDense(m.c, m.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	for i := 0; i < m.r; i++ {
		base := i * m.c
		for j := 0; j < m.c; j++ {
			res.data[j*m.r+i] = m.data[base+j]
		}
	}

	return res, nil
}

// MatVec computes y = m * x for a column vector x with len(x) == m.Cols().
// Complexity: O(r*c), O(r) space for y.
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}

	y := make([]float64, m.r)
	var acc, xv float64
	for i := 0; i < m.r; i++ {
		acc = 0
		base := i * m.c
		for j := 0; j < m.c; j++ {
			xv = x[j]
			if xv != 0 { // skip zero multiplications
				acc += m.data[base+j] * xv
			}
		}
		y[i] = acc
	}

	return y, nil
}

// ABAT computes A * B * Atransposed, the congruence transform used to
// propagate a covariance B (n x n) through a linear map A (m x n).
// Complexity: O(m*n*n + m*m*n).
func ABAT(a, b *Dense) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opABAT, err)
	}
	if err := ValidateSquare(b); err != nil {
		return nil, matrixErrorf(opABAT, err)
	}

	ab, err := Mul(a, b)
	if err != nil {
		return nil, matrixErrorf(opABAT, err)
	}
	at, err := Transpose(a)
	if err != nil {
		return nil, matrixErrorf(opABAT, err)
	}
	res, err := Mul(ab, at)
	if err != nil {
		return nil, matrixErrorf(opABAT, err)
	}

	return res, nil
}

// QuadForm computes the scalar quadratic form r^T * W * r for a square
// weight matrix W and residual vector r with len(r) == W.Rows().
func QuadForm(w *Dense, r []float64) (float64, error) {
	if err := ValidateSquare(w); err != nil {
		return 0, matrixErrorf(opQuadForm, err)
	}
	if err := ValidateVecLen(r, w.r); err != nil {
		return 0, matrixErrorf(opQuadForm, err)
	}

	var total, ri float64
	for i := 0; i < w.r; i++ {
		ri = r[i]
		if ri == 0 {
			continue
		}
		base := i * w.c
		for j := 0; j < w.c; j++ {
			total += ri * w.data[base+j] * r[j]
		}
	}

	return total, nil
}

// MaxIdentityDeviation returns max over all (i,j) of |p[i,j] - I[i,j]|.
// Used as the inversion quality diagnostic on the product m * inverse(m).
func MaxIdentityDeviation(p *Dense) (float64, error) {
	if err := ValidateSquare(p); err != nil {
		return 0, matrixErrorf(opQuadForm, err)
	}

	var m, d float64
	for i := 0; i < p.r; i++ {
		base := i * p.c
		for j := 0; j < p.c; j++ {
			d = p.data[base+j]
			if i == j {
				d -= 1.0
			}
			if math.Abs(d) > m {
				m = math.Abs(d)
			}
		}
	}

	return m, nil
}
