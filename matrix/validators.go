// SPDX-License-Identifier: MIT
// Package matrix: canonical validators shared by all kernels.
// Kernels call these before touching data, so every error surface carries
// the same sentinels in the same priority: nil -> shape -> vector length.

package matrix

// ValidateNotNil returns ErrNilMatrix when m is nil.
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return ErrNilMatrix
	}

	return nil
}

// ValidateSquare returns ErrNonSquare unless m is a non-nil square matrix.
func ValidateSquare(m *Dense) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.r != m.c {
		return ErrNonSquare
	}

	return nil
}

// ValidateMulCompatible checks that a and b are non-nil and a.Cols == b.Rows.
func ValidateMulCompatible(a, b *Dense) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.c != b.r {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateVecLen checks that x has exactly want elements.
func ValidateVecLen(x []float64, want int) error {
	if len(x) != want {
		return ErrDimensionMismatch
	}

	return nil
}
