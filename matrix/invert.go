// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// CondStatus classifies the conditioning of a matrix handed to Invert.
// The classification is observational: only ErrInversionFailed blocks the
// result, CondBad and CondPoor still come with a usable inverse.
type CondStatus int

const (
	// CondOK: the condition number is finite, non-negative and below CondMax.
	CondOK CondStatus = iota

	// CondBad: the solver reported a negative condition estimate, i.e. the
	// estimate itself is numerically invalid. Inversion is still attempted.
	CondBad

	// CondPoor: the condition number exceeds CondMax; the inverse is
	// returned but may be inaccurate.
	CondPoor
)

// String returns a short human-readable tag for the status.
func (s CondStatus) String() string {
	switch s {
	case CondBad:
		return "bad-condition"
	case CondPoor:
		return "poor-condition"
	default:
		return "ok"
	}
}

// CondMax is the condition-number threshold above which a matrix is
// classified CondPoor. The value tracks the float64 precision limit.
const CondMax = 1e17

// Invert computes the SVD-based pseudo-inverse of m.
// The pseudo-inverse of an r x c matrix is c x r. Returns the conditioning
// classification alongside the inverse; see InvertInto for the failure
// contract. Complexity: dominated by the SVD, O(min(r,c) * r * c).
func Invert(m *Dense) (*Dense, CondStatus, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, CondOK, matrixErrorf("Invert", err)
	}
	inv, err := NewDense(m.c, m.r)
	if err != nil {
		return nil, CondOK, matrixErrorf("Invert", err)
	}
	status, err := InvertInto(inv, m)
	if err != nil {
		return nil, status, err
	}

	return inv, status, nil
}

// InvertInto computes the pseudo-inverse of m and writes it into dst,
// resizing dst to c x r. dst == m is allowed (in-place inversion).
//
// Failure contract:
//   - factorization non-convergence or a singular value indistinguishable
//     from zero (relative to the largest one) is a hard ErrInversionFailed;
//     dst is left untouched.
//   - a negative condition estimate (CondBad) or a condition above CondMax
//     (CondPoor) is reported in the status, and the inverse is returned.
func InvertInto(dst, m *Dense) (CondStatus, error) {
	return InvertDiagnose(dst, m, "", nil)
}

// InvertDiagnose is InvertInto with an optional diagnostic report: when w
// is non-nil it receives the condition number and, after inversion, the
// maximum deviation of m * inverse(m) from the identity as a percentage.
// The report never influences the returned inverse. name labels the matrix
// in the report.
func InvertDiagnose(dst, m *Dense, name string, w io.Writer) (CondStatus, error) {
	if err := ValidateNotNil(dst); err != nil {
		return CondOK, matrixErrorf("Invert", err)
	}
	if err := ValidateNotNil(m); err != nil {
		return CondOK, matrixErrorf("Invert", err)
	}
	if name == "" {
		name = "matrix"
	}

	var svd mat.SVD
	if ok := svd.Factorize(toGonum(m), mat.SVDThin); !ok {
		if w != nil {
			fmt.Fprintf(w, "%s: SVD factorization did not converge\n", name)
		}
		return CondOK, matrixErrorf("Invert", ErrInversionFailed)
	}

	sv := svd.Values(nil) // descending order
	cond := svd.Cond()
	status := CondOK
	switch {
	case cond < 0:
		status = CondBad
	case cond > CondMax:
		status = CondPoor
	}
	if w != nil {
		fmt.Fprintf(w, "%s condition=%g (%s)\n", name, cond, status)
	}

	// Singular values below the numerical noise floor cannot be inverted:
	// an exactly rank-deficient matrix is a hard failure, not a warning.
	maxDim := m.r
	if m.c > maxDim {
		maxDim = m.c
	}
	tol := float64(maxDim) * machineEps * sv[0]
	for _, s := range sv {
		if s <= tol {
			if w != nil {
				fmt.Fprintf(w, "%s inversion failed: singular value %g below tolerance %g\n", name, s, tol)
			}
			return status, matrixErrorf("Invert", ErrInversionFailed)
		}
	}

	// pinv = V * diag(1/sigma) * U^T, assembled column-major over k.
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	k := len(sv)

	rows, cols := m.r, m.c
	pinv := make([]float64, cols*rows)
	for i := 0; i < cols; i++ {
		base := i * rows
		for l := 0; l < k; l++ {
			vil := v.At(i, l) / sv[l]
			if vil == 0 {
				continue
			}
			for j := 0; j < rows; j++ {
				pinv[base+j] += vil * u.At(j, l)
			}
		}
	}

	// Keep the original content alive for the diagnostic product before
	// overwriting dst (dst may alias m).
	var orig *Dense
	if w != nil {
		orig = m.Clone()
	}

	if err := dst.ResizeTo(cols, rows); err != nil {
		return status, matrixErrorf("Invert", err)
	}
	copy(dst.data, pinv)

	if w != nil {
		if prod, err := Mul(orig, dst); err == nil {
			if dev, err := MaxIdentityDeviation(prod); err == nil {
				fmt.Fprintf(w, "inverse %s %g%% maximum error\n", name, 100.0*dev)
			}
		}
	}

	return status, nil
}

// machineEps is the float64 unit roundoff used in the rank tolerance.
const machineEps = 2.220446049250313e-16

// toGonum copies m into a gonum dense matrix for factorization.
func toGonum(m *Dense) *mat.Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return mat.NewDense(m.r, m.c, cp)
}
