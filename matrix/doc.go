// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear-algebra primitives used by the
// unfolding engine: a row-major float64 Dense type, deterministic kernels
// (Mul, Transpose, MatVec, ABAT, QuadForm), and an SVD-based pseudo-inverse
// with conditioning diagnostics.
//
// Design rules:
//   - All public entry points validate fail-fast and return package
//     sentinel errors (match with errors.Is); no panics on user input.
//   - Every kernel uses fixed loop orders, so results are bit-stable
//     across runs for identical inputs.
//   - Inputs are never mutated unless the function name says so
//     (InvertInto with dst == m is the one sanctioned in-place form).
//
// The pseudo-inverse is backed by gonum's SVD factorization. Conditioning
// is classified, never silently ignored: a negative condition estimate is
// CondBad, a condition above CondMax is CondPoor, and both still return
// the inverse. Only a failed factorization or an exactly singular value
// spectrum is a hard ErrInversionFailed.
package matrix
