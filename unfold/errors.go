package unfold

import (
	"errors"
	"fmt"
)

// Package-level sentinel errors. Callers match them with errors.Is; the
// engine wraps them with the failing operation tag via unfoldErrorf.
var (
	// ErrNilResponse indicates a nil response model.
	ErrNilResponse = errors.New("unfold: response must not be nil")

	// ErrNilMeasured indicates a nil measured distribution.
	ErrNilMeasured = errors.New("unfold: measured distribution must not be nil")

	// ErrAlgorithmUnavailable indicates an algorithm tag with no registered
	// strategy implementation.
	ErrAlgorithmUnavailable = errors.New("unfold: algorithm not available")

	// ErrUnknownTreatment indicates an error-treatment value outside the
	// enumerated set.
	ErrUnknownTreatment = errors.New("unfold: unrecognised error treatment")

	// ErrUnknownBiasMethod indicates a bias-method value outside the
	// enumerated set.
	ErrUnknownBiasMethod = errors.New("unfold: unrecognised bias method")

	// ErrBiasNotComputed indicates a bias accessor called before
	// CalculateBias succeeded for the current cache generation.
	ErrBiasNotComputed = errors.New("unfold: bias has not been calculated")

	// ErrDimensionMismatch indicates vectors or matrices whose sizes do not
	// match the response binning.
	ErrDimensionMismatch = errors.New("unfold: dimension mismatch")

	// ErrBadRegParm indicates a regularisation value outside the strategy's
	// declared range, or one set on a strategy without a parameter.
	ErrBadRegParm = errors.New("unfold: invalid regularisation parameter")

	// ErrBadToyCount indicates a non-positive toy count.
	ErrBadToyCount = errors.New("unfold: toy count must be positive")
)

// unfoldErrorf wraps a sentinel with the operation tag that failed.
func unfoldErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
