// Package unfold implements an algorithm-agnostic statistical unfolding
// engine: given a measured, smeared binned distribution and a response
// model describing how a true distribution maps to measurements, it
// estimates the true distribution and propagates uncertainty through a
// selected inversion strategy.
//
// The engine is built around a lazy, resettable cache with an explicit
// status machine (idle -> unfolded | failed). The first access to the
// result triggers the selected strategy exactly once per cache
// generation; a failed unfold is sticky until the next reset. Error
// treatments (diagonal errors, full covariance, toy-derived covariance)
// are a property of the query, not of the algorithm, so the same unfold
// can be examined under several treatments without redoing the inversion.
//
// Uncertainty machinery:
//   - RunToys repeats the unfold on stochastically smeared inputs and
//     feeds both the empirical toy covariance (TreatToyCov) and the bias
//     protocols.
//   - CalculateBias quantifies systematic deviation from a reference
//     truth via three protocols: a deterministic estimator, a toy-based
//     closure test, and a doubly stochastic asimov test.
//
// Randomness is never hidden: every engine owns one explicit *rand.Rand
// (WithSeed / WithRand), toys consume it strictly in order, and Clone
// derives an independent stream for the copy. Concrete strategies beyond
// the built-in set (AlgNone, AlgBayes, AlgBinByBin, AlgInvert) plug in
// through RegisterMethod; unregistered algorithm tags are a structured
// ErrAlgorithmUnavailable, never a silent substitution.
package unfold
