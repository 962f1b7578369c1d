// Package hist implements the binned-distribution boundary of the
// unfolding library: a one-dimensional histogram with under/overflow
// slots and the conversions between histograms and the flat vectors the
// engine works on.
//
// The engine itself never interprets binning beyond a flat index space;
// the two policies that shape a conversion are captured here:
//
//   - includeOverflow: when true, the under- and overflow slots become the
//     first and last entries of the flat vector, so a histogram with n
//     in-range bins maps to a vector of length n+2.
//   - useDensity: when true, contents and errors are divided by the bin
//     width on the way out and multiplied back on the way in. Flow bins
//     have no width and are passed through unscaled.
package hist
