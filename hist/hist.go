package hist

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrNilHistogram indicates a nil *Histogram argument.
	ErrNilHistogram = errors.New("hist: nil histogram")

	// ErrBadEdges indicates fewer than two edges, or edges that are not
	// strictly increasing or not finite.
	ErrBadEdges = errors.New("hist: invalid bin edges")

	// ErrOutOfRange indicates a bin index outside [0, NBins).
	ErrOutOfRange = errors.New("hist: bin index out of range")

	// ErrDimensionMismatch indicates a vector whose length does not match
	// the histogram's bin count under the requested overflow policy.
	ErrDimensionMismatch = errors.New("hist: dimension mismatch")
)

// Histogram is a one-dimensional binned distribution with dedicated
// under- and overflow slots. Contents and errors are stored per bin;
// errors default to zero until set.
type Histogram struct {
	name   string
	edges  []float64 // len = nbins+1, strictly increasing
	counts []float64 // len = nbins+2: [underflow, bins..., overflow]
	errs   []float64 // same layout as counts
}

// New creates a histogram over the given edges. The edges slice is copied;
// it must hold at least two strictly increasing finite values.
func New(name string, edges []float64) (*Histogram, error) {
	if len(edges) < 2 {
		return nil, ErrBadEdges
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, ErrBadEdges
		}
		if i > 0 && e <= edges[i-1] {
			return nil, ErrBadEdges
		}
	}
	ec := make([]float64, len(edges))
	copy(ec, edges)
	n := len(edges) - 1

	return &Histogram{
		name:   name,
		edges:  ec,
		counts: make([]float64, n+2),
		errs:   make([]float64, n+2),
	}, nil
}

// NewUniform creates a histogram with nbins equal-width bins on [lo, hi).
func NewUniform(name string, nbins int, lo, hi float64) (*Histogram, error) {
	if nbins < 1 || !(hi > lo) {
		return nil, ErrBadEdges
	}
	edges := make([]float64, nbins+1)
	width := (hi - lo) / float64(nbins)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[nbins] = hi // avoid accumulation error on the last edge

	return New(name, edges)
}

// Name returns the histogram name.
func (h *Histogram) Name() string { return h.name }

// NBins returns the number of in-range bins.
func (h *Histogram) NBins() int { return len(h.edges) - 1 }

// BinWidth returns the width of in-range bin i.
func (h *Histogram) BinWidth(i int) (float64, error) {
	if i < 0 || i >= h.NBins() {
		return 0, ErrOutOfRange
	}

	return h.edges[i+1] - h.edges[i], nil
}

// Content returns the content of in-range bin i.
func (h *Histogram) Content(i int) (float64, error) {
	if i < 0 || i >= h.NBins() {
		return 0, ErrOutOfRange
	}

	return h.counts[i+1], nil
}

// Error returns the error of in-range bin i.
func (h *Histogram) Error(i int) (float64, error) {
	if i < 0 || i >= h.NBins() {
		return 0, ErrOutOfRange
	}

	return h.errs[i+1], nil
}

// SetContent assigns the content of in-range bin i.
func (h *Histogram) SetContent(i int, v float64) error {
	if i < 0 || i >= h.NBins() {
		return ErrOutOfRange
	}
	h.counts[i+1] = v

	return nil
}

// SetError assigns the error of in-range bin i.
func (h *Histogram) SetError(i int, e float64) error {
	if i < 0 || i >= h.NBins() {
		return ErrOutOfRange
	}
	h.errs[i+1] = e

	return nil
}

// Underflow and Overflow expose the flow-slot contents.
func (h *Histogram) Underflow() float64 { return h.counts[0] }

// Overflow returns the overflow-slot content.
func (h *Histogram) Overflow() float64 { return h.counts[len(h.counts)-1] }

// SetUnderflow assigns the underflow content and error.
func (h *Histogram) SetUnderflow(v, e float64) {
	h.counts[0], h.errs[0] = v, e
}

// SetOverflow assigns the overflow content and error.
func (h *Histogram) SetOverflow(v, e float64) {
	h.counts[len(h.counts)-1], h.errs[len(h.errs)-1] = v, e
}

// Fill adds weight w at coordinate x, routing out-of-range values to the
// flow slots. The bin error accumulates in quadrature (sqrt of sum w^2).
func (h *Histogram) Fill(x, w float64) {
	idx := h.findBin(x)
	h.counts[idx] += w
	h.errs[idx] = math.Sqrt(h.errs[idx]*h.errs[idx] + w*w)
}

// findBin maps a coordinate to a storage index (0 = underflow,
// NBins+1 = overflow). Bins are half-open [lo, hi) except the last,
// which includes its upper edge.
func (h *Histogram) findBin(x float64) int {
	n := h.NBins()
	if x < h.edges[0] {
		return 0
	}
	if x > h.edges[n] {
		return n + 1
	}
	if x == h.edges[n] {
		return n
	}
	// sort.SearchFloat64s returns the first edge >= x; the bin index is one
	// less when x sits exactly on an edge.
	i := sort.SearchFloat64s(h.edges, x)
	if i < len(h.edges) && h.edges[i] == x {
		return i + 1
	}

	return i
}

// Clone returns a deep copy of the histogram.
func (h *Histogram) Clone() *Histogram {
	cp := &Histogram{
		name:   h.name,
		edges:  make([]float64, len(h.edges)),
		counts: make([]float64, len(h.counts)),
		errs:   make([]float64, len(h.errs)),
	}
	copy(cp.edges, h.edges)
	copy(cp.counts, h.counts)
	copy(cp.errs, h.errs)

	return cp
}
