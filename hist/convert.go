package hist

// ToVector flattens the histogram contents into a vector. With
// includeOverflow the layout is [underflow, bins..., overflow], otherwise
// only the in-range bins. With useDensity each in-range content is divided
// by its bin width; flow slots are never scaled (they have no width).
func ToVector(h *Histogram, includeOverflow, useDensity bool) ([]float64, error) {
	return flatten(h, includeOverflow, useDensity, false)
}

// ToErrorVector flattens the per-bin errors with the same layout and
// density policy as ToVector.
func ToErrorVector(h *Histogram, includeOverflow, useDensity bool) ([]float64, error) {
	return flatten(h, includeOverflow, useDensity, true)
}

func flatten(h *Histogram, includeOverflow, useDensity, wantErrors bool) ([]float64, error) {
	if h == nil {
		return nil, ErrNilHistogram
	}

	src := h.counts
	if wantErrors {
		src = h.errs
	}
	n := h.NBins()

	var out []float64
	if includeOverflow {
		out = make([]float64, n+2)
		out[0] = src[0]
		out[n+1] = src[n+1]
		for i := 0; i < n; i++ {
			out[i+1] = scaled(h, src[i+1], i, useDensity)
		}
	} else {
		out = make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = scaled(h, src[i+1], i, useDensity)
		}
	}

	return out, nil
}

func scaled(h *Histogram, v float64, bin int, useDensity bool) float64 {
	if !useDensity {
		return v
	}

	return v / (h.edges[bin+1] - h.edges[bin])
}

// FromVector builds a histogram over the given edges from a flat value
// vector and an optional error vector (pass nil for zero errors). The
// vector layout must match the includeOverflow policy: NBins+2 entries
// with flow slots, NBins without.
func FromVector(name string, values, errs, edges []float64, includeOverflow bool) (*Histogram, error) {
	h, err := New(name, edges)
	if err != nil {
		return nil, err
	}
	n := h.NBins()

	want := n
	if includeOverflow {
		want = n + 2
	}
	if len(values) != want {
		return nil, ErrDimensionMismatch
	}
	if errs != nil && len(errs) != want {
		return nil, ErrDimensionMismatch
	}

	off := 0
	if includeOverflow {
		off = 1
		h.counts[0] = values[0]
		h.counts[n+1] = values[n+1]
		if errs != nil {
			h.errs[0] = errs[0]
			h.errs[n+1] = errs[n+1]
		}
	}
	for i := 0; i < n; i++ {
		h.counts[i+1] = values[i+off]
		if errs != nil {
			h.errs[i+1] = errs[i+off]
		}
	}

	return h, nil
}
