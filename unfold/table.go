package unfold

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// PrintTable writes a bin-by-bin summary of the unfolding to w: the
// training truth and measured projections, the supplied reference truth
// (optional, pass nil), the measured input, and the unfolded result with
// its error under the given treatment. When a reference truth is present
// the footer reports the chi-squared against it.
//
// TreatDefault resolves to the engine's current treatment; a failed
// error computation degrades the error column to TreatNone rather than
// aborting the table.
func (e *Engine) PrintTable(w io.Writer, truth *Distribution, t ErrorTreatment) error {
	t = e.resolveTreatment(t)
	if !validTreatment(t) {
		return unfoldErrorf("PrintTable", ErrUnknownTreatment)
	}
	if truth != nil && truth.Len() != e.nt {
		return unfoldErrorf("PrintTable", ErrDimensionMismatch)
	}

	rec := e.Vunfold()
	if !e.UnfoldWithErrors(t, false) {
		t = TreatNone
	}
	ev, err := e.EunfoldV(t)
	if err != nil {
		return err
	}

	trainTruth := e.res.Truth()
	trainMeas := e.res.Measured()
	vm := e.Vmeasured()

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "bin\ttrain true\ttrain meas\ttrue\tmeasured\tunfolded\terror\t")
	nb := max(e.nm, e.nt)
	for i := 0; i < nb; i++ {
		fmt.Fprintf(tw, "%d\t", i)
		writeCell(tw, trainTruth, i)
		writeCell(tw, trainMeas, i)
		if truth != nil {
			writeCell(tw, truth.Values, i)
		} else {
			fmt.Fprint(tw, "\t")
		}
		writeCell(tw, vm, i)
		writeCell(tw, rec, i)
		writeCell(tw, ev, i)
		fmt.Fprintln(tw)
	}
	if truth != nil {
		fmt.Fprintf(tw, "\t\t\t\t\t\tchi2=%.4g\t\n", e.Chi2(truth.Values, t))
	}
	return tw.Flush()
}

// writeCell prints v[i] when in range, an empty cell otherwise. The
// ragged side of unequal binnings shows up as blanks, not zeros.
func writeCell(w io.Writer, v []float64, i int) {
	if i < len(v) {
		fmt.Fprintf(w, "%.5g\t", v[i])
		return
	}
	fmt.Fprint(w, "\t")
}
