package sampling

import (
	"fmt"
	"io"
	"sort"
)

// WriteText writes a human-readable summary showing at most top frequency
// rows (all rows when top <= 0).
func (r *Report) WriteText(w io.Writer, top int) error {
	rows := r.Frequencies
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	if _, err := fmt.Fprintf(w, "Samples: %d (ok %d, failed %d)\nDistinct: %d\nEntropy: %.4f bits\n",
		r.Samples, r.Successes, r.Failures, r.Distinct, r.Entropy); err != nil {
		return err
	}
	if r.Length != nil {
		fmt.Fprintf(w, "Length: mean %.2f stddev %.2f median %.1f min %.0f max %.0f\n",
			r.Length.Mean, r.Length.StdDev, r.Length.Median, r.Length.Min, r.Length.Max)
	}
	if r.Fit != nil {
		fmt.Fprintf(w, "Chi-square: %.4f (df %.0f) p=%.4f unexpected=%d\n",
			r.Fit.Statistic, r.Fit.DegreesOfFreedom, r.Fit.PValue, r.Fit.Unexpected)
	}

	if len(r.FailureCodes) > 0 {
		codes := make([]string, 0, len(r.FailureCodes))
		for code := range r.FailureCodes {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		fmt.Fprintln(w, "Failures:")
		for _, code := range codes {
			fmt.Fprintf(w, "  %-32s %d\n", code, r.FailureCodes[code])
		}
	}

	fmt.Fprintln(w, "Frequencies:")
	for _, row := range rows {
		fmt.Fprintf(w, "  %-32s %6d  %6.2f%%\n", row.Value, row.Count, row.Share*100)
	}
	return nil
}
