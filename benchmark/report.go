package benchmark

import (
	"fmt"
	"io"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/docker/go-units"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Summary is a one line description of r.
func (r *Result) Summary() string {
	return fmt.Sprintf("%s: %.6f ms/iteration (±%.6f), average length %.6f, %d iterations in %s",
		r.Solver, r.TimePerIterationMs, r.TimeStdDevMs, r.AverageResult, r.Iterations, units.HumanDuration(r.Elapsed))
}

// Table renders the comparison with one row per solver.
func (c *Comparison) Table() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (closed form length %.6f)", c.Curve, c.Reference))
	t.AppendHeader(table.Row{"Solver", "Length", "Relative error", "ms/iteration", "Std dev (ms)", "Elapsed"})
	for _, r := range c.Results {
		t.AppendRow(table.Row{
			r.Solver,
			fmt.Sprintf("%.6f", r.AverageResult),
			fmt.Sprintf("%.2e", r.RelativeError),
			fmt.Sprintf("%.6f", r.TimePerIterationMs),
			fmt.Sprintf("%.6f", r.TimeStdDevMs),
			units.HumanDuration(r.Elapsed),
		})
	}
	return t.Render()
}

// WriteHistogram prints a text histogram of the per window call times of r.
func WriteHistogram(w io.Writer, r *Result, bins, width int) error {
	if len(r.WindowTimesMs) == 0 {
		return errors.New("result has no timing windows")
	}
	if bins < 1 {
		bins = 1
	}
	if least, most := lo.Min(r.WindowTimesMs), lo.Max(r.WindowTimesMs); least == most {
		// every window took the same time; there is nothing to bucket
		_, err := fmt.Fprintf(w, "%.6f ms/iteration in all %d windows\n", least, len(r.WindowTimesMs))
		return err
	}
	hist := histogram.Hist(bins, r.WindowTimesMs)
	return histogram.Fprint(w, hist, histogram.Linear(width))
}
