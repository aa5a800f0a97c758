package analyze

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/salarylab/hh-research/pkg/vacancy"
)

// WriteText renders the report as a plain-text summary, with at most topN
// rows per frequency table.
func (r *Report) WriteText(w io.Writer, topN int) error {
	fmt.Fprintf(w, "Number of vacancies: %d (%d with salary)\n", r.TotalVacancies, r.WithSalary)

	if r.Combined.Count > 0 {
		fmt.Fprintf(w, "\nSalary (average of From/To per vacancy, %d records):\n", r.Combined.Count)
		fmt.Fprintf(w, "  Min    : %.0f\n", r.Combined.Min)
		fmt.Fprintf(w, "  Max    : %.0f\n", r.Combined.Max)
		fmt.Fprintf(w, "  Mean   : %.0f\n", r.Combined.Mean)
		fmt.Fprintf(w, "  Median : %.0f\n", r.Combined.Median)
		fmt.Fprintf(w, "  StdDev : %.0f\n", r.Combined.StdDev)

		fmt.Fprint(w, "\nBound statistics:\n")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
		for _, col := range []struct {
			name  string
			stats BoundStats
		}{{"From", r.From}, {"To", r.To}} {
			fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\n",
				col.name, col.stats.Count, col.stats.Mean, col.stats.StdDev,
				col.stats.Min, col.stats.Q25, col.stats.Median, col.stats.Q75, col.stats.Max)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	writeFreqTable(w, "Most frequent key skills", r.Keywords.Top(topN))
	writeFreqTable(w, "Most frequent description words", r.Words.Top(topN))

	return nil
}

func writeFreqTable(w io.Writer, title string, table FreqTable) {
	if len(table) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, row := range table {
		fmt.Fprintf(w, "  %-30s %d\n", row.Token, row.Count)
	}
}

// WritePreview prints up to n salary-bearing records in tabular form,
// mirroring the dataset head the research tool shows before the statistics.
func WritePreview(w io.Writer, d *vacancy.Dataset, n int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Employer\tFrom\tTo\tExperience\tSchedule")

	shown := 0
	for i := 0; i < d.Len() && shown < n; i++ {
		if !d.HasSalary[i] {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			d.Employers[i],
			previewBound(d.From[i]),
			previewBound(d.To[i]),
			d.Experience[i],
			d.Schedule[i])
		shown++
	}

	return tw.Flush()
}

func previewBound(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
