// Package analyze computes descriptive statistics and frequency tables over
// a collected vacancy dataset. The dataset is read-only input; all results
// live in the returned Report.
package analyze

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/salarylab/hh-research/pkg/vacancy"
)

// SalaryStats describes the per-record average of the two salary bounds
// across the salary-bearing subset.
type SalaryStats struct {
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
}

// BoundStats describes one salary bound column over its non-null values.
type BoundStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Report is the full analysis result.
type Report struct {
	TotalVacancies int         `json:"total_vacancies"`
	WithSalary     int         `json:"with_salary"`
	Combined       SalaryStats `json:"combined"`
	From           BoundStats  `json:"from"`
	To             BoundStats  `json:"to"`
	Keywords       FreqTable   `json:"keywords"`
	Words          FreqTable   `json:"words"`
}

// Summarize computes the report for a dataset.
//
// Salary statistics cover only records with a salary. The per-record value
// is the average of the two bounds; when one bound is absent it degenerates
// to the other (mean ignoring missing, not missing-as-zero). Records where
// both bounds are absent contribute to no salary statistic.
func Summarize(d *vacancy.Dataset) *Report {
	report := &Report{
		TotalVacancies: d.Len(),
		Keywords:       keywordFrequencies(d.Keys),
		Words:          wordFrequencies(d.Descriptions),
	}

	var combined, from, to []float64
	for i := 0; i < d.Len(); i++ {
		if !d.HasSalary[i] {
			continue
		}
		report.WithSalary++

		f, t := d.From[i], d.To[i]
		if f != nil {
			from = append(from, float64(*f))
		}
		if t != nil {
			to = append(to, float64(*t))
		}
		switch {
		case f != nil && t != nil:
			combined = append(combined, (float64(*f)+float64(*t))/2)
		case f != nil:
			combined = append(combined, float64(*f))
		case t != nil:
			combined = append(combined, float64(*t))
		}
	}

	report.Combined = salaryStats(combined)
	report.From = boundStats(from)
	report.To = boundStats(to)

	return report
}

func salaryStats(values []float64) SalaryStats {
	if len(values) == 0 {
		return SalaryStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	variance := 0.0
	if len(sorted) > 1 {
		variance = stat.Variance(sorted, nil)
	}
	return SalaryStats{
		Count:    len(sorted),
		Min:      floats.Min(sorted),
		Max:      floats.Max(sorted),
		Mean:     stat.Mean(sorted, nil),
		Median:   quantile(sorted, 0.5),
		Variance: variance,
		StdDev:   math.Sqrt(variance),
	}
}

func boundStats(values []float64) BoundStats {
	if len(values) == 0 {
		return BoundStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	stddev := 0.0
	if len(sorted) > 1 {
		stddev = stat.StdDev(sorted, nil)
	}
	return BoundStats{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		StdDev: stddev,
		Min:    floats.Min(sorted),
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
		Max:    floats.Max(sorted),
	}
}

// quantile computes the p-quantile of sorted values with linear
// interpolation over order statistics. gonum's CumulantKinds interpolate the
// empirical CDF instead, which differs from the descriptive quartiles the
// report documents, so this is done by hand.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
