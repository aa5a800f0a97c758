package analyze

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/salarylab/hh-research/pkg/vacancy"
)

func intPtr(v int) *int { return &v }

func salaryRecord(id string, from, to *int) *vacancy.Vacancy {
	return &vacancy.Vacancy{
		ID: id, Name: "r" + id, Employer: "Acme",
		HasSalary: true, From: from, To: to,
		Keys: []string{},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize_CombinedSalary(t *testing.T) {
	d := vacancy.NewDataset([]*vacancy.Vacancy{
		salaryRecord("1", intPtr(100), intPtr(200)), // average 150
		salaryRecord("2", nil, intPtr(300)),         // degenerates to 300
		salaryRecord("3", intPtr(400), nil),         // degenerates to 400
		{ID: "4", Name: "no salary", Keys: []string{}},
	})

	r := Summarize(d)

	if r.TotalVacancies != 4 {
		t.Errorf("TotalVacancies = %d, want 4", r.TotalVacancies)
	}
	if r.WithSalary != 3 {
		t.Errorf("WithSalary = %d, want 3", r.WithSalary)
	}
	if r.Combined.Count != 3 {
		t.Fatalf("Combined.Count = %d, want 3", r.Combined.Count)
	}
	if !almostEqual(r.Combined.Min, 150) || !almostEqual(r.Combined.Max, 400) {
		t.Errorf("Min/Max = %v/%v, want 150/400", r.Combined.Min, r.Combined.Max)
	}
	if want := (150.0 + 300.0 + 400.0) / 3; !almostEqual(r.Combined.Mean, want) {
		t.Errorf("Mean = %v, want %v", r.Combined.Mean, want)
	}
	if !almostEqual(r.Combined.Median, 300) {
		t.Errorf("Median = %v, want 300", r.Combined.Median)
	}
}

func TestSummarize_BoundQuartiles(t *testing.T) {
	d := vacancy.NewDataset([]*vacancy.Vacancy{
		salaryRecord("1", intPtr(100), nil),
		salaryRecord("2", intPtr(200), nil),
		salaryRecord("3", intPtr(300), nil),
		salaryRecord("4", intPtr(400), nil),
		salaryRecord("5", intPtr(500), nil),
	})

	r := Summarize(d)

	if r.From.Count != 5 {
		t.Fatalf("From.Count = %d, want 5", r.From.Count)
	}
	if !almostEqual(r.From.Q25, 200) || !almostEqual(r.From.Median, 300) || !almostEqual(r.From.Q75, 400) {
		t.Errorf("quartiles = %v/%v/%v, want 200/300/400", r.From.Q25, r.From.Median, r.From.Q75)
	}
	if !almostEqual(r.From.Min, 100) || !almostEqual(r.From.Max, 500) {
		t.Errorf("Min/Max = %v/%v, want 100/500", r.From.Min, r.From.Max)
	}
	if r.To.Count != 0 {
		t.Errorf("To.Count = %d, want 0", r.To.Count)
	}
}

func TestSummarize_EmptyDataset(t *testing.T) {
	r := Summarize(vacancy.NewDataset(nil))

	if r.TotalVacancies != 0 || r.WithSalary != 0 {
		t.Errorf("counts = %d/%d, want zeroes", r.TotalVacancies, r.WithSalary)
	}
	if r.Combined.Count != 0 {
		t.Errorf("Combined.Count = %d, want 0", r.Combined.Count)
	}
	if len(r.Keywords) != 0 || len(r.Words) != 0 {
		t.Error("frequency tables not empty for empty dataset")
	}
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	// pos = 0.5 * 3 = 1.5, halfway between 20 and 30.
	if got := quantile(sorted, 0.5); !almostEqual(got, 25) {
		t.Errorf("quantile(0.5) = %v, want 25", got)
	}
	if got := quantile(sorted, 0); !almostEqual(got, 10) {
		t.Errorf("quantile(0) = %v, want 10", got)
	}
	if got := quantile(sorted, 1); !almostEqual(got, 40) {
		t.Errorf("quantile(1) = %v, want 40", got)
	}
	if got := quantile([]float64{7}, 0.25); !almostEqual(got, 7) {
		t.Errorf("quantile single = %v, want 7", got)
	}
}

func TestReport_WriteText(t *testing.T) {
	d := vacancy.NewDataset([]*vacancy.Vacancy{
		{
			ID: "1", Name: "Go Developer", Employer: "Acme",
			HasSalary: true, From: intPtr(100000), To: intPtr(150000),
			Keys: []string{"Go", "SQL"}, Description: "build fast services",
		},
	})

	var buf bytes.Buffer
	if err := Summarize(d).WriteText(&buf, 10); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Number of vacancies: 1", "Median", "key skills", "description words"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePreview(t *testing.T) {
	d := vacancy.NewDataset([]*vacancy.Vacancy{
		{ID: "1", Employer: "NoSalary Co", Keys: []string{}},
		{
			ID: "2", Employer: "Acme", HasSalary: true,
			From: intPtr(100), To: nil, Experience: "1-3", Schedule: "remote",
			Keys: []string{},
		},
	})

	var buf bytes.Buffer
	if err := WritePreview(&buf, d, 5); err != nil {
		t.Fatalf("WritePreview() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "NoSalary Co") {
		t.Error("preview contains salary-less record")
	}
	if !strings.Contains(out, "Acme") {
		t.Errorf("preview missing salary record:\n%s", out)
	}
}
