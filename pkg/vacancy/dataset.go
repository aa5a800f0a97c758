package vacancy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ColumnNames is the fixed ordered set of dataset fields. It also defines
// the CSV header.
var ColumnNames = []string{
	"Ids",
	"Name",
	"Employer",
	"Salary",
	"From",
	"To",
	"Experience",
	"Schedule",
	"Keys",
	"Description",
}

// Dataset is a column-oriented collection of vacancy records. All columns
// have equal length and correspond index-for-index to the same posting.
// It is created once by the collector and never mutated afterwards.
type Dataset struct {
	IDs          []string   `json:"ids"`
	Names        []string   `json:"names"`
	Employers    []string   `json:"employers"`
	HasSalary    []bool     `json:"has_salary"`
	From         []*int     `json:"from"`
	To           []*int     `json:"to"`
	Experience   []string   `json:"experience"`
	Schedule     []string   `json:"schedule"`
	Keys         [][]string `json:"keys"`
	Descriptions []string   `json:"descriptions"`
}

// NewDataset builds a dataset from fetched records. Each column is filled
// from the named record field, so assembly stays matched to the originating
// identifier regardless of fetch completion order.
func NewDataset(records []*Vacancy) *Dataset {
	n := len(records)
	d := &Dataset{
		IDs:          make([]string, n),
		Names:        make([]string, n),
		Employers:    make([]string, n),
		HasSalary:    make([]bool, n),
		From:         make([]*int, n),
		To:           make([]*int, n),
		Experience:   make([]string, n),
		Schedule:     make([]string, n),
		Keys:         make([][]string, n),
		Descriptions: make([]string, n),
	}
	for i, r := range records {
		d.IDs[i] = r.ID
		d.Names[i] = r.Name
		d.Employers[i] = r.Employer
		d.HasSalary[i] = r.HasSalary
		d.From[i] = r.From
		d.To[i] = r.To
		d.Experience[i] = r.Experience
		d.Schedule[i] = r.Schedule
		d.Keys[i] = r.Keys
		d.Descriptions[i] = r.Description
	}
	return d
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.IDs)
}

// Record reconstructs the record at index i.
func (d *Dataset) Record(i int) Vacancy {
	return Vacancy{
		ID:          d.IDs[i],
		Name:        d.Names[i],
		Employer:    d.Employers[i],
		HasSalary:   d.HasSalary[i],
		From:        d.From[i],
		To:          d.To[i],
		Experience:  d.Experience[i],
		Schedule:    d.Schedule[i],
		Keys:        d.Keys[i],
		Description: d.Descriptions[i],
	}
}

// Validate checks that all columns have equal length.
func (d *Dataset) Validate() error {
	n := len(d.IDs)
	lengths := map[string]int{
		"names":        len(d.Names),
		"employers":    len(d.Employers),
		"has_salary":   len(d.HasSalary),
		"from":         len(d.From),
		"to":           len(d.To),
		"experience":   len(d.Experience),
		"schedule":     len(d.Schedule),
		"keys":         len(d.Keys),
		"descriptions": len(d.Descriptions),
	}
	for col, l := range lengths {
		if l != n {
			return fmt.Errorf("column %s has %d entries, want %d", col, l, n)
		}
	}
	return nil
}

// WriteCSV writes the dataset row-wise with ColumnNames as the header.
// Absent salary bounds become empty cells; key skills are joined with ", ".
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ColumnNames); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for i := 0; i < d.Len(); i++ {
		row := []string{
			d.IDs[i],
			d.Names[i],
			d.Employers[i],
			strconv.FormatBool(d.HasSalary[i]),
			formatBound(d.From[i]),
			formatBound(d.To[i]),
			d.Experience[i],
			d.Schedule[i],
			strings.Join(d.Keys[i], ", "),
			d.Descriptions[i],
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatBound(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
