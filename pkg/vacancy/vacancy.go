// Package vacancy turns raw API postings into normalized records and
// assembles them into the column-oriented dataset consumed by analysis.
package vacancy

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/salarylab/hh-research/pkg/hh"
	"github.com/salarylab/hh-research/pkg/logging"
	"github.com/salarylab/hh-research/pkg/rates"
)

// grossToNetFactor approximates net salary from a gross figure.
const grossToNetFactor = 0.87

// Vacancy is one normalized posting. From and To are expressed in the base
// currency and are nil exactly when HasSalary is false or the source bound
// was absent.
type Vacancy struct {
	ID          string
	Name        string
	Employer    string
	HasSalary   bool
	From        *int
	To          *int
	Experience  string
	Schedule    string
	Keys        []string
	Description string
}

// Fetcher retrieves single postings and derives normalized salary bounds.
type Fetcher struct {
	client *hh.Client
	logger zerolog.Logger
}

// NewFetcher creates a fetcher on top of an API client.
func NewFetcher(client *hh.Client) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logging.NewLogger("fetcher"),
	}
}

// Fetch retrieves one posting by identifier and normalizes it against the
// rate table. The table must cover every currency the dataset can contain;
// a missing code surfaces rates.ErrUnknownCurrency and aborts the run.
func (f *Fetcher) Fetch(ctx context.Context, id string, table rates.Table) (*Vacancy, error) {
	detail, err := f.client.Vacancy(ctx, id)
	if err != nil {
		return nil, err
	}

	v := &Vacancy{
		ID:          detail.ID,
		Name:        detail.Name,
		Employer:    detail.Employer.Name,
		Experience:  detail.Experience.Name,
		Schedule:    detail.Schedule.Name,
		Keys:        make([]string, 0, len(detail.KeySkills)),
		Description: CleanTags(detail.Description),
	}
	for _, skill := range detail.KeySkills {
		v.Keys = append(v.Keys, skill.Name)
	}

	if detail.Salary == nil {
		return v, nil
	}

	v.HasSalary = true
	rate, err := table.Rate(detail.Salary.Currency)
	if err != nil {
		return nil, fmt.Errorf("vacancy %s: %w", id, err)
	}

	if detail.Salary.From != nil {
		from := normalizeBound(*detail.Salary.From, detail.Salary.Gross, rate)
		v.From = &from
	}
	if detail.Salary.To != nil {
		to := normalizeBound(*detail.Salary.To, detail.Salary.Gross, rate)
		v.To = &to
	}

	return v, nil
}

// normalizeBound converts one source salary bound into the base currency:
// apply the gross-to-net factor, divide by the exchange rate, truncate
// toward zero. Decimal arithmetic keeps the truncation exact.
func normalizeBound(amount int, gross bool, rate float64) int {
	factor := decimal.NewFromInt(1)
	if gross {
		factor = decimal.NewFromFloat(grossToNetFactor)
	}
	result := decimal.NewFromInt(int64(amount)).
		Mul(factor).
		Div(decimal.NewFromFloat(rate))
	return int(result.IntPart())
}

var tagPattern = regexp.MustCompile("<.*?>")

// CleanTags strips HTML markup from a description, returning plain text.
// Malformed markup falls back to non-greedy tag removal.
func CleanTags(html string) string {
	if !strings.ContainsRune(html, '<') {
		return html
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return tagPattern.ReplaceAllString(html, "")
	}
	return doc.Text()
}
