// Package rates fetches currency exchange rates used to normalize salaries.
//
// All rates are expressed relative to the base currency (RUB). The remote
// table keys the base currency by its ISO code "RUB", while the vacancy API
// reports salaries with the legacy code "RUR"; Refresh persists the base rate
// under the legacy code so the rest of the pipeline needs no special case.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/salarylab/hh-research/pkg/logging"
)

// DefaultURL is the public exchange-rate endpoint, keyed by the base currency.
const DefaultURL = "https://api.exchangerate-api.com/v4/latest/RUB"

// ISO and legacy codes of the base currency.
const (
	BaseCurrencyISO    = "RUB"
	BaseCurrencyLegacy = "RUR"
)

var (
	// ErrRemoteUnavailable is returned when the rate endpoint cannot be
	// reached. It is fatal: no partial table is ever returned.
	ErrRemoteUnavailable = errors.New("exchange rate source unavailable")

	// ErrUnknownCurrency is returned by Table.Rate when a currency code is
	// absent from the table. A table must be a superset of every currency
	// the dataset can contain before normalization runs.
	ErrUnknownCurrency = errors.New("unknown currency")
)

var rateRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hh_rate_refreshes_total",
	Help: "Total exchange rate refresh attempts by status",
}, []string{"status"})

// Table maps a 3-letter upper-case currency code to its rate relative to the
// base currency. Once built it is treated as immutable shared state.
type Table map[string]float64

// Rate returns the conversion rate for code.
func (t Table) Rate(code string) (float64, error) {
	rate, ok := t[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return rate, nil
}

// Has reports whether every given code is present in the table.
func (t Table) Has(codes ...string) bool {
	for _, code := range codes {
		if _, ok := t[code]; !ok {
			return false
		}
	}
	return true
}

// Config holds exchanger configuration.
type Config struct {
	// URL of the rate endpoint. Defaults to DefaultURL.
	URL string

	// HTTPClient used for the request. Defaults to a client with a
	// 15 second timeout.
	HTTPClient *http.Client
}

// Exchanger fetches a live rate table from the remote source.
type Exchanger struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates an exchanger.
func New(cfg Config) *Exchanger {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Exchanger{
		url:        cfg.URL,
		httpClient: cfg.HTTPClient,
		logger:     logging.NewLogger("rates"),
	}
}

type remoteTable struct {
	Rates map[string]float64 `json:"rates"`
}

// Refresh fetches the remote rate table and extracts the requested currency
// codes. The set must include the base currency's ISO code; the resulting
// table carries it under the legacy code instead.
//
// Any transport failure is surfaced as ErrRemoteUnavailable. There is no
// retry: a stale persisted table is preferable to a partially refreshed one.
func (e *Exchanger) Refresh(ctx context.Context, targets []string) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create rate request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		rateRefreshesTotal.WithLabelValues("error").Inc()
		e.logger.Error().Err(err).Str("url", e.url).Msg("Rate fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rateRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	var remote remoteTable
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		rateRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode rate table: %w", err)
	}

	table := make(Table, len(targets))
	for _, code := range targets {
		rate, ok := remote.Rates[code]
		if !ok {
			rateRefreshesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("currency %s missing from remote rate table", code)
		}
		table[code] = rate
	}

	// The vacancy API reports the base currency as RUR.
	if rub, ok := table[BaseCurrencyISO]; ok {
		delete(table, BaseCurrencyISO)
		table[BaseCurrencyLegacy] = rub
	}

	rateRefreshesTotal.WithLabelValues("ok").Inc()
	e.logger.Info().Int("currencies", len(table)).Msg("Exchange rates refreshed")

	return table, nil
}
