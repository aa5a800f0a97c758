// Package hh provides the HTTP client for the HeadHunter vacancy API.
package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/salarylab/hh-research/pkg/logging"
)

// DefaultBaseURL is the public vacancy API endpoint.
const DefaultBaseURL = "https://api.hh.ru/vacancies"

// DefaultUserAgent identifies this client to the API.
const DefaultUserAgent = "hh-research/1.0"

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_api_requests_total",
		Help: "Total vacancy API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hh_api_request_duration_seconds",
		Help:    "Vacancy API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})
)

// Config holds client configuration.
type Config struct {
	// BaseURL of the vacancy API. Defaults to DefaultBaseURL.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// HTTPClient used for requests. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client
}

// Client is the vacancy API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: cfg.HTTPClient,
		logger:     logging.NewLogger("hh-client"),
	}
}

// SearchPage fetches one page of search results for the canonical parameter
// string. The page index is appended as an explicit page parameter.
func (c *Client) SearchPage(ctx context.Context, params string, page int) (*SearchPage, error) {
	url := c.baseURL + "?page=" + strconv.Itoa(page)
	if params != "" {
		url = c.baseURL + "?" + params + "&page=" + strconv.Itoa(page)
	}

	body, err := c.get(ctx, url, "search")
	if err != nil {
		return nil, err
	}

	var result SearchPage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode search page %d: %v", ErrMalformedResponse, page, err)
	}

	return &result, nil
}

// Vacancy fetches the detail object of one posting by identifier.
func (c *Client) Vacancy(ctx context.Context, id string) (*VacancyDetail, error) {
	body, err := c.get(ctx, c.baseURL+"/"+id, "vacancy")
	if err != nil {
		return nil, err
	}

	var detail VacancyDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("%w: decode vacancy %s: %v", ErrMalformedResponse, id, err)
	}
	if detail.ID == "" {
		detail.ID = id
	}

	return &detail, nil
}

func (c *Client) get(ctx context.Context, url, endpoint string) ([]byte, error) {
	start := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("url", url).Msg("HTTP request failed")
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("API request error")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}
