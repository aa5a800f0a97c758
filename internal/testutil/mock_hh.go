// Package testutil provides a configurable mock vacancy API for tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// MockHH is a mock vacancy API server. Search pages are served from the
// configured page bodies; vacancy details by identifier.
type MockHH struct {
	server *httptest.Server

	mu        sync.RWMutex
	pages     []string
	vacancies map[string]string

	searchPages    []int
	detailRequests []string
}

// NewMockHH creates a mock server with no configured responses.
func NewMockHH() *MockHH {
	m := &MockHH{
		vacancies: make(map[string]string),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id := strings.TrimPrefix(r.URL.Path, "/")
		if id != "" {
			m.handleDetail(w, id)
			return
		}
		m.handleSearch(w, r)
	}))

	return m
}

// URL returns the mock server base URL.
func (m *MockHH) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockHH) Close() {
	m.server.Close()
}

// SetSearchPages configures the page bodies; index i serves page=i.
// Requests beyond the configured pages get a body without an items array.
func (m *MockHH) SetSearchPages(bodies ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = bodies
}

// SetVacancy configures the detail body for one identifier.
func (m *MockHH) SetVacancy(id, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vacancies[id] = body
}

// SearchPagesRequested returns the page indexes requested, in order.
func (m *MockHH) SearchPagesRequested() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.searchPages...)
}

// DetailRequests returns the vacancy identifiers requested, in order.
func (m *MockHH) DetailRequests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.detailRequests...)
}

// Reset clears request tracking.
func (m *MockHH) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchPages = nil
	m.detailRequests = nil
}

func (m *MockHH) handleSearch(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	m.mu.Lock()
	m.searchPages = append(m.searchPages, page)
	body := ""
	if page >= 0 && page < len(m.pages) {
		body = m.pages[page]
	}
	m.mu.Unlock()

	if body == "" {
		// Out-of-range page: a response without items ends pagination.
		fmt.Fprintf(w, `{"pages": %d}`, maxInt(len(m.pages)-1, 0))
		return
	}
	_, _ = w.Write([]byte(body))
}

func (m *MockHH) handleDetail(w http.ResponseWriter, id string) {
	m.mu.Lock()
	m.detailRequests = append(m.detailRequests, id)
	body, ok := m.vacancies[id]
	m.mu.Unlock()

	if !ok {
		http.Error(w, `{"errors": [{"type": "not_found"}]}`, http.StatusNotFound)
		return
	}
	_, _ = w.Write([]byte(body))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
