package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()

	defaults := map[string]string{
		"settings":  "settings.json",
		"cache-dir": ".cache",
		"csv-path":  "vacancies.csv",
		"log-level": "info",
		"top":       "10",
	}
	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("flag %q not registered", name)
			continue
		}
		if flag.DefValue != want {
			t.Errorf("flag %q default = %q, want %q", name, flag.DefValue, want)
		}
	}

	shorthands := map[string]string{
		"text":               "t",
		"professional-roles": "p",
		"num-workers":        "n",
		"refresh":            "r",
		"save-result":        "s",
		"update":             "u",
	}
	for name, want := range shorthands {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("flag %q not registered", name)
		}
		if flag.Shorthand != want {
			t.Errorf("flag %q shorthand = %q, want %q", name, flag.Shorthand, want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	promhttp.Handler().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("expected Prometheus format metrics output")
	}

	// Plain counters register with a zero value at package init.
	if !strings.Contains(bodyStr, "hh_vacancies_fetched_total") {
		t.Error("expected metrics output to contain hh_vacancies_fetched_total")
	}
}
