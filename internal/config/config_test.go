package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

const sampleSettings = `{
  "options": {
    "text": "Machine learning",
    "professional_roles": [10, 25],
    "area": 2,
    "per_page": 100
  },
  "rates": {"USD": 0.011, "EUR": 0.0098},
  "num_workers": 4,
  "refresh": true,
  "save_result": false
}`

func TestLoad(t *testing.T) {
	s, err := Load(writeSettings(t, sampleSettings))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := s.Options.Get("text"); got != "Machine learning" {
		t.Errorf("text = %q", got)
	}
	if got := s.Options.Roles(); len(got) != 2 || got[0] != 10 || got[1] != 25 {
		t.Errorf("roles = %v, want [10 25]", got)
	}
	if got := s.Options.Get("area"); got != "2" {
		t.Errorf("area = %q, want file value kept over default", got)
	}
	if s.NumWorkers != 4 || !s.Refresh || s.SaveResult {
		t.Errorf("scalars = %d/%t/%t", s.NumWorkers, s.Refresh, s.SaveResult)
	}
	if s.Rates["USD"] != 0.011 {
		t.Errorf("rates = %v", s.Rates)
	}
}

func TestLoad_OptionOrderSurvives(t *testing.T) {
	s, err := Load(writeSettings(t, `{
  "options": {"text": "ML", "per_page": 50, "area": 1},
  "rates": {"USD": 0.011}
}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := "text=ML&per_page=50&area=1"
	if got := s.Options.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	s, err := Load(writeSettings(t, `{
  "options": {"text": "ML"},
  "rates": {"USD": 0.011}
}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := s.Options.Get("area"); got != "1" {
		t.Errorf("area default = %q, want 1", got)
	}
	if got := s.Options.Get("per_page"); got != "50" {
		t.Errorf("per_page default = %q, want 50", got)
	}
	if s.NumWorkers != DefaultNumWorkers {
		t.Errorf("NumWorkers = %d, want %d", s.NumWorkers, DefaultNumWorkers)
	}
}

func TestLoad_DefaultRates(t *testing.T) {
	s, err := Load(writeSettings(t, `{"options": {"text": "ML"}}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, code := range []string{"RUR", "USD", "EUR"} {
		if _, ok := s.Rates[code]; !ok {
			t.Errorf("default rates missing %s: %v", code, s.Rates)
		}
	}
}

func TestLoad_EnvWorkerOverride(t *testing.T) {
	t.Setenv(EnvNumWorkers, "8")

	s, err := Load(writeSettings(t, sampleSettings))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.NumWorkers != 8 {
		t.Errorf("NumWorkers = %d, want env override 8", s.NumWorkers)
	}
}

func TestLoad_InvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"options": `},
		{"zero rate", `{"options": {"text": "ML"}, "rates": {"USD": 0}}`},
		{"no text or roles", `{"options": {"area": 1}, "rates": {"USD": 0.011}}`},
		{"nested option value", `{"options": {"text": "ML", "extra": {"a": 1}}, "rates": {"USD": 0.011}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.content))
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Load() error = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	s, err := Load(writeSettings(t, sampleSettings))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	text := "Data Scientist"
	workers := 2
	refresh := false
	s.Apply(Overrides{
		Text:       &text,
		Roles:      []int{165},
		NumWorkers: &workers,
		Refresh:    &refresh,
	})

	if got := s.Options.Get("text"); got != "Data Scientist" {
		t.Errorf("text = %q", got)
	}
	if got := s.Options.Roles(); len(got) != 1 || got[0] != 165 {
		t.Errorf("roles = %v, want [165]", got)
	}
	if s.NumWorkers != 2 || s.Refresh {
		t.Errorf("scalars = %d/%t", s.NumWorkers, s.Refresh)
	}
	if s.SaveResult {
		t.Error("SaveResult changed without an override")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := writeSettings(t, sampleSettings)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "settings.json")
	if err := Save(out, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := Load(out)
	if err != nil {
		t.Fatalf("Load(saved) error = %v", err)
	}
	if got, want := reloaded.Options.Encode(), s.Options.Encode(); got != want {
		t.Errorf("Encode() after round trip = %q, want %q", got, want)
	}
	if reloaded.NumWorkers != s.NumWorkers || reloaded.Refresh != s.Refresh {
		t.Errorf("scalars changed: %+v vs %+v", reloaded, s)
	}

	// Saved file must stay plain JSON for other tooling.
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read saved: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Errorf("saved settings are not valid JSON: %v", err)
	}
}
