// Package config loads and persists researcher settings from a JSON file.
//
// The options block is order-sensitive: its parameters feed the canonical
// query encoding, so decoding walks the JSON tokens instead of going through
// a map.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/salarylab/hh-research/pkg/query"
)

// Defaults applied when the settings file leaves them out.
const (
	DefaultArea       = 1
	DefaultPerPage    = 50
	DefaultNumWorkers = 1
)

// EnvNumWorkers overrides num_workers when set to a positive integer.
const EnvNumWorkers = "HH_NUM_WORKERS"

// ErrInvalidSettings indicates the settings file could not be parsed or
// failed validation.
var ErrInvalidSettings = errors.New("invalid settings")

var validate = validator.New()

// Settings holds the full researcher configuration.
type Settings struct {
	Options    *query.Query       `validate:"required"`
	Rates      map[string]float64 `validate:"required,min=1,dive,gt=0"`
	NumWorkers int                `validate:"gte=0"`
	Refresh    bool
	SaveResult bool
	SkipFailed bool
}

// Overrides carries command-line values layered on top of the file. Nil
// pointers mean "keep the file value".
type Overrides struct {
	Text       *string
	Roles      []int
	NumWorkers *int
	Refresh    *bool
	SaveResult *bool
	SkipFailed *bool
}

// Apply merges non-nil overrides into the settings.
func (s *Settings) Apply(o Overrides) {
	if o.Text != nil {
		s.Options.Set("text", *o.Text)
	}
	if o.Roles != nil {
		s.Options.SetRoles(o.Roles...)
	}
	if o.NumWorkers != nil {
		s.NumWorkers = *o.NumWorkers
	}
	if o.Refresh != nil {
		s.Refresh = *o.Refresh
	}
	if o.SaveResult != nil {
		s.SaveResult = *o.SaveResult
	}
	if o.SkipFailed != nil {
		s.SkipFailed = *o.SkipFailed
	}
}

// fileSettings mirrors the on-disk layout. Options stays raw so key order
// survives decoding.
type fileSettings struct {
	Options    json.RawMessage    `json:"options"`
	Rates      map[string]float64 `json:"rates"`
	NumWorkers int                `json:"num_workers"`
	Refresh    bool               `json:"refresh"`
	SaveResult bool               `json:"save_result"`
	SkipFailed bool               `json:"skip_failed"`
}

// Load reads settings from path, fills defaults, applies the environment
// worker override and validates the result.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	var file fileSettings
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	opts, err := decodeOptions(file.Options)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Options:    opts,
		Rates:      file.Rates,
		NumWorkers: file.NumWorkers,
		Refresh:    file.Refresh,
		SaveResult: file.SaveResult,
		SkipFailed: file.SkipFailed,
	}
	s.applyDefaults()
	s.applyEnv()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks structural constraints plus the query content.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if s.Options.Get("text") == "" && len(s.Options.Roles()) == 0 {
		return fmt.Errorf("%w: options need a text query or professional roles", ErrInvalidSettings)
	}
	return nil
}

func (s *Settings) applyDefaults() {
	if s.Options == nil {
		s.Options = query.New()
	}
	if s.Options.Get("area") == "" {
		s.Options.SetInt("area", DefaultArea)
	}
	if s.Options.Get("per_page") == "" {
		s.Options.SetInt("per_page", DefaultPerPage)
	}
	if s.NumWorkers == 0 {
		s.NumWorkers = DefaultNumWorkers
	}
	// Rate values are placeholders until the live refresh replaces them;
	// only the key set matters here.
	if len(s.Rates) == 0 {
		s.Rates = map[string]float64{"RUR": 1, "USD": 1, "EUR": 1}
	}
}

func (s *Settings) applyEnv() {
	raw := os.Getenv(EnvNumWorkers)
	if raw == "" {
		return
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		s.NumWorkers = n
	}
}

// Save writes the settings back to path, preserving option order. Numeric
// option values are written as JSON numbers.
func Save(path string, s *Settings) error {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	buf.WriteString("  \"options\": ")
	if err := encodeOptions(&buf, s.Options); err != nil {
		return err
	}
	buf.WriteString(",\n")

	rates, err := json.Marshal(s.Rates)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	fmt.Fprintf(&buf, "  \"rates\": %s,\n", rates)
	fmt.Fprintf(&buf, "  \"num_workers\": %d,\n", s.NumWorkers)
	fmt.Fprintf(&buf, "  \"refresh\": %t,\n", s.Refresh)
	fmt.Fprintf(&buf, "  \"save_result\": %t,\n", s.SaveResult)
	fmt.Fprintf(&buf, "  \"skip_failed\": %t\n", s.SkipFailed)
	buf.WriteString("}\n")

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

// decodeOptions parses the options object token by token so that parameter
// order is preserved. professional_roles is the only structured value; every
// other value must be a string, number or bool.
func decodeOptions(raw json.RawMessage) (*query.Query, error) {
	q := query.New()
	if len(raw) == 0 {
		return q, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: options: %v", ErrInvalidSettings, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: options must be an object", ErrInvalidSettings)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: options: %v", ErrInvalidSettings, err)
		}
		key := keyTok.(string)

		if key == "professional_roles" {
			var roles []int
			if err := dec.Decode(&roles); err != nil {
				return nil, fmt.Errorf("%w: professional_roles: %v", ErrInvalidSettings, err)
			}
			q.SetRoles(roles...)
			continue
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: options: %v", ErrInvalidSettings, err)
		}
		switch v := valTok.(type) {
		case string:
			q.Set(key, v)
		case json.Number:
			q.Set(key, v.String())
		case bool:
			q.Set(key, strconv.FormatBool(v))
		default:
			return nil, fmt.Errorf("%w: option %q has unsupported value", ErrInvalidSettings, key)
		}
	}
	return q, nil
}

func encodeOptions(buf *bytes.Buffer, q *query.Query) error {
	buf.WriteString("{\n")
	first := true

	if roles := q.Roles(); len(roles) > 0 {
		encoded, err := json.Marshal(roles)
		if err != nil {
			return fmt.Errorf("encode professional_roles: %w", err)
		}
		fmt.Fprintf(buf, "    \"professional_roles\": %s", encoded)
		first = false
	}

	for _, p := range q.Params() {
		if !first {
			buf.WriteString(",\n")
		}
		first = false

		key, err := json.Marshal(p.Key)
		if err != nil {
			return err
		}
		if n, convErr := strconv.Atoi(p.Value); convErr == nil {
			fmt.Fprintf(buf, "    %s: %d", key, n)
			continue
		}
		value, err := json.Marshal(p.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(buf, "    %s: %s", key, value)
	}

	buf.WriteString("\n  }")
	return nil
}
