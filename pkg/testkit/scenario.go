// Package testkit provides a JSON-scenario-driven REST API testing framework.
//
// Each scenario is a JSON file that describes:
//   - The HTTP request to fire (method, URL, body, headers)
//   - Expected HTTP status code
//   - Expected response body, compared exactly or as a subset
//   - Values to capture from the response for later scenarios
//
// A file holds either one scenario object or an array of them. Scenario
// files live next to your *_test.go files:
//
//	testdata/
//	  01_login.json            ← scenario (captures "token")
//	  02_place_order.json      ← uses {{token}} in its headers
//	  02_place_order_res.json  ← expected response body
//
// Example _test.go:
//
//	func TestAPI(t *testing.T) {
//	    k, _ := kernel.New(db, cache.NewMemoryStore(), disk)
//	    testkit.New(k.Handler()).RunDir(t, "testdata")
//	}
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes a single REST API test case loaded from a JSON file.
type Scenario struct {
	// Meta
	Name        string `json:"name"`
	Description string `json:"description"`

	// Request
	RequestMethod   string            `json:"requestMethod"`   // GET, POST, PUT, DELETE
	RequestURL      string            `json:"requestUrl"`      // e.g. /api/orders
	RequestFileName string            `json:"requestFileName"` // request body file, relative to the scenario dir
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline request body; wins over requestFileName
	Headers         map[string]string `json:"headers"`

	// Response assertions
	ExpectedCode     int             `json:"expectedCode"`
	ResponseFileName string          `json:"responseFileName"` // expected response file
	Response         json.RawMessage `json:"response"`         // inline expected response; wins over responseFileName

	// Exact requires the response body to equal the expectation. By default
	// the expectation only has to be contained in the response: objects may
	// carry extra keys, arrays must match element by element.
	Exact bool `json:"exact"`

	// Capture maps a variable name to a dotted path in the response body
	// ("data.token", "data.orders.0.id"). Captured values are available to
	// later scenarios as {{name}}.
	Capture map[string]string `json:"capture"`

	// resolved at load time, not in JSON
	dir string
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads a file holding one scenario or an array of scenarios
// and validates each of them.
func LoadScenario(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &scenarios); err != nil {
			return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
		}
	} else {
		var s Scenario
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
		}
		scenarios = []*Scenario{&s}
	}

	dir := filepath.Dir(abs)
	for i, s := range scenarios {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario %q[%d]: %w", abs, i, err)
		}
		s.dir = dir
	}
	return scenarios, nil
}

// validate performs basic sanity checks on the loaded scenario.
func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	return nil
}

// RequestPayload returns the request body, inline or from requestFileName.
// Returns nil when the scenario sends no body.
func (s *Scenario) RequestPayload() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	if s.RequestFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.RequestFileName))
}

// ExpectedPayload returns the expected response body, inline or from
// responseFileName. Returns nil when the body is not asserted.
func (s *Scenario) ExpectedPayload() ([]byte, error) {
	if len(s.Response) > 0 {
		return s.Response, nil
	}
	if s.ResponseFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.ResponseFileName))
}

func (s *Scenario) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// ─── Variables ────────────────────────────────────────────────────────────────

// Vars holds the {{name}} substitutions shared by a run.
type Vars map[string]string

// Expand replaces every {{name}} in s with its value. Unknown names are
// left in place so the mismatch shows up in the assertion output.
func (v Vars) Expand(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	for name, value := range v {
		s = strings.ReplaceAll(s, "{{"+name+"}}", value)
	}
	return s
}
