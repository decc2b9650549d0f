package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Runner fires scenarios at one handler. Variables captured by a scenario
// stay visible to every scenario run after it on the same Runner.
type Runner struct {
	handler http.Handler
	vars    Vars
}

// New returns a Runner for handler with optional starting variables.
func New(handler http.Handler, vars Vars) *Runner {
	r := &Runner{handler: handler, vars: Vars{}}
	for k, v := range vars {
		r.vars[k] = v
	}
	return r
}

// Var returns a variable set up front or captured by a scenario.
func (r *Runner) Var(name string) string {
	return r.vars[name]
}

// Run executes every scenario in one JSON file, in order, as subtests.
//
// Lifecycle per scenario:
//  1. Expand {{vars}} in URL, headers and request body.
//  2. Fire the request against the handler using httptest.
//  3. Assert status code.
//  4. Assert response body against the expectation, if one is set.
//  5. Capture response values into the runner's variables.
func (r *Runner) Run(t *testing.T, scenarioPath string) {
	t.Helper()

	scenarios, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			r.runScenario(t, s)
		})
	}
}

// RunDir runs every *.json file in dir in file-name order. Files whose name
// ends in _req.json or _res.json are body fixtures, not scenarios.
func (r *Runner) RunDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range entries {
		if isFixture(path) {
			continue
		}
		r.Run(t, path)
	}
}

func isFixture(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range []string{"_req.json", "_res.json"} {
		if len(base) > len(suffix) && base[len(base)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

// ─── Internal execution ───────────────────────────────────────────────────────

func (r *Runner) runScenario(t *testing.T, s *Scenario) {
	t.Helper()

	// ── 1. Build request ──────────────────────────────────────────────────

	var reqBody io.Reader
	payload, err := s.RequestPayload()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	if payload != nil {
		reqBody = bytes.NewReader([]byte(r.vars.Expand(string(payload))))
	}

	req := httptest.NewRequest(s.RequestMethod, r.vars.Expand(s.RequestURL), reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, r.vars.Expand(v))
	}

	// ── 2. Fire the request ───────────────────────────────────────────────

	rec := httptest.NewRecorder()
	r.handler.ServeHTTP(rec, req)
	body := rec.Body.Bytes()

	// ── 3. Assert status code ─────────────────────────────────────────────

	AssertStatusCode(t, s, rec.Code, body)

	// ── 4. Assert response body ───────────────────────────────────────────

	expected, err := s.ExpectedPayload()
	if err != nil {
		t.Errorf("[%s] read expected response: %v", s.Name, err)
	} else if expected != nil {
		AssertJSONBody(t, s, []byte(r.vars.Expand(string(expected))), body)
	}

	// ── 5. Capture ────────────────────────────────────────────────────────

	if len(s.Capture) == 0 {
		return
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Errorf("[%s] capture: response is not JSON: %v", s.Name, err)
		return
	}
	for name, path := range s.Capture {
		value, ok := Lookup(doc, path)
		if !ok {
			t.Errorf("[%s] capture %q: path %q not found\nbody: %s", s.Name, name, path, string(body))
			continue
		}
		r.vars[name] = value
	}
}
