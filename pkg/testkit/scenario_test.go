package testkit_test

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/pkg/testkit"
)

// testHandler issues a token on POST /login and requires it on GET /me.
var testHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/login":
		var in struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"token": "tok-" + in.Email, "expires_in": 3600},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/me":
		if r.Header.Get("Authorization") != "Bearer tok-a@b.c" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":false,"message":"Unauthorized"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":true,"data":{"id":7,"email":"a@b.c","roles":["admin"]}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":false,"message":"not found"}`))
	}
})

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_SingleAndArray(t *testing.T) {
	dir := t.TempDir()
	single := writeFile(t, dir, "one.json", `{"name":"one","requestUrl":"/me","expectedCode":200}`)
	many := writeFile(t, dir, "many.json", `[
		{"name":"a","requestMethod":"post","requestUrl":"/login","expectedCode":200},
		{"name":"b","requestUrl":"/me","expectedCode":401}
	]`)

	s, err := testkit.LoadScenario(single)
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.Equal(t, "GET", s[0].RequestMethod)

	m, err := testkit.LoadScenario(many)
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, "POST", m[0].RequestMethod)
	assert.Equal(t, 401, m[1].ExpectedCode)
}

func TestLoadScenario_Invalid(t *testing.T) {
	dir := t.TempDir()
	noName := writeFile(t, dir, "bad.json", `{"requestUrl":"/me","expectedCode":200}`)
	noCode := writeFile(t, dir, "bad2.json", `{"name":"x","requestUrl":"/me"}`)

	_, err := testkit.LoadScenario(noName)
	assert.Error(t, err)
	_, err = testkit.LoadScenario(noCode)
	assert.Error(t, err)
}

func TestRunDir_CapturesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01_login.json", `{
		"name": "login",
		"requestMethod": "POST",
		"requestUrl": "/login",
		"requestFileName": "01_login_req.json",
		"expectedCode": 200,
		"capture": {"token": "data.token"}
	}`)
	writeFile(t, dir, "01_login_req.json", `{"email":"{{email}}"}`)
	writeFile(t, dir, "02_me.json", `[
		{
			"name": "me with token",
			"requestUrl": "/me",
			"headers": {"Authorization": "Bearer {{token}}"},
			"expectedCode": 200,
			"responseFileName": "02_me_res.json",
			"capture": {"user_id": "data.id", "first_role": "data.roles.0"}
		},
		{
			"name": "me without token",
			"requestUrl": "/me",
			"expectedCode": 401,
			"response": {"status": false, "message": "Unauthorized"},
			"exact": true
		}
	]`)
	writeFile(t, dir, "02_me_res.json", `{"data":{"email":"{{email}}"}}`)

	r := testkit.New(testHandler, testkit.Vars{"email": "a@b.c"})
	r.RunDir(t, dir)

	assert.Equal(t, "tok-a@b.c", r.Var("token"))
	assert.Equal(t, "7", r.Var("user_id"))
	assert.Equal(t, "admin", r.Var("first_role"))
}

func TestDiffJSON_Subset(t *testing.T) {
	var exp, act interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"total":"20.00"}}`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`{"status":true,"data":{"id":1,"total":"20.00"}}`), &act))
	assert.Empty(t, testkit.DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"data":{"total":"25.00"}}`), &exp))
	diffs := testkit.DiffJSON("", exp, act)
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0], "data.total")
}

func TestDiffJSON_ArrayLength(t *testing.T) {
	var exp, act interface{}
	require.NoError(t, json.Unmarshal([]byte(`[1,2]`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`[1,2,3]`), &act))
	assert.NotEmpty(t, testkit.DiffJSON("", exp, act))
}

func TestLookup(t *testing.T) {
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"orders":[{"id":12,"paid":true}],"name":"x"}}`), &doc))

	v, ok := testkit.Lookup(doc, "data.orders.0.id")
	assert.True(t, ok)
	assert.Equal(t, "12", v)

	v, ok = testkit.Lookup(doc, "data.orders.0.paid")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = testkit.Lookup(doc, "data.orders.3.id")
	assert.False(t, ok)
	_, ok = testkit.Lookup(doc, "data.missing")
	assert.False(t, ok)
}

func TestVarsExpand(t *testing.T) {
	v := testkit.Vars{"id": "5"}
	assert.Equal(t, "/api/products/5", v.Expand("/api/products/{{id}}"))
	assert.Equal(t, "/api/{{other}}", v.Expand("/api/{{other}}"))
}
