package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/catalog"
	"github.com/roach88/nlsql/internal/config"
	"github.com/roach88/nlsql/internal/engine"
	"github.com/roach88/nlsql/internal/store"
	"github.com/roach88/nlsql/internal/testutil"
)

type failingExecutor struct{}

func (failingExecutor) Execute(ctx context.Context, ds config.DataSource, sqlText string) (engine.Result, error) {
	return engine.Result{}, errors.New("disk I/O error")
}

func newTestServer(t *testing.T, opts ...engine.Option) (*Server, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	base := []engine.Option{
		engine.WithLogger(testutil.Logger(t)),
		engine.WithHistory(st),
	}
	eng := engine.New(testutil.Config(t), append(base, opts...)...)

	srv, err := New(eng, st, Options{HistorySize: 10, Logger: testutil.Logger(t)})
	require.NoError(t, err)
	return srv, st
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAsk_OK(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/ask", `{"question":"How many tracks are there?","dataset":"chinook"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out engine.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, engine.StatusOK, out.Status)
	assert.Equal(t, "SELECT COUNT(*) FROM Track;", out.Trace.SQL)
	assert.NotEmpty(t, out.Trace.TraceID)
}

func TestAsk_Unsupported(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/ask", `{"question":"What is the weather like on Mars?","dataset":"chinook"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out engine.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, engine.StatusUnsupported, out.Status)
	assert.Equal(t, engine.UnsupportedAnswer, out.Answer)
}

func TestAsk_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed body", `{"question":`, "invalid request body"},
		{"empty question", `{"question":"   ","dataset":"chinook"}`, "question is required"},
		{"missing dataset", `{"question":"How many tracks are there?"}`, "dataset is required"},
		{"unknown dataset", `{"question":"How many tracks are there?","dataset":"nope"}`, "unknown dataset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/ask", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestAsk_ExecutionFailure(t *testing.T) {
	srv, _ := newTestServer(t, engine.WithExecutor(failingExecutor{}))

	rec := do(t, srv, http.MethodPost, "/ask", `{"question":"How many tracks are there?","dataset":"chinook"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var out engine.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, engine.StatusFailed, out.Status)
	assert.Contains(t, out.Error, "disk I/O error")
	assert.Equal(t, 2, out.Trace.Attempts)
}

func TestSchema(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/schema?dataset=university", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var schema map[string][]catalog.Column
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	assert.Len(t, schema, len(testutil.UniversityTables))
	assert.Contains(t, schema, "Student")

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/schema", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/schema?dataset=nope", "").Code)
}

func TestHistory(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/ask", `{"question":"How many tracks are there?","dataset":"chinook"}`)
	do(t, srv, http.MethodPost, "/ask", `{"question":"What tables are in this database?","dataset":"university"}`)

	rec := do(t, srv, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []store.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "chinook", entries[0].Dataset)
	assert.Equal(t, "university", entries[1].Dataset)

	rec = do(t, srv, http.MethodGet, "/history?dataset=university", "")
	require.Equal(t, http.StatusOK, rec.Code)
	entries = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "What tables are in this database?", entries[0].Question)
}

func TestHistory_NoStore(t *testing.T) {
	eng := engine.New(testutil.Config(t), engine.WithLogger(testutil.Discard()))
	srv, err := New(eng, nil, Options{Logger: testutil.Discard()})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/ask", `{"question":"How many tracks are there?","dataset":"chinook"}`)
	do(t, srv, http.MethodPost, "/ask", `{"question":"What is the weather like on Mars?","dataset":"chinook"}`)

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_queries":2,"successful_queries":1,"failed_queries":1,"auto_retries":0}`, rec.Body.String())
}

func TestPrometheusMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/ask", `{"question":"How many tracks are there?","dataset":"chinook"}`)

	rec := do(t, srv, http.MethodGet, "/metrics/prometheus", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "nlsql_queries_total 1")
	assert.Contains(t, body, "nlsql_queries_successful_total 1")
	assert.Contains(t, body, `nlsql_http_requests_total{method="POST",path="/ask",status="200"} 1`)
	assert.Contains(t, body, "nlsql_http_request_duration_seconds_bucket")
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}
