package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pulseguard/pulseguard/internal/domain"
	"github.com/pulseguard/pulseguard/internal/httpapi/middleware"
	"github.com/pulseguard/pulseguard/internal/probe"
	"github.com/pulseguard/pulseguard/internal/repo/memory"
)

type stubProber struct {
	out probe.Outcome
}

func (p stubProber) Probe(_ context.Context, _ string, _ time.Duration) probe.Outcome {
	return p.out
}

func testRouter(t *testing.T, st *memory.Store, out probe.Outcome) http.Handler {
	t.Helper()
	srv := NewServer(zaptest.NewLogger(t), st, st, st, stubProber{out: out}, 30)
	keys := middleware.Keys{
		Public: []string{"pub-key"},
		Admin:  []string{"adm-key"},
	}
	return srv.Router(keys, 0, 0)
}

func doJSON(t *testing.T, h http.Handler, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateMonitorRunsFirstCheck(t *testing.T) {
	st := memory.New()
	h := testRouter(t, st, probe.Outcome{StatusCode: 200, LatencyMS: 42})

	rec := doJSON(t, h, http.MethodPost, "/api/monitors", "adm-key", map[string]any{
		"name": "api", "url": "https://Example.com:443/", "interval": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Monitor domain.Monitor     `json:"monitor"`
		Result  domain.CheckResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://example.com", resp.Monitor.URL)
	assert.Equal(t, domain.StatusUp, resp.Result.Status)
	assert.Equal(t, 200, resp.Result.HTTPCode)

	rows, err := st.RecentByMonitor(context.Background(), resp.Monitor.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestCreateMonitorRejectsBadInput(t *testing.T) {
	st := memory.New()
	h := testRouter(t, st, probe.Outcome{StatusCode: 200})

	rec := doJSON(t, h, http.MethodPost, "/api/monitors", "adm-key", map[string]any{"url": "ftp://example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/monitors", "adm-key", map[string]any{
		"url": "https://example.com", "organization_id": "not-a-uuid",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthBoundaries(t *testing.T) {
	st := memory.New()
	h := testRouter(t, st, probe.Outcome{StatusCode: 200})

	// Read endpoints want any key; writes want an admin key.
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, h, http.MethodGet, "/api/monitors", "", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/api/monitors", "pub-key", nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, h, http.MethodPost, "/api/monitors", "pub-key", map[string]any{"url": "https://example.com"}).Code)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMonitorNotFound(t *testing.T) {
	st := memory.New()
	h := testRouter(t, st, probe.Outcome{StatusCode: 200})

	rec := doJSON(t, h, http.MethodGet, "/api/monitors/"+uuid.NewString(), "pub-key", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/monitors/nope", "pub-key", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPauseResume(t *testing.T) {
	st := memory.New()
	h := testRouter(t, st, probe.Outcome{StatusCode: 200})

	m := &domain.Monitor{OrgID: uuid.New(), Name: "m", URL: "https://example.com", IntervalSec: 60, TimeoutSec: 10, Status: domain.StatusUp}
	require.NoError(t, st.Create(context.Background(), m))

	rec := doJSON(t, h, http.MethodPost, "/api/monitors/"+m.ID.String()+"/pause", "adm-key", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := st.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.True(t, got.Paused)
	assert.Equal(t, domain.StatusPaused, got.Status)

	rec = doJSON(t, h, http.MethodPost, "/api/monitors/"+m.ID.String()+"/resume", "adm-key", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err = st.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.False(t, got.Paused)

	rec = doJSON(t, h, http.MethodPost, "/api/monitors/"+uuid.NewString()+"/pause", "adm-key", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryAndAlertsEndpoints(t *testing.T) {
	st := memory.New()
	h := testRouter(t, st, probe.Outcome{StatusCode: 200})

	m := &domain.Monitor{OrgID: uuid.New(), Name: "m", URL: "https://example.com", IntervalSec: 60, TimeoutSec: 10, Status: domain.StatusUp}
	require.NoError(t, st.Create(context.Background(), m))
	for i := 0; i < 3; i++ {
		require.NoError(t, st.RecordCheck(context.Background(), &domain.CheckResult{
			MonitorID: m.ID, Status: domain.StatusUp, HTTPCode: 200, CheckedAt: time.Now().UTC(),
		}))
	}
	require.NoError(t, st.Emit(context.Background(), &domain.Alert{
		MonitorID: m.ID, OrgID: m.OrgID, Type: domain.AlertTypeDown,
		Severity: domain.SeverityCritical, Message: "Server returned 503", CreatedAt: time.Now().UTC(),
	}))

	rec := doJSON(t, h, http.MethodGet, "/api/monitors/"+m.ID.String()+"/history?limit=2", "pub-key", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist []domain.CheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Len(t, hist, 2)

	rec = doJSON(t, h, http.MethodGet, "/api/alerts", "pub-key", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var alerts []domain.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "Server returned 503", alerts[0].Message)
}

func TestURLHelpers(t *testing.T) {
	assert.True(t, isValidHTTPURL("https://example.com"))
	assert.True(t, isValidHTTPURL("http://example.com:8080/path"))
	assert.False(t, isValidHTTPURL("ftp://example.com"))
	assert.False(t, isValidHTTPURL("https://"))
	assert.False(t, isValidHTTPURL("not a url"))

	assert.Equal(t, "https://example.com", normalizeHTTPURL(" https://EXAMPLE.com:443/ "))
	assert.Equal(t, "http://example.com/x", normalizeHTTPURL("http://example.com:80/x"))
	assert.Equal(t, "https://example.com:8443/x", normalizeHTTPURL("https://example.com:8443/x"))
}
