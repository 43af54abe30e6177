package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"visionhelp/internal/content"
	"visionhelp/internal/helpctx"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	helpStore := map[string]content.Document{
		"admin:workbench": {Title: "Workbench Help"},
		"attack-surface":  {Title: "Attack Surface Basics"},
	}
	tooltipStore := map[string]map[string]content.Tooltip{
		"workbench": {
			"alert-queue": {
				Title:   "Alert Queue",
				Content: "Pending alerts.",
				Roles:   map[string]string{"ciso": "Queue depth trend."},
			},
		},
	}
	writeJSON(t, filepath.Join(dir, content.HelpStoreName), helpStore)
	writeJSON(t, filepath.Join(dir, content.TooltipStoreName), tooltipStore)

	tracker := helpctx.New(helpctx.WithLocation("/dashboard/workbench"))
	t.Cleanup(func() { tracker.Close() })
	resolver := content.NewResolver(content.FileFetcher{Dir: dir})

	return New(tracker, resolver, DefaultConfig())
}

func writeJSON(t *testing.T, path string, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestGetContext(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodGet, "/api/context", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Context    helpctx.Context `json:"context"`
		ContextKey string          `json:"contextKey"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, helpctx.RoleAdmin, body.Context.Role)
	require.Equal(t, "workbench", body.Context.CurrentPage)
	require.Equal(t, "admin:workbench", body.ContextKey)
}

func TestSetRoleCorrectsInvalidInput(t *testing.T) {
	s := testServer(t)

	resp := doJSON(t, s.Handler(), http.MethodPut, "/api/context/role", map[string]string{"role": "viewer"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "viewer")

	resp = doJSON(t, s.Handler(), http.MethodPut, "/api/context/role", map[string]string{"role": "intruder"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "admin")
}

func TestSetRoleMissingBody(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodPut, "/api/context/role", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestResolveCurrentContext(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodGet, "/api/help", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var doc content.Document
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	require.Equal(t, "Workbench Help", doc.Title)
	require.Equal(t, "admin:workbench", doc.Metadata.ContextKey)
}

func TestResolveExplicitKeyWithFallback(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodGet, "/api/help/analyst:attack-surface:overview", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var doc content.Document
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	require.Equal(t, "Attack Surface Basics", doc.Title)
	require.Equal(t, "analyst:attack-surface:overview", doc.Metadata.ContextKey)
}

func TestResolveUnknownKeyStillReturns200(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodGet, "/api/help/viewer:no-such-page", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var doc content.Document
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	require.True(t, doc.Metadata.IsFallback)
}

func TestTooltipEndpoint(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodGet, "/api/tooltip/workbench/alert-queue?role=ciso", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var tip content.Tooltip
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tip))
	require.Equal(t, "Alert Queue", tip.Title)
	require.Equal(t, "Queue depth trend.", tip.RoleContent)
	require.Equal(t, "ciso", tip.CurrentRole)
}

func TestTooltipDefaultsToTrackedRole(t *testing.T) {
	s := testServer(t)
	doJSON(t, s.Handler(), http.MethodPut, "/api/context/role", map[string]string{"role": "ciso"})

	resp := doJSON(t, s.Handler(), http.MethodGet, "/api/tooltip/workbench/alert-queue", nil)
	var tip content.Tooltip
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tip))
	require.Equal(t, "ciso", tip.CurrentRole)
}

func TestPreloadAndCacheStats(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodPost, "/api/preload", map[string]any{
		"keys": []string{"admin:workbench", "viewer:attack-surface"},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, s.Handler(), http.MethodGet, "/api/cache/stats", nil)
	var stats content.Stats
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	require.Equal(t, 2, stats.Size)
}

func TestSetSourceClearsCacheOverHTTP(t *testing.T) {
	s := testServer(t)
	doJSON(t, s.Handler(), http.MethodGet, "/api/help/admin:workbench", nil)

	resp := doJSON(t, s.Handler(), http.MethodPut, "/api/source", map[string]string{"source": "llm"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "llm")

	resp = doJSON(t, s.Handler(), http.MethodGet, "/api/cache/stats", nil)
	var stats content.Stats
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	require.Equal(t, 0, stats.Size)
}

func TestInteractionEndpoint(t *testing.T) {
	s := testServer(t)
	resp := doJSON(t, s.Handler(), http.MethodPost, "/api/context/interaction", map[string]string{
		"elementId": "risk-score",
		"action":    "hover",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, s.Handler(), http.MethodGet, "/api/context", nil)
	require.Contains(t, resp.Body.String(), "risk-score")
}

func TestContextStreamDeliversRoleEvents(t *testing.T) {
	s := testServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/context"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	doJSON(t, s.Handler(), http.MethodPut, "/api/context/role", map[string]string{"role": "analyst"})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event struct {
		Event   string          `json:"event"`
		Value   string          `json:"value"`
		Context helpctx.Context `json:"context"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, "roleChanged", event.Event)
	require.Equal(t, "analyst", event.Value)
	require.Equal(t, helpctx.RoleAnalyst, event.Context.Role)
}
