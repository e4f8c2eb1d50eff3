package commands

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/config"
	"github.com/Sumatoshi-tech/wtree/pkg/observability"
)

func newTestViewer(t *testing.T, metricsHandler http.Handler) *httptest.Server {
	t.Helper()

	return newTestViewerWith(t, observability.Providers{MetricsHandler: metricsHandler})
}

func newTestViewerWith(t *testing.T, providers observability.Providers) *httptest.Server {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	sess := &session{cfg: cfg, providers: providers, closeLog: func() error { return nil }}
	fillNoop(&sess.providers)

	v, err := buildViewer(sess, writeData(t, "budget.json", budgetJSON), "Budget")
	require.NoError(t, err)

	red, err := observability.NewREDMetrics(sess.providers.Meter)
	require.NoError(t, err)

	srv := httptest.NewServer(v.handler(sess.providers.Tracer, red, sess.providers.MetricsHandler))
	t.Cleanup(srv.Close)

	return srv
}

func request(t *testing.T, method, url string) (int, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, url, http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func visibleIDs(t *testing.T, base string) []string {
	t.Helper()

	status, body := request(t, http.MethodGet, base+"/api/nodes")
	require.Equal(t, http.StatusOK, status)

	var nodes []nodeView
	require.NoError(t, json.Unmarshal([]byte(body), &nodes))

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}

	return ids
}

func TestViewer_Page(t *testing.T) {
	t.Parallel()

	srv := newTestViewer(t, nil)

	status, body := request(t, http.MethodGet, srv.URL+"/")
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, body, `<div id="scene" class="scene">`)
	assert.Contains(t, body, "api/pointer/click/")
	assert.Contains(t, body, "<title>Budget")
}

func TestViewer_SceneAndStats(t *testing.T) {
	t.Parallel()

	srv := newTestViewer(t, nil)

	resp, err := http.Get(srv.URL + "/api/scene.svg") //nolint:noctx // test request
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))

	status, body := request(t, http.MethodGet, srv.URL+"/api/stats")
	require.Equal(t, http.StatusOK, status)

	var stats sceneStats
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Equal(t, 3, stats.Visible)
	assert.Equal(t, 2, stats.MaxDepth)
	assert.Contains(t, stats.Summary, "3 visible nodes")
}

func TestViewer_ToggleRoundTrip(t *testing.T) {
	t.Parallel()

	srv := newTestViewer(t, nil)

	assert.NotContains(t, visibleIDs(t, srv.URL), "a1")

	status, _ := request(t, http.MethodPost, srv.URL+"/api/toggle/a")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, visibleIDs(t, srv.URL), "a1")

	status, _ = request(t, http.MethodPost, srv.URL+"/api/toggle/a")
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, visibleIDs(t, srv.URL), "a1")
}

func TestViewer_ClickTogglesNode(t *testing.T) {
	t.Parallel()

	srv := newTestViewer(t, nil)

	status, _ := request(t, http.MethodPost, srv.URL+"/api/pointer/click/a")
	require.Equal(t, http.StatusNoContent, status)
	assert.Contains(t, visibleIDs(t, srv.URL), "a1")

	status, _ = request(t, http.MethodPost, srv.URL+"/api/pointer/mouseover/b")
	require.Equal(t, http.StatusNoContent, status)
}

func TestViewer_Errors(t *testing.T) {
	t.Parallel()

	srv := newTestViewer(t, nil)

	status, body := request(t, http.MethodPost, srv.URL+"/api/toggle/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "missing")

	status, body = request(t, http.MethodPost, srv.URL+"/api/toggle/bb")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "did you mean b, a, a1?")

	status, _ = request(t, http.MethodPost, srv.URL+"/api/pointer/wheel/a")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = request(t, http.MethodGet, srv.URL+"/api/toggle/a")
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, _ = request(t, http.MethodGet, srv.URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestViewer_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(rw, "# metrics\n")
	})

	srv := newTestViewer(t, metrics)

	status, body := request(t, http.MethodGet, srv.URL+"/healthz")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	status, body = request(t, http.MethodGet, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "# metrics"))
}

func TestViewer_PrometheusScrape(t *testing.T) {
	t.Parallel()

	handler, mp, err := observability.PrometheusHandler()
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	srv := newTestViewerWith(t, observability.Providers{Meter: mp.Meter("wtree"), MetricsHandler: handler})

	status, _ := request(t, http.MethodPost, srv.URL+"/api/toggle/a")
	require.Equal(t, http.StatusOK, status)

	status, body := request(t, http.MethodGet, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "wtree_layout_passes")
	assert.Contains(t, body, `trigger="toggle"`)
}
