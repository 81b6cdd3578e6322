package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/metrics"
	"github.com/corey/unitylens/internal/ports"
)

var noteTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type mockQueries struct{}

func (mockQueries) Health() socket.HealthResult {
	return socket.HealthResult{Status: "ok", ProjectRoot: "/proj", MetaSync: true, TrackedAssets: 2}
}

func (mockQueries) Features() socket.FeaturesResult {
	return socket.FeaturesResult{Features: map[string]bool{"typeToggle": false}, Commands: []string{}}
}

func (mockQueries) Notifications(since time.Time) []ports.Notification {
	all := []ports.Notification{
		{Level: ports.LevelWarning, Message: "Skipped moving A.cs.meta", Time: noteTime},
		{Level: ports.LevelError, Message: "boom", Time: noteTime.Add(time.Second)},
	}
	var out []ports.Notification
	for _, n := range all {
		if n.Time.After(since) {
			out = append(out, n)
		}
	}
	return out
}

func setupTestServer(t *testing.T, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	srv := NewServer(mockQueries{}, m.Handler(), "", nil)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, dst any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dst != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil)

	var health socket.HealthResult
	resp := getJSON(t, ts.URL+"/api/health", &health)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.MetaSync)
	assert.Equal(t, 2, health.TrackedAssets)
	assert.NotEmpty(t, health.Uptime)
}

func TestFeaturesEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil)

	var f socket.FeaturesResult
	resp := getJSON(t, ts.URL+"/api/features", &f)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, map[string]bool{"typeToggle": false}, f.Features)
}

func TestNotificationsEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil)

	var res socket.NotificationsResult
	getJSON(t, ts.URL+"/api/notifications", &res)
	assert.Len(t, res.Notifications, 2)

	res = socket.NotificationsResult{}
	getJSON(t, ts.URL+"/api/notifications?since="+itoa(noteTime.UnixNano()), &res)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "boom", res.Notifications[0].Message)

	res = socket.NotificationsResult{}
	getJSON(t, ts.URL+"/api/notifications?since="+itoa(noteTime.Add(time.Hour).UnixNano()), &res)
	assert.NotNil(t, res.Notifications, "empty list, not null")
	assert.Empty(t, res.Notifications)

	resp := getJSON(t, ts.URL+"/api/notifications?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.SidecarOp("rename", "collision")
	ts := setupTestServer(t, m)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `unitylens_sidecar_operations_total{op="rename",result="collision"} 1`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	srv := NewServer(mockQueries{}, nil, "", nil)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t, nil)
	resp, err := http.Post(ts.URL+"/api/health", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStartStop_PortFile(t *testing.T) {
	portFile := filepath.Join(t.TempDir(), "run", "http.port")
	srv := NewServer(mockQueries{}, nil, portFile, nil)
	require.NoError(t, srv.Start(0))

	port, err := ReadPort(portFile)
	require.NoError(t, err)
	assert.Equal(t, srv.Port(), port)
	assert.NotZero(t, port)

	var health socket.HealthResult
	getJSON(t, srv.URL()+"/api/health", &health)
	assert.Equal(t, "ok", health.Status)

	srv.Stop()
	srv.Stop()
	_, err = ReadPort(portFile)
	assert.Error(t, err, "port file removed on stop")
}

func TestDefaultPort(t *testing.T) {
	p := DefaultPort("/home/me/Game")
	assert.GreaterOrEqual(t, p, 19000)
	assert.Less(t, p, 20000)
	assert.Equal(t, p, DefaultPort("/home/me/Game"))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
