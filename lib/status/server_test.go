package status

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onkernel/swarm-updater/lib/reconciler"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	report *reconciler.Report
}

func (s staticSource) LastReport() *reconciler.Report { return s.report }

func newTestServer(t *testing.T, report *reconciler.Report) *httptest.Server {
	ts := httptest.NewServer(NewHandler("swarm-updater-test", staticSource{report: report}, slog.Default(), nil))
	t.Cleanup(ts.Close)
	return ts
}

func sampleReport() *reconciler.Report {
	return &reconciler.Report{
		CycleID:  "c1",
		Started:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Finished: time.Date(2024, 1, 1, 0, 0, 3, 0, time.UTC),
		Services: []reconciler.ServiceResult{
			{ServiceID: "svc1", ServiceName: "web", Image: "nginx:latest", State: reconciler.StateFresh},
		},
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusBeforeFirstCycle(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStatusJSON(t *testing.T) {
	ts := newTestServer(t, sampleReport())

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got reconciler.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "c1", got.CycleID)
	require.Len(t, got.Services, 1)
	require.Equal(t, reconciler.StateFresh, got.Services[0].State)
}

func TestStatusYAML(t *testing.T) {
	ts := newTestServer(t, sampleReport())

	rec := httptest.NewRecorder()
	ts.Config.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status?format=yaml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "cycle_id: c1")
	require.Contains(t, rec.Body.String(), "state: fresh")
}
