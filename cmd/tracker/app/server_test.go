package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrutov/heattrack/internal/location"
	"github.com/mkrutov/heattrack/internal/permission"
	"github.com/mkrutov/heattrack/internal/storage"
	"github.com/mkrutov/heattrack/internal/track"
	"github.com/mkrutov/heattrack/internal/tracker"
)

func newTestServer(t *testing.T, decision permission.Decision) (*httptest.Server, *storage.MemoryStore, *tracker.Tracker) {
	t.Helper()

	store := storage.NewMemoryStore()
	tr := tracker.New(store,
		location.NewSimulatedProvider(-33.86, 151.21, 1),
		permission.NewStatic(decision),
		tracker.WithInterval(10*time.Millisecond))

	srv := newServer("localhost:0", tr, discardLogger())
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		if tr.State() == tracker.Tracking {
			_ = tr.Stop()
			tr.Wait()
		}
	})

	return ts, store, tr
}

func TestServer_Status(t *testing.T) {
	ts, _, _ := newTestServer(t, permission.Granted)

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "idle", status.State)
	assert.Equal(t, 0, status.Samples)
}

func TestServer_StartStopLifecycle(t *testing.T) {
	ts, _, tr := newTestServer(t, permission.Granted)

	resp, err := http.Post(ts.URL+"/track/start", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tracker.Tracking, tr.State())

	// A second start conflicts.
	resp, err = http.Post(ts.URL+"/track/start", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/track/stop", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tracker.Idle, tr.State())

	resp, err = http.Post(ts.URL+"/track/stop", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_StartDenied(t *testing.T) {
	ts, _, tr := newTestServer(t, permission.Denied)

	resp, err := http.Post(ts.URL+"/track/start", "", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, tracker.Idle, tr.State())
}

func TestServer_TrackAndClear(t *testing.T) {
	ts, store, _ := newTestServer(t, permission.Granted)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := store.Append(ctx, track.New(float64(i), float64(i), nil))
		require.NoError(t, err)
	}

	resp, err := http.Get(ts.URL + "/track")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tk trackResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tk))
	assert.Len(t, tk.Samples, 2)
	assert.Equal(t, 2, tk.Summary.Count)

	resp, err = http.Post(ts.URL+"/track/clear", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared clearResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cleared))
	assert.EqualValues(t, 2, cleared.Removed)

	samples, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, samples)
}
