package server_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/game"
	"github.com/UnknownOlympus/wayfarer/internal/lookup"
	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/UnknownOlympus/wayfarer/internal/ratelimit"
	"github.com/UnknownOlympus/wayfarer/internal/server"
	"github.com/UnknownOlympus/wayfarer/test/mocks"
	"github.com/facebookgo/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testBox = models.BoundingBox{North: 51.17, South: 50.90, East: -113.90, West: -114.27}

type fixedSampler struct{ coord models.Coordinate }

func (s fixedSampler) Sample(models.BoundingBox) models.Coordinate { return s.coord }

// newTestHandler wires an engine in the guessing phase behind the router.
func newTestHandler(t *testing.T) (http.Handler, *clock.Mock) {
	t.Helper()

	clk := clock.NewMock()
	logger := slog.Default()
	reg := prometheus.NewRegistry()
	limiter := ratelimit.New(ratelimit.Config{
		Window:   time.Minute,
		MaxCalls: 100,
		Lockout:  5 * time.Minute,
	}, clk, logger)

	provider := mocks.NewProvider(t)
	provider.On("LookupPanorama", mock.Anything, mock.Anything).
		Return(lookup.Panorama{Found: true}, nil)
	provider.On("ReverseGeocode", mock.Anything, mock.Anything).
		Return("", lookup.ErrNoAddress).Maybe()

	engine, err := game.New(game.Config{
		Box:  testBox,
		City: "Calgary",
	}, clk, limiter, provider, fixedSampler{models.Coordinate{Lat: 51.05, Lng: -114.05}},
		metrics.NewMetrics(reg), logger)
	require.NoError(t, err)
	t.Cleanup(engine.Stop)

	engine.Start(t.Context())
	require.Eventually(t, func() bool {
		return engine.Snapshot().Round == 1
	}, time.Second, time.Millisecond)

	return server.New(engine, logger).Handler(reg), clk
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) models.Snapshot {
	t.Helper()
	var snap models.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	return snap
}

func TestHandleState(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	snap := decodeSnapshot(t, rec)
	assert.Equal(t, models.PhaseViewing, snap.Phase)
	assert.Equal(t, uint64(1), snap.Round)
	assert.Nil(t, snap.Truth)
}

func TestHandleGuess(t *testing.T) {
	handler, clk := newTestHandler(t)
	clk.Add(10 * time.Second) // countdown expires, guessing opens

	t.Run("valid guess is scored", func(t *testing.T) {
		body := strings.NewReader(`{"lat": 51.05, "lng": -114.05}`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/guess", body))

		require.Equal(t, http.StatusOK, rec.Code)
		snap := decodeSnapshot(t, rec)
		assert.Equal(t, models.PhaseScored, snap.Phase)
		assert.Equal(t, 5000, snap.Score)
		assert.Equal(t, models.OutcomeSuccess, snap.Outcome)
		require.NotNil(t, snap.Truth)
	})

	t.Run("malformed payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/guess", strings.NewReader("not json")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("coordinate out of range", func(t *testing.T) {
		body := strings.NewReader(`{"lat": 123.0, "lng": -114.05}`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/guess", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleSkip(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/skip", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleHint(t *testing.T) {
	handler, _ := newTestHandler(t)

	// The quadrant-only hint is produced synchronously, before any address
	// lookup resolves.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/hint", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.True(t, snap.Hint.Used)
	assert.Contains(t, snap.Hint.Text, "Calgary")
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wayfarer_rounds_started_total")
}
