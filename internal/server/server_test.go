package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzagara/curvecast/internal/config"
	"github.com/tzagara/curvecast/internal/di"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		DataDir:      t.TempDir(),
		Port:         0,
		PriceFeedURL: "http://localhost:9100",
		Engine: config.EngineConfig{
			HalfLifeDays:          30,
			MinEarlyCloseProgress: 0.05,
			MinScoringProgress:    0.01,
			PayoffMinMultiple:     0.1,
			PayoffMaxMultiple:     100,
		},
	}

	container, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	return New(Config{
		Log:       zerolog.Nop(),
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
		DevMode:   true,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func submitBody(symbol string, stake int, userID string) map[string]interface{} {
	body := map[string]interface{}{
		"symbol":    symbol,
		"assetName": "Apple Inc.",
		"timeframe": "daily",
		"points": []map[string]float64{
			{"x": 0, "y": 100},
			{"x": 400, "y": 120},
			{"x": 800, "y": 140},
		},
		"canvasDimensions": map[string]float64{"width": 800, "height": 300},
		"chartBounds":      map[string]float64{"minPrice": 90, "maxPrice": 110, "lastPrice": 100},
		"stake":            stake,
	}
	if userID != "" {
		body["userId"] = userID
	}
	return body
}

func TestServer_Liveness(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_SystemHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/system/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Databases["engine"])
	assert.Equal(t, "ok", health.Databases["history"])
}

func TestServer_ForecastLifecycle(t *testing.T) {
	s := newTestServer(t)

	// Create a user
	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"id": "u1", "displayName": "Alex",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Submit a forecast
	rec = doJSON(t, s, http.MethodPost, "/api/forecasts", submitBody("AAPL", 10, "u1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var submitted struct {
		ForecastID      string  `json:"forecastId"`
		ContrarianScore float64 `json:"contrarianScore"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.ForecastID)
	assert.Equal(t, 0.5, submitted.ContrarianScore)

	// Fetch it back
	rec = doJSON(t, s, http.MethodGet, "/api/forecasts/"+submitted.ForecastID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The stake was taken
	rec = doJSON(t, s, http.MethodGet, "/api/users/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user struct {
		TokenBalance int `json:"tokenBalance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, 990, user.TokenBalance)

	// Settling immediately is fine but cannot close this early
	rec = doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/forecasts/%s/settle", submitted.ForecastID),
		map[string]interface{}{"actualPrice": 100.0, "earlyClose": true})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A plain recompute stays active
	rec = doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/forecasts/%s/settle", submitted.ForecastID),
		map[string]interface{}{"actualPrice": 100.0})
	require.Equal(t, http.StatusOK, rec.Code)
	var settled struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settled))
	assert.Equal(t, "active", settled.Status)
}

func TestServer_ListForecastsRequiresSymbol(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/forecasts", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SubmitValidation(t *testing.T) {
	s := newTestServer(t)

	body := submitBody("AAPL", 0, "")
	rec := doJSON(t, s, http.MethodPost, "/api/forecasts", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_InsufficientFunds(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"id": "u1", "displayName": "Alex",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/forecasts", submitBody("AAPL", 99999, "u1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_UnknownForecast(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/forecasts/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_EmptyLeaderboard(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Standings []json.RawMessage `json:"standings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Standings)
}

func TestServer_PerformanceHistoryEmpty(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"id": "u1", "displayName": "Alex",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/users/u1/performance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
