package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotseatd/internal/models"
	"hotseatd/internal/services"
	"hotseatd/internal/testutil"
)

func newTestHealthController(t *testing.T) (*HealthController, services.ReconcilerInterface, *models.ConnectionStatus) {
	t.Helper()
	status := models.NewConnectionStatus()
	reconciler := services.NewReconciler(controllerConfig(), &testutil.MockLogger{}, status)
	return NewHealthController(reconciler, status), reconciler, status
}

func TestHealth_ReturnsOK(t *testing.T) {
	hc, _, status := newTestHealthController(t)
	status.Set(models.SourceBroker, models.StateLive)
	status.Set(models.SourceFeed, models.StateDown)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "live", resp.Sources[models.SourceBroker])
	assert.Equal(t, "down", resp.Sources[models.SourceFeed])
	assert.False(t, resp.Synthetic)
}

func TestHealth_ReflectsActiveSeats(t *testing.T) {
	hc, reconciler, _ := newTestHealthController(t)
	reconciler.Apply(models.SeatEvent{
		SeatID: 1, Kind: models.KindSession, Origin: models.OriginBroker,
		At:      time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
		Session: &models.SessionRecord{Count: 2},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ActiveSeats)
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc, _, _ := newTestHealthController(t)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1h1m5s", formatDuration(time.Hour+time.Minute+5*time.Second))
	assert.Equal(t, "0h0m0s", formatDuration(0))
}
