package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"hotseatd/internal/models"
	"hotseatd/internal/services"
)

type HealthController struct {
	reconciler services.ReconcilerInterface
	status     *models.ConnectionStatus
	startTime  time.Time
}

type healthResponse struct {
	Status        string            `json:"status"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Sources       map[string]string `json:"sources"`
	ActiveSeats   int               `json:"active_seats"`
	Synthetic     bool              `json:"synthetic_active"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	sources := make(map[string]string)
	for name, state := range hc.status.All() {
		sources[name] = state.String()
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Sources:       sources,
		ActiveSeats:   hc.reconciler.ActiveSeatCount(),
		Synthetic:     hc.reconciler.SyntheticActive(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(reconciler services.ReconcilerInterface, status *models.ConnectionStatus) *HealthController {
	return &HealthController{
		reconciler: reconciler,
		status:     status,
		startTime:  time.Now(),
	}
}
