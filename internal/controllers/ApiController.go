package controllers

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"hotseatd/internal/models"
	"hotseatd/internal/providers"
	"hotseatd/internal/services"
	"hotseatd/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const defaultSessionLimit = 20

type ApiController struct {
	logger     providers.Logger
	facade     services.QueryFacadeInterface
	reconciler services.ReconcilerInterface
	seats      storage.SeatStoreInterface
	cache      providers.CacheProviderInterface
	now        func() time.Time
}

func NewApiController(
	logger providers.Logger,
	facade services.QueryFacadeInterface,
	reconciler services.ReconcilerInterface,
	seats storage.SeatStoreInterface,
	cache providers.CacheProviderInterface,
) *ApiController {
	return &ApiController{
		logger:     logger,
		facade:     facade,
		reconciler: reconciler,
		seats:      seats,
		cache:      cache,
		now:        time.Now,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetSeats(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "seats", func() (any, error) {
		return ac.facade.Seats(), nil
	})
}

func (ac *ApiController) GetSeat(w http.ResponseWriter, r *http.Request) {
	id := cast.ToInt(r.URL.Query().Get("id"))
	if id <= 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	seat := ac.facade.Seat(id)
	if seat == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, seat)
}

func (ac *ApiController) GetToday(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "today", func() (any, error) {
		return ac.facade.TodayCounts(r.Context()), nil
	})
}

func (ac *ApiController) GetSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit = cast.ToInt(raw)
		if limit <= 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
	}
	ac.serveFromCacheOrCompute(w, "sessions:"+cast.ToString(limit), func() (any, error) {
		return ac.facade.RecentSessions(limit), nil
	})
}

func (ac *ApiController) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "current", func() (any, error) {
		return ac.facade.CurrentSessions(), nil
	})
}

func (ac *ApiController) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = models.DateKeyOf(ac.now())
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "heatmap:"+date, func() (any, error) {
		return ac.facade.Heatmap(r.Context(), date), nil
	})
}

func (ac *ApiController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "analytics", func() (any, error) {
		return ac.facade.AnalyticsSnapshot(), nil
	})
}

func (ac *ApiController) GetAnalyticsRange(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	report, err := ac.facade.AnalyticsForRange(start, end)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	writeJSON(w, report)
}

// eventRequest is the body of a manual event submission. Kind selects
// the variant: a bare occupancy count or a full session.
type eventRequest struct {
	Kind string `json:"kind"`
	models.SessionPayload
}

// ReceiveEvent ingests a manual event. It follows the broker path:
// persist first, then apply to the live view, so a hand-submitted
// event is indistinguishable from a sensor one downstream.
func (ac *ApiController) ReceiveEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload eventRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if payload.SeatID <= 0 || payload.Count < 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	now := ac.now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch payload.Kind {
	case "count":
		if err := ac.seats.ApplyCountEvent(ctx, payload.SeatID, payload.Count, now); err != nil {
			ac.logger.Warnf(providers.TypePost, "manual count for seat %d not persisted: %s", payload.SeatID, err)
		}
		ac.reconciler.Apply(models.SeatEvent{
			SeatID: payload.SeatID,
			Kind:   models.KindCount,
			Origin: models.OriginManual,
			At:     now,
			Count:  payload.Count,
		})
	case "session":
		session := payload.Record()
		session.EventTimestamp = now
		if err := ac.seats.ApplySessionEvent(ctx, payload.SeatID, session, now); err != nil {
			ac.logger.Warnf(providers.TypePost, "manual session for seat %d not persisted: %s", payload.SeatID, err)
		}
		ac.reconciler.Apply(models.SeatEvent{
			SeatID:  payload.SeatID,
			Kind:    models.KindSession,
			Origin:  models.OriginManual,
			At:      now,
			Session: session,
		})
	default:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func writeJSON(w http.ResponseWriter, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
