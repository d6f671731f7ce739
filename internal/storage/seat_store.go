package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"

	"hotseatd/internal/models"
	"hotseatd/internal/providers"
	"hotseatd/internal/structures"
)

// SeatStoreInterface is the persistence surface for per-seat
// aggregates. Write operations apply the retention policy on every
// merge; read operations fall back to zero-valued results when the
// backing store is unreachable.
type SeatStoreInterface interface {
	ApplyCountEvent(ctx context.Context, seatID, count int, now time.Time) error
	ApplySessionEvent(ctx context.Context, seatID int, session *models.SessionRecord, now time.Time) error
	Get(ctx context.Context, seatID int) (*models.SeatAggregate, error)
	GetAll(ctx context.Context) (map[int]*models.SeatAggregate, error)
	GetTodayCounts(ctx context.Context, now time.Time) map[int]int
	GetHeatmap(ctx context.Context, date string) map[int]map[int]int
	ReplaceSessionHistory(ctx context.Context, seatID int, history []models.SessionRecord) error
	SubscribeChanges(fn func(*models.SeatAggregate)) (func(), error)
}

type SeatStore struct {
	config     *structures.Config
	store      DocumentStore
	logger     providers.Logger
	instanceID string
}

func NewSeatStore(config *structures.Config, store DocumentStore, logger providers.Logger) SeatStoreInterface {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	host, _ := os.Hostname()
	return &SeatStore{
		config:     config,
		store:      store,
		logger:     logger,
		instanceID: fmt.Sprintf("%s-%d-%s", host, os.Getpid(), hex.EncodeToString(buf)),
	}
}

func docID(seatID int) string {
	return fmt.Sprintf("seat_%d", seatID)
}

func seatIDFromDoc(id string) int {
	return cast.ToInt(strings.TrimPrefix(id, "seat_"))
}

// load fetches the typed aggregate, creating an empty one on first
// reference for a seat id.
func (s *SeatStore) load(ctx context.Context, seatID int) (*models.SeatAggregate, error) {
	doc, err := s.store.Get(ctx, s.config.Store.Collection, docID(seatID))
	if errors.Is(err, ErrNotFound) {
		return models.NewSeatAggregate(seatID), nil
	}
	if err != nil {
		return nil, err
	}
	agg, err := AggregateFromDoc(doc)
	if err != nil {
		return nil, err
	}
	agg.SeatID = seatID
	return agg, nil
}

func (s *SeatStore) ApplyCountEvent(ctx context.Context, seatID, count int, now time.Time) error {
	agg, err := s.load(ctx, seatID)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "count event for seat %d dropped: %s", seatID, err)
		return err
	}
	today := models.DateKeyOf(now)
	counts := make(map[string]int, len(agg.DailyCounts)+1)
	for date, c := range agg.DailyCounts {
		if models.IsDateRetained(date, today, s.config.Retention.DailyCountWindowDays) {
			counts[date] = c
		}
	}
	counts[today] = count

	err = s.store.SetMerge(ctx, s.config.Store.Collection, docID(seatID), map[string]any{
		"seat_id":           seatID,
		"daily_counts":      counts,
		"last_count":        count,
		"last_count_update": now,
		"last_writer":       s.instanceID,
	})
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "count merge for seat %d failed: %s", seatID, err)
		return err
	}
	return nil
}

func (s *SeatStore) ApplySessionEvent(ctx context.Context, seatID int, session *models.SessionRecord, now time.Time) error {
	rec := *session
	if rec.EventTimestamp.IsZero() {
		rec.EventTimestamp = now
	}
	today := models.DateKeyOf(now)
	hourField := fmt.Sprintf("hourly_usage.%s.%d", today, now.Hour())

	err := s.store.SetMerge(ctx, s.config.Store.Collection, docID(seatID), map[string]any{
		"seat_id":             seatID,
		"current_session":     rec,
		"session_history":     ArrayUnion{rec},
		hourField:             Increment(1),
		"last_session_update": now,
		"last_writer":         s.instanceID,
	})
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "session merge for seat %d failed: %s", seatID, err)
		return err
	}
	return s.trimHistory(ctx, seatID)
}

// trimHistory is the write-then-verify half of a session merge:
// errors here propagate instead of degrading, since an unbounded
// history would violate the retention invariant silently.
func (s *SeatStore) trimHistory(ctx context.Context, seatID int) error {
	agg, err := s.load(ctx, seatID)
	if err != nil {
		return fmt.Errorf("history trim for seat %d: %w", seatID, err)
	}
	limit := s.config.Retention.SessionHistoryLimit
	if len(agg.SessionHistory) <= limit {
		return nil
	}
	err = s.store.SetMerge(ctx, s.config.Store.Collection, docID(seatID), map[string]any{
		"session_history": models.TruncateHistory(agg.SessionHistory, limit),
		"last_writer":     s.instanceID,
	})
	if err != nil {
		return fmt.Errorf("history trim for seat %d: %w", seatID, err)
	}
	return nil
}

// ReplaceSessionHistory overwrites the stored history wholesale. The
// maintenance sweep uses it when archival is configured as a move.
func (s *SeatStore) ReplaceSessionHistory(ctx context.Context, seatID int, history []models.SessionRecord) error {
	return s.store.SetMerge(ctx, s.config.Store.Collection, docID(seatID), map[string]any{
		"session_history": history,
		"last_writer":     s.instanceID,
	})
}

func (s *SeatStore) Get(ctx context.Context, seatID int) (*models.SeatAggregate, error) {
	doc, err := s.store.Get(ctx, s.config.Store.Collection, docID(seatID))
	if err != nil {
		return nil, err
	}
	agg, err := AggregateFromDoc(doc)
	if err != nil {
		return nil, err
	}
	agg.SeatID = seatID
	return agg, nil
}

func (s *SeatStore) GetAll(ctx context.Context) (map[int]*models.SeatAggregate, error) {
	docs, err := s.store.GetAll(ctx, s.config.Store.Collection)
	if err != nil {
		return nil, err
	}
	out := make(map[int]*models.SeatAggregate, len(docs))
	for id, doc := range docs {
		agg, err := AggregateFromDoc(doc)
		if err != nil {
			s.logger.Warnf(providers.TypeStore, "skipping malformed document %s: %s", id, err)
			continue
		}
		if agg.SeatID == 0 {
			agg.SeatID = seatIDFromDoc(id)
		}
		out[agg.SeatID] = agg
	}
	return out, nil
}

func (s *SeatStore) GetTodayCounts(ctx context.Context, now time.Time) map[int]int {
	counts := make(map[int]int, s.config.Seats.Count)
	for _, id := range s.config.SeatIDs() {
		counts[id] = 0
	}
	all, err := s.GetAll(ctx)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "today counts degraded to zeros: %s", err)
		return counts
	}
	today := models.DateKeyOf(now)
	for id, agg := range all {
		if _, known := counts[id]; !known {
			continue
		}
		counts[id] = agg.DailyCounts[today]
	}
	return counts
}

// GetHeatmap returns the seat-by-hour matrix for one date. The matrix
// is zero-prefilled across the full seat domain and configured hour
// range: a date with no data reads as zero occupancy everywhere, not
// as missing keys.
func (s *SeatStore) GetHeatmap(ctx context.Context, date string) map[int]map[int]int {
	from, to := s.config.Heatmap.FromHour, s.config.Heatmap.ToHour
	if to == 0 {
		to = 23
	}
	heatmap := make(map[int]map[int]int, s.config.Seats.Count)
	for _, id := range s.config.SeatIDs() {
		row := make(map[int]int, to-from+1)
		for h := from; h <= to; h++ {
			row[h] = 0
		}
		heatmap[id] = row
	}
	all, err := s.GetAll(ctx)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "heatmap for %s degraded to zeros: %s", date, err)
		return heatmap
	}
	for id, agg := range all {
		row, known := heatmap[id]
		if !known {
			continue
		}
		for hour, count := range agg.HourlyUsage[date] {
			if hour >= from && hour <= to {
				row[hour] = count
			}
		}
	}
	return heatmap
}

// SubscribeChanges adapts the raw change feed into typed aggregates,
// dropping echoes of this process's own writes so a broker-sourced
// merge cannot be re-applied as an independent event.
func (s *SeatStore) SubscribeChanges(fn func(*models.SeatAggregate)) (func(), error) {
	return s.store.Subscribe(s.config.Store.Collection, func(id string, doc Document) {
		if writer, _ := doc["last_writer"].(string); writer == s.instanceID {
			s.logger.Debugf(providers.TypeFeed, "ignoring own echo for %s", id)
			return
		}
		agg, err := AggregateFromDoc(doc)
		if err != nil {
			s.logger.Warnf(providers.TypeFeed, "malformed change for %s: %s", id, err)
			return
		}
		if agg.SeatID == 0 {
			agg.SeatID = seatIDFromDoc(id)
		}
		fn(agg)
	})
}
