package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hotseatd/internal/models"
	"hotseatd/internal/storage"
	"hotseatd/internal/structures"
)

// QueryFacadeInterface is the read-only projection the HTTP API
// serves from. Nothing here mutates state; reads never propagate
// store errors past this boundary, they return zero-valued results.
type QueryFacadeInterface interface {
	Seats() map[int]*models.SeatAggregate
	Seat(seatID int) *models.SeatAggregate
	CurrentSessions() map[int]*models.SessionRecord
	TodayCounts(ctx context.Context) map[int]int
	Heatmap(ctx context.Context, date string) map[int]map[int]int
	AnalyticsSnapshot() models.Analytics
	RecentSessions(limit int) []models.SeatSession
	AnalyticsForRange(start, end string) (*models.RangeReport, error)
}

type QueryFacade struct {
	config     *structures.Config
	reconciler ReconcilerInterface
	seats      storage.SeatStoreInterface
	now        func() time.Time
}

func NewQueryFacade(config *structures.Config, reconciler ReconcilerInterface, seats storage.SeatStoreInterface) QueryFacadeInterface {
	return &QueryFacade{
		config:     config,
		reconciler: reconciler,
		seats:      seats,
		now:        time.Now,
	}
}

func (q *QueryFacade) Seats() map[int]*models.SeatAggregate {
	return q.reconciler.Seats()
}

func (q *QueryFacade) Seat(seatID int) *models.SeatAggregate {
	return q.reconciler.Seat(seatID)
}

func (q *QueryFacade) CurrentSessions() map[int]*models.SessionRecord {
	out := make(map[int]*models.SessionRecord)
	for id, seat := range q.reconciler.Seats() {
		if seat.CurrentSession != nil {
			out[id] = seat.CurrentSession
		}
	}
	return out
}

func (q *QueryFacade) TodayCounts(ctx context.Context) map[int]int {
	return q.seats.GetTodayCounts(ctx, q.now())
}

func (q *QueryFacade) Heatmap(ctx context.Context, date string) map[int]map[int]int {
	return q.seats.GetHeatmap(ctx, date)
}

func (q *QueryFacade) AnalyticsSnapshot() models.Analytics {
	return q.reconciler.Analytics()
}

// RecentSessions lists the newest sessions across all seats, newest
// first, capped at limit.
func (q *QueryFacade) RecentSessions(limit int) []models.SeatSession {
	var all []models.SeatSession
	for id, seat := range q.reconciler.Seats() {
		for _, s := range seat.SessionHistory {
			all = append(all, models.SeatSession{SeatID: id, SessionRecord: s})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].EventTimestamp.After(all[j].EventTimestamp)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// AnalyticsForRange scans every seat's retained history and reports
// on the sessions whose classified date falls inside [start, end].
// Classification follows the session's own fallback chain.
func (q *QueryFacade) AnalyticsForRange(start, end string) (*models.RangeReport, error) {
	if _, err := time.Parse(models.DateLayout, start); err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	if _, err := time.Parse(models.DateLayout, end); err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if end < start {
		return nil, fmt.Errorf("range end %s before start %s", end, start)
	}

	today := models.DateKeyOf(q.now())
	report := &models.RangeReport{
		Start:       start,
		End:         end,
		PersonTypes: make(map[string]int),
	}
	var totalDuration int64
	var durationCount int
	for id, seat := range q.reconciler.Seats() {
		for _, s := range seat.SessionHistory {
			date := s.DateKey(today)
			if date < start || date > end {
				continue
			}
			report.Sessions = append(report.Sessions, models.SeatSession{SeatID: id, SessionRecord: s})
			report.PersonTypes[s.PersonTypeKey()]++
			if s.DurationMs > 0 {
				totalDuration += s.DurationMs
				durationCount++
			}
		}
	}
	sort.Slice(report.Sessions, func(i, j int) bool {
		if report.Sessions[i].SeatID != report.Sessions[j].SeatID {
			return report.Sessions[i].SeatID < report.Sessions[j].SeatID
		}
		return report.Sessions[i].EventTimestamp.Before(report.Sessions[j].EventTimestamp)
	})
	report.TotalSessions = len(report.Sessions)
	if durationCount > 0 {
		report.AverageSessionDuration = float64(totalDuration) / float64(durationCount)
	}
	return report, nil
}
