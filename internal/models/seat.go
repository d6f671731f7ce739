package models

import "time"

// SeatAggregate is the per-seat cumulative record. One exists per
// seat id, created implicitly on the first event and never deleted,
// only trimmed by the retention rules.
type SeatAggregate struct {
	SeatID            int                    `json:"seat_id"`
	DailyCounts       map[string]int         `json:"daily_counts"`
	CurrentSession    *SessionRecord         `json:"current_session,omitempty"`
	SessionHistory    []SessionRecord        `json:"session_history"`
	HourlyUsage       map[string]map[int]int `json:"hourly_usage"`
	LastCount         int                    `json:"last_count"`
	LastCountUpdate   time.Time              `json:"last_count_update"`
	LastSessionUpdate time.Time              `json:"last_session_update"`
}

func NewSeatAggregate(seatID int) *SeatAggregate {
	return &SeatAggregate{
		SeatID:      seatID,
		DailyCounts: make(map[string]int),
		HourlyUsage: make(map[string]map[int]int),
	}
}

// Clone returns a deep copy, safe to hand out across goroutines.
func (a *SeatAggregate) Clone() *SeatAggregate {
	if a == nil {
		return nil
	}
	cp := &SeatAggregate{
		SeatID:            a.SeatID,
		DailyCounts:       make(map[string]int, len(a.DailyCounts)),
		SessionHistory:    append([]SessionRecord(nil), a.SessionHistory...),
		HourlyUsage:       make(map[string]map[int]int, len(a.HourlyUsage)),
		LastCount:         a.LastCount,
		LastCountUpdate:   a.LastCountUpdate,
		LastSessionUpdate: a.LastSessionUpdate,
	}
	for d, c := range a.DailyCounts {
		cp.DailyCounts[d] = c
	}
	for d, hours := range a.HourlyUsage {
		hcp := make(map[int]int, len(hours))
		for h, c := range hours {
			hcp[h] = c
		}
		cp.HourlyUsage[d] = hcp
	}
	if a.CurrentSession != nil {
		s := *a.CurrentSession
		cp.CurrentSession = &s
	}
	return cp
}

// Occupied reports whether the seat currently holds an active session.
func (a *SeatAggregate) Occupied() bool {
	return a != nil && a.CurrentSession != nil && a.CurrentSession.Count > 0
}

// ArchiveEntry is a write-once batch of aged-out sessions moved into
// the archive collection by the maintenance sweep.
type ArchiveEntry struct {
	SeatID           int             `json:"seat_id"`
	ArchivedSessions []SessionRecord `json:"archived_sessions"`
	ArchiveDate      string          `json:"archive_date"`
}
