package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// --- IsDateRetained tests ---

func TestIsDateRetained_InsideWindow(t *testing.T) {
	assert.True(t, IsDateRetained("2025-07-01", "2025-07-02", 30))
	assert.True(t, IsDateRetained("2025-06-02", "2025-07-02", 30))
	assert.True(t, IsDateRetained("2025-07-02", "2025-07-02", 30))
}

func TestIsDateRetained_OutsideWindow(t *testing.T) {
	assert.False(t, IsDateRetained("2025-06-01", "2025-07-02", 30))
	assert.False(t, IsDateRetained("2024-01-01", "2025-07-02", 30))
}

func TestIsDateRetained_UnparseableDate(t *testing.T) {
	assert.False(t, IsDateRetained("yesterday", "2025-07-02", 30))
	assert.False(t, IsDateRetained("", "2025-07-02", 30))
}

func TestIsDateRetained_FutureDate(t *testing.T) {
	// A date ahead of today is inside the window by definition.
	assert.True(t, IsDateRetained("2025-07-03", "2025-07-02", 30))
}

// --- TruncateHistory tests ---

func TestTruncateHistory_UnderLimit(t *testing.T) {
	history := []SessionRecord{{Count: 1}, {Count: 2}}
	assert.Equal(t, history, TruncateHistory(history, 3))
}

func TestTruncateHistory_OldestDroppedFirst(t *testing.T) {
	history := []SessionRecord{{Count: 1}, {Count: 2}, {Count: 3}, {Count: 4}}
	got := TruncateHistory(history, 3)
	assert.Equal(t, []SessionRecord{{Count: 2}, {Count: 3}, {Count: 4}}, got)
}

func TestTruncateHistory_ExactLimit(t *testing.T) {
	history := []SessionRecord{{Count: 1}, {Count: 2}, {Count: 3}}
	assert.Equal(t, history, TruncateHistory(history, 3))
}

// --- DateKey fallback chain tests ---

func TestDateKey_EventTimestampWins(t *testing.T) {
	s := SessionRecord{
		EventTimestamp: time.Date(2025, 7, 5, 14, 0, 0, 0, time.UTC),
		SessionStart:   "2025-07-01 10:00:00",
	}
	assert.Equal(t, "2025-07-05", s.DateKey("2025-07-10"))
}

func TestDateKey_FallsBackToSessionStart(t *testing.T) {
	s := SessionRecord{SessionStart: "2025-07-01 10:00:00"}
	assert.Equal(t, "2025-07-01", s.DateKey("2025-07-10"))
}

func TestDateKey_FallsBackToToday(t *testing.T) {
	s := SessionRecord{SessionStart: "not a date"}
	assert.Equal(t, "2025-07-10", s.DateKey("2025-07-10"))

	empty := SessionRecord{}
	assert.Equal(t, "2025-07-10", empty.DateKey("2025-07-10"))
}

// --- ComputeAnalytics tests ---

func TestComputeAnalytics_Empty(t *testing.T) {
	a := ComputeAnalytics(map[int]*SeatAggregate{})
	assert.Equal(t, 0, a.ActiveSeats)
	assert.Equal(t, 0, a.TotalSessions)
	assert.Zero(t, a.AverageSessionDuration)
}

func TestComputeAnalytics_CountsAndMean(t *testing.T) {
	seats := map[int]*SeatAggregate{
		1: {
			CurrentSession: &SessionRecord{Count: 2},
			SessionHistory: []SessionRecord{
				{DurationMs: 1000, PersonType: "student"},
				{DurationMs: 3000, PersonType: "faculty"},
			},
		},
		2: {
			SessionHistory: []SessionRecord{
				{DurationMs: 0, PersonType: "student"},
			},
		},
	}
	a := ComputeAnalytics(seats)
	assert.Equal(t, 1, a.ActiveSeats)
	assert.Equal(t, 3, a.TotalSessions)
	// Zero-duration sessions stay out of the mean.
	assert.InDelta(t, 2000.0, a.AverageSessionDuration, 0.001)
	assert.Equal(t, 2, a.PersonTypes["student"])
	assert.Equal(t, 1, a.PersonTypes["faculty"])
}

func TestComputeAnalytics_NilSeatSkipped(t *testing.T) {
	a := ComputeAnalytics(map[int]*SeatAggregate{1: nil})
	assert.Equal(t, 0, a.ActiveSeats)
}

// --- Clone tests ---

func TestSeatAggregateClone_Independent(t *testing.T) {
	orig := NewSeatAggregate(1)
	orig.DailyCounts["2025-07-01"] = 3
	orig.HourlyUsage["2025-07-01"] = map[int]int{10: 2}
	orig.CurrentSession = &SessionRecord{Count: 3}

	cp := orig.Clone()
	cp.DailyCounts["2025-07-01"] = 99
	cp.HourlyUsage["2025-07-01"][10] = 99
	cp.CurrentSession.Count = 99

	assert.Equal(t, 3, orig.DailyCounts["2025-07-01"])
	assert.Equal(t, 2, orig.HourlyUsage["2025-07-01"][10])
	assert.Equal(t, 3, orig.CurrentSession.Count)
}

func TestSeatAggregateClone_Nil(t *testing.T) {
	var a *SeatAggregate
	assert.Nil(t, a.Clone())
}
