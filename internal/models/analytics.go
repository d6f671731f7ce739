package models

// Analytics is the derived aggregate recomputed after every applied
// event: active seats, total retained sessions, mean session duration
// and the per-person-type tally across all seats.
type Analytics struct {
	ActiveSeats            int            `json:"active_seats"`
	TotalSessions          int            `json:"total_sessions"`
	AverageSessionDuration float64        `json:"average_session_duration_ms"`
	PersonTypes            map[string]int `json:"person_types"`
}

// Clone returns a copy safe to hand out while the original keeps
// being recomputed.
func (a Analytics) Clone() Analytics {
	cp := a
	cp.PersonTypes = make(map[string]int, len(a.PersonTypes))
	for k, v := range a.PersonTypes {
		cp.PersonTypes[k] = v
	}
	return cp
}

// SeatSession pairs a session with the seat it happened on, for
// cross-seat listings.
type SeatSession struct {
	SeatID int `json:"seat_id"`
	SessionRecord
}

// RangeReport is the analytics result over a closed date range.
type RangeReport struct {
	Start                  string         `json:"start"`
	End                    string         `json:"end"`
	Sessions               []SeatSession  `json:"sessions"`
	TotalSessions          int            `json:"total_sessions"`
	AverageSessionDuration float64        `json:"average_session_duration_ms"`
	PersonTypes            map[string]int `json:"person_types"`
}

// ComputeAnalytics derives an Analytics value from a seat map. Only
// sessions with a positive duration contribute to the mean.
func ComputeAnalytics(seats map[int]*SeatAggregate) Analytics {
	a := Analytics{PersonTypes: make(map[string]int)}
	var totalDuration int64
	var durationCount int
	for _, seat := range seats {
		if seat == nil {
			continue
		}
		if seat.Occupied() {
			a.ActiveSeats++
		}
		a.TotalSessions += len(seat.SessionHistory)
		for i := range seat.SessionHistory {
			s := &seat.SessionHistory[i]
			a.PersonTypes[s.PersonTypeKey()]++
			if s.DurationMs > 0 {
				totalDuration += s.DurationMs
				durationCount++
			}
		}
	}
	if durationCount > 0 {
		a.AverageSessionDuration = float64(totalDuration) / float64(durationCount)
	}
	return a
}
