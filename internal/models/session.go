package models

import (
	"strings"
	"time"
)

// SessionRecord is one completed (or in-progress) sitting session as
// reported by a seat sensor. Start/end datetimes are kept verbatim as
// the sensor formats them; EventTimestamp is stamped by the ingest
// path when the record enters the system.
type SessionRecord struct {
	Count             int       `json:"count"`
	SessionStart      string    `json:"session_start_datetime"`
	SessionEnd        string    `json:"session_end_datetime"`
	DurationMs        int64     `json:"session_duration_ms"`
	AverageResistance float64   `json:"average_resistance"`
	PersonType        string    `json:"person_type"`
	EventTimestamp    time.Time `json:"timestamp"`
}

// DateKey classifies the session onto an ISO date for range queries.
// Fallback chain: event timestamp, then the sensor-reported session
// start, then today. Old sensors omit the event timestamp and some
// omit the start datetime entirely.
func (s *SessionRecord) DateKey(today string) string {
	if !s.EventTimestamp.IsZero() {
		return s.EventTimestamp.Format(DateLayout)
	}
	if d, ok := parseSensorDate(s.SessionStart); ok {
		return d
	}
	return today
}

// parseSensorDate extracts the YYYY-MM-DD prefix from a sensor
// datetime string ("2025-07-16 14:30:00" or RFC3339).
func parseSensorDate(v string) (string, bool) {
	if len(v) < len(DateLayout) {
		return "", false
	}
	d := v[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, d); err != nil {
		return "", false
	}
	return d, true
}

// PersonTypeKey normalizes the reported person type for tallying.
func (s *SessionRecord) PersonTypeKey() string {
	t := strings.ToLower(strings.TrimSpace(s.PersonType))
	if t == "" {
		return "unknown"
	}
	return t
}
