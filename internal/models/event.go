package models

import "time"

// EventKind discriminates the SeatEvent variant. Exactly one payload
// field is set per kind.
type EventKind uint8

const (
	KindCount EventKind = iota
	KindSession
	KindSnapshot
)

func (k EventKind) String() string {
	switch k {
	case KindCount:
		return "count"
	case KindSession:
		return "session"
	case KindSnapshot:
		return "snapshot"
	}
	return "unknown"
}

// Origin identifies which source produced an event. The reconciler
// uses it to decide whether an event counts as live-source activity
// and the change-feed adapter uses it to drop self-originated echoes.
type Origin uint8

const (
	OriginBroker Origin = iota
	OriginFeed
	OriginManual
	OriginSynthetic
)

func (o Origin) String() string {
	switch o {
	case OriginBroker:
		return "broker"
	case OriginFeed:
		return "feed"
	case OriginManual:
		return "manual"
	case OriginSynthetic:
		return "synthetic"
	}
	return "unknown"
}

// Live reports whether the origin is a real telemetry source, as
// opposed to the synthetic fallback generator.
func (o Origin) Live() bool { return o != OriginSynthetic }

// SeatEvent is the transient unit of work flowing from source
// adapters into the seat store and the reconciler. Count and Session
// events carry deltas; Snapshot events carry a whole-document state
// from the change feed and are applied as authoritative overwrites.
type SeatEvent struct {
	SeatID   int
	Kind     EventKind
	Origin   Origin
	At       time.Time
	Count    int
	Session  *SessionRecord
	Snapshot *SeatAggregate
}

// CountPayload is the wire shape of a seat_counts broker message.
type CountPayload struct {
	SeatID int `json:"seat_id"`
	Count  int `json:"count"`
}

// SessionPayload is the wire shape of a sitting_events broker message.
type SessionPayload struct {
	SeatID            int     `json:"seat_id"`
	Count             int     `json:"count"`
	SessionStart      string  `json:"session_start_datetime"`
	SessionEnd        string  `json:"session_end_datetime"`
	DurationMs        int64   `json:"session_duration_ms"`
	AverageResistance float64 `json:"average_resistance"`
	PersonType        string  `json:"person_type"`
}

// Record converts the payload to a SessionRecord without an event
// timestamp; the ingest path stamps it.
func (p *SessionPayload) Record() *SessionRecord {
	return &SessionRecord{
		Count:             p.Count,
		SessionStart:      p.SessionStart,
		SessionEnd:        p.SessionEnd,
		DurationMs:        p.DurationMs,
		AverageResistance: p.AverageResistance,
		PersonType:        p.PersonType,
	}
}
