package models

import "time"

// DateLayout is the ISO date key used throughout daily counts,
// hourly usage and archive document ids.
const DateLayout = "2006-01-02"

func DateKeyOf(t time.Time) string { return t.Format(DateLayout) }

// IsDateRetained reports whether a daily-count key is still inside
// the retention window: date >= today - windowDays. Unparseable keys
// are never retained.
func IsDateRetained(date, today string, windowDays int) bool {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	t, err := time.Parse(DateLayout, today)
	if err != nil {
		return false
	}
	cutoff := t.AddDate(0, 0, -windowDays)
	return !d.Before(cutoff)
}

// TruncateHistory keeps the last limit elements, preserving order.
// The original slice is returned untouched when already within the
// limit; a non-positive limit empties the history.
func TruncateHistory(history []SessionRecord, limit int) []SessionRecord {
	if limit <= 0 {
		return nil
	}
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
