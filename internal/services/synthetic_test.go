package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotseatd/internal/models"
)

func TestGenerateSyntheticEvents_OnePerSeat(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	events := GenerateSyntheticEvents([]int{1, 2, 3}, now)

	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.SeatID)
		assert.Equal(t, models.KindSnapshot, ev.Kind)
		assert.Equal(t, models.OriginSynthetic, ev.Origin)
		assert.Equal(t, now, ev.At)
		require.NotNil(t, ev.Snapshot)
	}
}

func TestGenerateSyntheticEvents_PlausibleShape(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	today := models.DateKeyOf(now)

	// Many rounds so both occupied and empty branches are exercised.
	for i := 0; i < 50; i++ {
		for _, ev := range GenerateSyntheticEvents([]int{1}, now) {
			snap := ev.Snapshot
			count := snap.DailyCounts[today]
			assert.GreaterOrEqual(t, count, 0)
			assert.LessOrEqual(t, count, 10)
			assert.Equal(t, count, snap.LastCount)
			if snap.CurrentSession != nil {
				assert.Equal(t, count, snap.CurrentSession.Count)
				assert.Contains(t, syntheticPersonTypes, snap.CurrentSession.PersonType)
				assert.GreaterOrEqual(t, snap.CurrentSession.DurationMs, int64(0))
				assert.NotEmpty(t, snap.CurrentSession.SessionStart)
			} else {
				assert.Zero(t, count)
			}
		}
	}
}

func TestGenerateSyntheticEvents_NoSeats(t *testing.T) {
	assert.Empty(t, GenerateSyntheticEvents(nil, time.Now()))
}
