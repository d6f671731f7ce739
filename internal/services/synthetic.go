package services

import (
	"math/rand"
	"time"

	"hotseatd/internal/models"
)

var syntheticPersonTypes = []string{"student", "faculty", "visitor"}

// GenerateSyntheticEvents produces one randomized snapshot per seat,
// shaped like real telemetry: ~30% occupancy, count 1-10, a session
// started within the last five minutes.
func GenerateSyntheticEvents(seatIDs []int, now time.Time) []models.SeatEvent {
	events := make([]models.SeatEvent, 0, len(seatIDs))
	today := models.DateKeyOf(now)
	for _, id := range seatIDs {
		occupied := rand.Float64() > 0.7
		count := 0
		var session *models.SessionRecord
		if occupied {
			count = rand.Intn(10) + 1
			start := now.Add(-time.Duration(rand.Int63n(int64(5 * time.Minute))))
			session = &models.SessionRecord{
				Count:             count,
				SessionStart:      start.Format("2006-01-02 15:04:05"),
				DurationMs:        now.Sub(start).Milliseconds(),
				AverageResistance: rand.Float64() * 100,
				PersonType:        syntheticPersonTypes[rand.Intn(len(syntheticPersonTypes))],
				EventTimestamp:    now,
			}
		}
		snapshot := models.NewSeatAggregate(id)
		snapshot.DailyCounts[today] = count
		snapshot.CurrentSession = session
		snapshot.LastCount = count
		snapshot.LastCountUpdate = now
		events = append(events, models.SeatEvent{
			SeatID:   id,
			Kind:     models.KindSnapshot,
			Origin:   models.OriginSynthetic,
			At:       now,
			Snapshot: snapshot,
		})
	}
	return events
}
