package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotseatd/internal/models"
	"hotseatd/internal/structures"
	"hotseatd/internal/testutil"
)

func reconcilerConfig() *structures.Config {
	return &structures.Config{
		Seats: structures.SeatsConfig{Count: 3, FirstID: 1},
		Retention: structures.RetentionConfig{
			DailyCountWindowDays: 30,
			SessionHistoryLimit:  3,
			ArchiveAfterDays:     90,
		},
		Reconciler: structures.ReconcilerConfig{
			StalenessWindow:   30 * time.Second,
			SyntheticInterval: time.Second,
		},
	}
}

func newTestReconciler(t *testing.T) (*Reconciler, *models.ConnectionStatus) {
	t.Helper()
	status := models.NewConnectionStatus()
	r := NewReconciler(reconcilerConfig(), &testutil.MockLogger{}, status).(*Reconciler)
	return r, status
}

func at(date string, hour int) time.Time {
	d, _ := time.Parse("2006-01-02", date)
	return d.Add(time.Duration(hour) * time.Hour)
}

// --- Apply tests ---

func TestApply_CountUpdatesDailyAndLast(t *testing.T) {
	r, _ := newTestReconciler(t)

	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginBroker, At: at("2025-07-01", 10), Count: 5})

	seat := r.Seat(1)
	require.NotNil(t, seat)
	assert.Equal(t, 5, seat.DailyCounts["2025-07-01"])
	assert.Equal(t, 5, seat.LastCount)
}

func TestApply_CountPrunesRetentionWindow(t *testing.T) {
	r, _ := newTestReconciler(t)

	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginBroker, At: at("2025-07-01", 10), Count: 5})
	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginBroker, At: at("2025-08-15", 10), Count: 2})

	seat := r.Seat(1)
	assert.NotContains(t, seat.DailyCounts, "2025-07-01")
	assert.Equal(t, 2, seat.DailyCounts["2025-08-15"])
}

func TestApply_SessionAppendsAndBounds(t *testing.T) {
	r, _ := newTestReconciler(t)

	for i := 1; i <= 4; i++ {
		r.Apply(models.SeatEvent{
			SeatID:  1,
			Kind:    models.KindSession,
			Origin:  models.OriginBroker,
			At:      at("2025-07-01", 14),
			Session: &models.SessionRecord{Count: i},
		})
	}

	seat := r.Seat(1)
	require.Len(t, seat.SessionHistory, 3)
	assert.Equal(t, 2, seat.SessionHistory[0].Count)
	assert.Equal(t, 4, seat.SessionHistory[2].Count)
	assert.Equal(t, 4, seat.HourlyUsage["2025-07-01"][14])
	require.NotNil(t, seat.CurrentSession)
	assert.Equal(t, 4, seat.CurrentSession.Count)
}

func TestApply_SessionWithoutPayloadDropped(t *testing.T) {
	r, _ := newTestReconciler(t)
	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindSession, Origin: models.OriginBroker, At: at("2025-07-01", 14)})
	assert.Nil(t, r.Seat(1).CurrentSession)
}

func TestApply_SnapshotOverwrites(t *testing.T) {
	r, _ := newTestReconciler(t)

	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginBroker, At: at("2025-07-01", 10), Count: 5})

	snapshot := models.NewSeatAggregate(1)
	snapshot.DailyCounts["2025-07-02"] = 9
	snapshot.LastCount = 9
	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindSnapshot, Origin: models.OriginFeed, At: at("2025-07-02", 10), Snapshot: snapshot})

	seat := r.Seat(1)
	assert.NotContains(t, seat.DailyCounts, "2025-07-01", "snapshots replace, they do not merge")
	assert.Equal(t, 9, seat.DailyCounts["2025-07-02"])
}

func TestApply_SnapshotIsCloned(t *testing.T) {
	r, _ := newTestReconciler(t)

	snapshot := models.NewSeatAggregate(1)
	snapshot.DailyCounts["2025-07-02"] = 9
	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindSnapshot, Origin: models.OriginFeed, Snapshot: snapshot})

	snapshot.DailyCounts["2025-07-02"] = 99
	assert.Equal(t, 9, r.Seat(1).DailyCounts["2025-07-02"])
}

// --- synthetic fallback tests ---

func TestSyntheticTick_ActivatesWhenStale(t *testing.T) {
	r, status := newTestReconciler(t)
	r.now = func() time.Time { return at("2025-07-01", 12) }
	// No live event ever arrived; lastLive is zero and far beyond the window.

	r.syntheticTick()

	assert.True(t, r.SyntheticActive())
	assert.Equal(t, models.StateLive, status.Get(models.SourceSynthetic))
	assert.Len(t, r.Seats(), 3, "every configured seat gets a synthetic snapshot")
}

func TestSyntheticTick_QuietWhileLive(t *testing.T) {
	r, _ := newTestReconciler(t)
	now := at("2025-07-01", 12)
	r.now = func() time.Time { return now }

	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginBroker, At: now, Count: 1})
	r.syntheticTick()

	assert.False(t, r.SyntheticActive())
	assert.Len(t, r.Seats(), 1)
}

func TestApply_LiveEventSuspendsSynthetic(t *testing.T) {
	r, status := newTestReconciler(t)
	r.now = func() time.Time { return at("2025-07-01", 12) }
	r.syntheticTick()
	require.True(t, r.SyntheticActive())

	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginBroker, At: at("2025-07-01", 12), Count: 2})

	assert.False(t, r.SyntheticActive())
	assert.Equal(t, models.StateDown, status.Get(models.SourceSynthetic))
}

func TestApply_SyntheticEventDoesNotSuspendItself(t *testing.T) {
	r, _ := newTestReconciler(t)
	r.now = func() time.Time { return at("2025-07-01", 12) }
	r.syntheticTick()
	require.True(t, r.SyntheticActive())

	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginSynthetic, At: at("2025-07-01", 12), Count: 2})

	assert.True(t, r.SyntheticActive())
}

// --- subscriber tests ---

type recordingSubscriber struct {
	seatIDs   []int
	analytics []models.Analytics
	seats     []*models.SeatAggregate
}

func (s *recordingSubscriber) OnSeatUpdate(seatID int, seat *models.SeatAggregate, analytics models.Analytics) {
	s.seatIDs = append(s.seatIDs, seatID)
	s.seats = append(s.seats, seat)
	s.analytics = append(s.analytics, analytics)
}

func TestSubscribe_NotifiedPerEvent(t *testing.T) {
	r, _ := newTestReconciler(t)
	sub := &recordingSubscriber{}
	r.Subscribe(sub)

	r.Apply(models.SeatEvent{SeatID: 2, Kind: models.KindCount, Origin: models.OriginBroker, At: at("2025-07-01", 10), Count: 3})

	require.Len(t, sub.seatIDs, 1)
	assert.Equal(t, 2, sub.seatIDs[0])
	assert.Equal(t, 3, sub.seats[0].LastCount)
}

func TestSubscribe_ReceivesClones(t *testing.T) {
	r, _ := newTestReconciler(t)
	sub := &recordingSubscriber{}
	r.Subscribe(sub)

	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginBroker, At: at("2025-07-01", 10), Count: 3})
	sub.seats[0].DailyCounts["2025-07-01"] = 99

	assert.Equal(t, 3, r.Seat(1).DailyCounts["2025-07-01"])
}

// --- view tests ---

func TestPutSeats_ReplacesViewAndRecomputes(t *testing.T) {
	r, _ := newTestReconciler(t)
	r.Apply(models.SeatEvent{SeatID: 1, Kind: models.KindCount, Origin: models.OriginBroker, At: at("2025-07-01", 10), Count: 3})

	restored := models.NewSeatAggregate(2)
	restored.CurrentSession = &models.SessionRecord{Count: 1}
	restored.SessionHistory = []models.SessionRecord{{Count: 1, DurationMs: 5000}}
	r.PutSeats(map[int]*models.SeatAggregate{2: restored})

	assert.Nil(t, r.Seat(1))
	assert.NotNil(t, r.Seat(2))
	assert.Equal(t, 1, r.ActiveSeatCount())
	assert.Equal(t, 1, r.TotalSessionCount())
}

func TestAnalytics_Recomputed(t *testing.T) {
	r, _ := newTestReconciler(t)

	r.Apply(models.SeatEvent{
		SeatID: 1, Kind: models.KindSession, Origin: models.OriginBroker,
		At:      at("2025-07-01", 10),
		Session: &models.SessionRecord{Count: 2, DurationMs: 4000, PersonType: "faculty"},
	})

	a := r.Analytics()
	assert.Equal(t, 1, a.ActiveSeats)
	assert.Equal(t, 1, a.TotalSessions)
	assert.InDelta(t, 4000.0, a.AverageSessionDuration, 0.001)
	assert.Equal(t, 1, a.PersonTypes["faculty"])
}

func TestStop_Idempotent(t *testing.T) {
	r, _ := newTestReconciler(t)
	r.Start()
	r.Stop()
	r.Stop()
}
