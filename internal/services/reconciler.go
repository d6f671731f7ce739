package services

import (
	"sync"
	"time"

	uatomic "go.uber.org/atomic"

	"hotseatd/internal/models"
	"hotseatd/internal/providers"
	"hotseatd/internal/structures"
)

// Subscriber receives the updated seat and the freshly recomputed
// analytics after every applied event. Delivery is synchronous and in
// registration order; a subscriber must not call back into Apply.
type Subscriber interface {
	OnSeatUpdate(seatID int, seat *models.SeatAggregate, analytics models.Analytics)
}

// ReconcilerInterface is the authoritative in-memory seat view. It
// merges events from every source (broker, change feed, manual
// updates and the synthetic fallback) last-write-wins per seat in
// delivery order. No event carries a producer-side order token, so
// delivery order IS the order; two transports racing on the same seat
// resolve to whichever event lands last.
type ReconcilerInterface interface {
	Apply(ev models.SeatEvent)
	Subscribe(sub Subscriber)
	Seat(seatID int) *models.SeatAggregate
	Seats() map[int]*models.SeatAggregate
	Analytics() models.Analytics
	Start()
	Stop()

	// storage.ViewSource
	SnapshotView() map[int]*models.SeatAggregate
	PutSeats(seats map[int]*models.SeatAggregate)

	// providers.ViewStats
	ActiveSeatCount() int
	TotalSessionCount() int
	SyntheticActive() bool
}

type Reconciler struct {
	config *structures.Config
	logger providers.Logger
	status *models.ConnectionStatus

	mu        sync.Mutex
	seats     map[int]*models.SeatAggregate
	analytics models.Analytics
	subs      []Subscriber
	lastLive  time.Time

	syntheticOn *uatomic.Bool
	stop        chan struct{}
	stopOnce    sync.Once

	now func() time.Time
}

func NewReconciler(config *structures.Config, logger providers.Logger, status *models.ConnectionStatus) ReconcilerInterface {
	return &Reconciler{
		config:      config,
		logger:      logger,
		status:      status,
		seats:       make(map[int]*models.SeatAggregate),
		analytics:   models.Analytics{PersonTypes: make(map[string]int)},
		syntheticOn: uatomic.NewBool(false),
		stop:        make(chan struct{}),
		now:         time.Now,
	}
}

func (r *Reconciler) Apply(ev models.SeatEvent) {
	at := ev.At
	if at.IsZero() {
		at = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seats[ev.SeatID]
	if seat == nil {
		seat = models.NewSeatAggregate(ev.SeatID)
		r.seats[ev.SeatID] = seat
	}

	switch ev.Kind {
	case models.KindCount:
		today := models.DateKeyOf(at)
		seat.DailyCounts[today] = ev.Count
		for date := range seat.DailyCounts {
			if !models.IsDateRetained(date, today, r.config.Retention.DailyCountWindowDays) {
				delete(seat.DailyCounts, date)
			}
		}
		seat.LastCount = ev.Count
		seat.LastCountUpdate = at

	case models.KindSession:
		if ev.Session == nil {
			r.logger.Warnf(providers.TypeApp, "session event without payload for seat %d dropped", ev.SeatID)
			return
		}
		rec := *ev.Session
		if rec.EventTimestamp.IsZero() {
			rec.EventTimestamp = at
		}
		seat.CurrentSession = &rec
		seat.SessionHistory = models.TruncateHistory(
			append(seat.SessionHistory, rec),
			r.config.Retention.SessionHistoryLimit,
		)
		today := models.DateKeyOf(at)
		if seat.HourlyUsage[today] == nil {
			seat.HourlyUsage[today] = make(map[int]int)
		}
		seat.HourlyUsage[today][at.Hour()]++
		seat.LastSessionUpdate = at

	case models.KindSnapshot:
		if ev.Snapshot == nil {
			r.logger.Warnf(providers.TypeApp, "snapshot event without payload for seat %d dropped", ev.SeatID)
			return
		}
		// Whole-document feed snapshots are authoritative, not merged.
		seat = ev.Snapshot.Clone()
		seat.SeatID = ev.SeatID
		r.seats[ev.SeatID] = seat
	}

	if ev.Origin.Live() {
		r.lastLive = at
		if r.syntheticOn.CompareAndSwap(true, false) {
			r.status.Set(models.SourceSynthetic, models.StateDown)
			r.logger.Infof(providers.TypeSynthetic, "live %s event for seat %d, suspending synthetic data", ev.Origin, ev.SeatID)
		}
	}

	r.analytics = models.ComputeAnalytics(r.seats)

	snap := seat.Clone()
	analytics := r.analytics.Clone()
	for _, sub := range r.subs {
		sub.OnSeatUpdate(ev.SeatID, snap, analytics)
	}
}

func (r *Reconciler) Subscribe(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
}

func (r *Reconciler) Seat(seatID int) *models.SeatAggregate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seats[seatID].Clone()
}

func (r *Reconciler) Seats() map[int]*models.SeatAggregate {
	return r.SnapshotView()
}

func (r *Reconciler) SnapshotView() map[int]*models.SeatAggregate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]*models.SeatAggregate, len(r.seats))
	for id, seat := range r.seats {
		out[id] = seat.Clone()
	}
	return out
}

// PutSeats replaces the view wholesale. Used by the startup restore;
// it is not live-source activity, so the staleness clock is untouched.
func (r *Reconciler) PutSeats(seats map[int]*models.SeatAggregate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seats = make(map[int]*models.SeatAggregate, len(seats))
	for id, seat := range seats {
		r.seats[id] = seat.Clone()
	}
	r.analytics = models.ComputeAnalytics(r.seats)
}

func (r *Reconciler) Analytics() models.Analytics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.analytics.Clone()
}

func (r *Reconciler) ActiveSeatCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.analytics.ActiveSeats
}

func (r *Reconciler) TotalSessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.analytics.TotalSessions
}

func (r *Reconciler) SyntheticActive() bool {
	return r.syntheticOn.Load()
}

// Start launches the synthetic fallback ticker. While no live source
// has delivered an event within the staleness window, the generator
// produces randomized per-seat snapshots each tick; the first live
// event suspends it again.
func (r *Reconciler) Start() {
	go func() {
		ticker := time.NewTicker(r.config.Reconciler.SyntheticInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.syntheticTick()
			}
		}
	}()
}

func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Reconciler) syntheticTick() {
	r.mu.Lock()
	stale := r.now().Sub(r.lastLive) >= r.config.Reconciler.StalenessWindow
	r.mu.Unlock()

	if !stale {
		return
	}
	if r.syntheticOn.CompareAndSwap(false, true) {
		r.status.Set(models.SourceSynthetic, models.StateLive)
		r.logger.Infof(providers.TypeSynthetic, "no live source within %s, generating synthetic data", r.config.Reconciler.StalenessWindow)
	}
	for _, ev := range GenerateSyntheticEvents(r.config.SeatIDs(), r.now()) {
		// Re-check per event: a live event may land mid-batch.
		if !r.syntheticOn.Load() {
			return
		}
		r.Apply(ev)
	}
}
