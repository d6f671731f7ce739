package adapters

import (
	"sync"
	"time"

	"hotseatd/internal/models"
	"hotseatd/internal/providers"
	"hotseatd/internal/storage"
)

// FeedAdapter turns the document store's change feed into snapshot
// events. Each change delivers a whole document, so the events are
// authoritative overwrites, not deltas. Echoes of this process's own
// writes are already filtered below in the seat store.
type FeedAdapter struct {
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	seats   storage.SeatStoreInterface
	status  *models.ConnectionStatus

	handler  func(models.SeatEvent)
	cancel   func()
	stopOnce sync.Once
	now      func() time.Time
}

func NewFeedAdapter(
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	seats storage.SeatStoreInterface,
	status *models.ConnectionStatus,
) *FeedAdapter {
	return &FeedAdapter{
		logger:  logger,
		metrics: metrics,
		seats:   seats,
		status:  status,
		now:     time.Now,
	}
}

func (f *FeedAdapter) OnEvent(fn func(models.SeatEvent)) {
	f.handler = fn
}

func (f *FeedAdapter) Start() error {
	cancel, err := f.seats.SubscribeChanges(func(agg *models.SeatAggregate) {
		f.metrics.IncEventsIngested(models.SourceFeed)
		if f.handler != nil {
			f.handler(models.SeatEvent{
				SeatID:   agg.SeatID,
				Kind:     models.KindSnapshot,
				Origin:   models.OriginFeed,
				At:       f.now(),
				Snapshot: agg,
			})
		}
	})
	if err != nil {
		f.status.Set(models.SourceFeed, models.StateDown)
		f.metrics.SetConnectionUp(models.SourceFeed, false)
		return err
	}
	f.cancel = cancel
	f.status.Set(models.SourceFeed, models.StateLive)
	f.metrics.SetConnectionUp(models.SourceFeed, true)
	f.logger.Infof(providers.TypeFeed, "change feed subscribed")
	return nil
}

func (f *FeedAdapter) Stop() {
	f.stopOnce.Do(func() {
		if f.cancel != nil {
			f.cancel()
		}
		f.status.Set(models.SourceFeed, models.StateDown)
		f.metrics.SetConnectionUp(models.SourceFeed, false)
	})
}
