package adapters

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	json "github.com/goccy/go-json"

	"hotseatd/internal/models"
	"hotseatd/internal/providers"
	"hotseatd/internal/storage"
	"hotseatd/internal/structures"
)

const (
	sessionTopicSuffix = "sitting_events"
	countTopicSuffix   = "seat_counts"

	brokerOpTimeout = 10 * time.Second
)

// BrokerAdapter subscribes to the sensor topics on an MQTT broker and
// turns messages into seat events. It is the only adapter that also
// persists what it ingests; the change feed and the reconciler both
// observe the result, so the write is stamped with this process's
// writer id and the feed drops the echo.
//
// Reconnects are driven by the adapter itself, not the client library:
// exponential backoff from the configured base, a capped number of
// attempts, then a permanent failed state.
type BrokerAdapter struct {
	config  *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	seats   storage.SeatStoreInterface
	status  *models.ConnectionStatus

	client  mqtt.Client
	handler func(models.SeatEvent)

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	now      func() time.Time
}

func NewBrokerAdapter(
	config *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	seats storage.SeatStoreInterface,
	status *models.ConnectionStatus,
) *BrokerAdapter {
	return &BrokerAdapter{
		config:  config,
		logger:  logger,
		metrics: metrics,
		seats:   seats,
		status:  status,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
}

func (b *BrokerAdapter) OnEvent(fn func(models.SeatEvent)) {
	b.handler = fn
}

func (b *BrokerAdapter) Start() error {
	if !b.config.Broker.Enabled {
		b.logger.Infof(providers.TypeBroker, "broker source disabled")
		b.status.Set(models.SourceBroker, models.StateDown)
		return nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", b.config.Broker.Host, b.config.Broker.Port)).
		SetClientID(b.config.Broker.ClientID).
		SetUsername(b.config.Broker.Username).
		SetPassword(b.config.Broker.Password).
		SetAutoReconnect(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			b.logger.Warnf(providers.TypeBroker, "connection lost: %s", err)
			b.status.Set(models.SourceBroker, models.StateDown)
			b.metrics.SetConnectionUp(models.SourceBroker, false)
			b.wg.Add(1)
			go b.reconnectLoop()
		})
	b.client = mqtt.NewClient(opts)

	b.status.Set(models.SourceBroker, models.StateConnecting)
	if err := b.connect(); err != nil {
		// First connect failing is not fatal for the process; the
		// reconnect loop keeps trying up to the attempt limit.
		b.logger.Warnf(providers.TypeBroker, "initial connect failed: %s", err)
		b.wg.Add(1)
		go b.reconnectLoop()
	}
	return nil
}

func (b *BrokerAdapter) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
		if b.client != nil && b.client.IsConnected() {
			b.client.Disconnect(250)
		}
	})
	b.wg.Wait()
}

func (b *BrokerAdapter) topic(suffix string) string {
	prefix := b.config.Broker.TopicPrefix
	if prefix == "" {
		return suffix
	}
	return prefix + "/" + suffix
}

func (b *BrokerAdapter) connect() error {
	token := b.client.Connect()
	if !token.WaitTimeout(brokerOpTimeout) {
		return fmt.Errorf("connect to %s:%d timed out", b.config.Broker.Host, b.config.Broker.Port)
	}
	if err := token.Error(); err != nil {
		return err
	}
	for topic, handler := range map[string]mqtt.MessageHandler{
		b.topic(sessionTopicSuffix): b.onSessionMessage,
		b.topic(countTopicSuffix):   b.onCountMessage,
	} {
		sub := b.client.Subscribe(topic, 1, handler)
		if !sub.WaitTimeout(brokerOpTimeout) || sub.Error() != nil {
			b.client.Disconnect(250)
			return fmt.Errorf("subscribe %s: %v", topic, sub.Error())
		}
	}
	b.status.Set(models.SourceBroker, models.StateLive)
	b.metrics.SetConnectionUp(models.SourceBroker, true)
	b.logger.Infof(providers.TypeBroker, "connected to %s:%d", b.config.Broker.Host, b.config.Broker.Port)
	return nil
}

func (b *BrokerAdapter) reconnectLoop() {
	defer b.wg.Done()
	backoff := b.config.Broker.ReconnectBackoff
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	for attempt := 1; attempt <= b.config.Broker.MaxReconnectAttempts; attempt++ {
		select {
		case <-b.stop:
			return
		case <-time.After(backoff):
		}
		b.status.Set(models.SourceBroker, models.StateConnecting)
		b.logger.Infof(providers.TypeBroker, "reconnect attempt %d/%d", attempt, b.config.Broker.MaxReconnectAttempts)
		if err := b.connect(); err == nil {
			return
		} else {
			b.logger.Warnf(providers.TypeBroker, "reconnect attempt %d failed: %s", attempt, err)
		}
		backoff *= 2
	}
	b.status.Set(models.SourceBroker, models.StateFailed)
	b.metrics.SetConnectionUp(models.SourceBroker, false)
	b.logger.Errorf(providers.TypeBroker, "giving up: %s", ErrReconnectExhausted)
}

func (b *BrokerAdapter) onSessionMessage(_ mqtt.Client, msg mqtt.Message) {
	var payload models.SessionPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		b.drop(msg.Topic(), fmt.Errorf("%w: %v", ErrMalformedEvent, err))
		return
	}
	if err := b.validSeatID(payload.SeatID); err != nil {
		b.drop(msg.Topic(), err)
		return
	}
	if payload.Count < 0 || payload.DurationMs < 0 {
		b.drop(msg.Topic(), fmt.Errorf("%w: negative count or duration for seat %d", ErrMalformedEvent, payload.SeatID))
		return
	}

	now := b.now()
	session := payload.Record()
	session.EventTimestamp = now

	ctx, cancel := context.WithTimeout(context.Background(), brokerOpTimeout)
	defer cancel()
	if err := b.seats.ApplySessionEvent(ctx, payload.SeatID, session, now); err != nil {
		b.metrics.IncStoreFailures("session_merge")
	}

	b.metrics.IncEventsIngested(models.SourceBroker)
	b.emit(models.SeatEvent{
		SeatID:  payload.SeatID,
		Kind:    models.KindSession,
		Origin:  models.OriginBroker,
		At:      now,
		Session: session,
	})
}

func (b *BrokerAdapter) onCountMessage(_ mqtt.Client, msg mqtt.Message) {
	var payload models.CountPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		b.drop(msg.Topic(), fmt.Errorf("%w: %v", ErrMalformedEvent, err))
		return
	}
	if err := b.validSeatID(payload.SeatID); err != nil {
		b.drop(msg.Topic(), err)
		return
	}
	if payload.Count < 0 {
		b.drop(msg.Topic(), fmt.Errorf("%w: negative count for seat %d", ErrMalformedEvent, payload.SeatID))
		return
	}

	now := b.now()
	ctx, cancel := context.WithTimeout(context.Background(), brokerOpTimeout)
	defer cancel()
	if err := b.seats.ApplyCountEvent(ctx, payload.SeatID, payload.Count, now); err != nil {
		b.metrics.IncStoreFailures("count_merge")
	}

	b.metrics.IncEventsIngested(models.SourceBroker)
	b.emit(models.SeatEvent{
		SeatID: payload.SeatID,
		Kind:   models.KindCount,
		Origin: models.OriginBroker,
		At:     now,
		Count:  payload.Count,
	})
}

func (b *BrokerAdapter) validSeatID(seatID int) error {
	for _, id := range b.config.SeatIDs() {
		if id == seatID {
			return nil
		}
	}
	return fmt.Errorf("%w: seat id %d outside configured domain", ErrMalformedEvent, seatID)
}

func (b *BrokerAdapter) drop(topic string, err error) {
	b.logger.Warnf(providers.TypeBroker, "dropping message on %s: %s", topic, err)
	b.metrics.IncEventsDropped(models.SourceBroker)
}

func (b *BrokerAdapter) emit(ev models.SeatEvent) {
	if b.handler != nil {
		b.handler(ev)
	}
}
