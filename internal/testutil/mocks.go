package testutil

import (
	"context"
	"sync"
	"time"

	"hotseatd/internal/models"
	"hotseatd/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Entries returns a copy of the recorded log entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), m.Logs...)
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts
// calls per label.
type MockMetrics struct {
	mu          sync.Mutex
	Requests    map[string]int
	CacheHits   int
	CacheMisses int
	Ingested    map[string]int
	Dropped     map[string]int
	Failures    map[string]int
	Connections map[string]bool
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests:    make(map[string]int),
		Ingested:    make(map[string]int),
		Dropped:     make(map[string]int),
		Failures:    make(map[string]int),
		Connections: make(map[string]bool),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncEventsIngested(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ingested[source]++
}

func (m *MockMetrics) IncEventsDropped(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dropped[source]++
}

func (m *MockMetrics) IncStoreFailures(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures[op]++
}

func (m *MockMetrics) SetConnectionUp(source string, up bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connections[source] = up
}

func (m *MockMetrics) DroppedCount(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Dropped[source]
}

func (m *MockMetrics) IngestedCount(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Ingested[source]
}

// MockSeatStore implements storage.SeatStoreInterface with recorded
// calls and injectable state.
type MockSeatStore struct {
	mu           sync.Mutex
	CountCalls   []CountCall
	SessionCalls []SessionCall
	ReplaceCalls []ReplaceCall
	Seats        map[int]*models.SeatAggregate
	TodayCounts  map[int]int
	Heatmaps     map[string]map[int]map[int]int
	Err          error

	subscriber func(*models.SeatAggregate)
}

type CountCall struct {
	SeatID int
	Count  int
	At     time.Time
}

type SessionCall struct {
	SeatID  int
	Session *models.SessionRecord
	At      time.Time
}

type ReplaceCall struct {
	SeatID  int
	History []models.SessionRecord
}

func NewMockSeatStore() *MockSeatStore {
	return &MockSeatStore{
		Seats:       make(map[int]*models.SeatAggregate),
		TodayCounts: make(map[int]int),
		Heatmaps:    make(map[string]map[int]map[int]int),
	}
}

func (m *MockSeatStore) ApplyCountEvent(_ context.Context, seatID, count int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CountCalls = append(m.CountCalls, CountCall{SeatID: seatID, Count: count, At: now})
	return m.Err
}

func (m *MockSeatStore) ApplySessionEvent(_ context.Context, seatID int, session *models.SessionRecord, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionCalls = append(m.SessionCalls, SessionCall{SeatID: seatID, Session: session, At: now})
	return m.Err
}

func (m *MockSeatStore) Get(_ context.Context, seatID int) (*models.SeatAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Seats[seatID], nil
}

func (m *MockSeatStore) GetAll(_ context.Context) (map[int]*models.SeatAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Seats, nil
}

func (m *MockSeatStore) GetTodayCounts(_ context.Context, _ time.Time) map[int]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TodayCounts
}

func (m *MockSeatStore) GetHeatmap(_ context.Context, date string) map[int]map[int]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Heatmaps[date]
}

func (m *MockSeatStore) ReplaceSessionHistory(_ context.Context, seatID int, history []models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCalls = append(m.ReplaceCalls, ReplaceCall{SeatID: seatID, History: history})
	return m.Err
}

func (m *MockSeatStore) SubscribeChanges(fn func(*models.SeatAggregate)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.subscriber = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.subscriber = nil
	}, nil
}

// EmitChange delivers an aggregate to the registered subscriber, as
// the change feed would.
func (m *MockSeatStore) EmitChange(agg *models.SeatAggregate) {
	m.mu.Lock()
	fn := m.subscriber
	m.mu.Unlock()
	if fn != nil {
		fn(agg)
	}
}

// Subscribed reports whether a change subscriber is registered.
func (m *MockSeatStore) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscriber != nil
}
