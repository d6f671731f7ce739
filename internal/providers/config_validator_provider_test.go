package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hotseatd/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Store: structures.StoreConfig{
			Backend:           "memory",
			Collection:        "seats",
			ArchiveCollection: "seats_archive",
		},
		Seats: structures.SeatsConfig{Count: 5, FirstID: 1},
		Retention: structures.RetentionConfig{
			DailyCountWindowDays: 30,
			SessionHistoryLimit:  20,
			ArchiveAfterDays:     90,
		},
		Reconciler: structures.ReconcilerConfig{
			StalenessWindow:   30 * time.Second,
			SyntheticInterval: 5 * time.Second,
		},
		Maintenance: structures.MaintenanceConfig{
			ArchiveInterval:  time.Hour,
			SnapshotInterval: 5 * time.Minute,
			SnapshotPath:     "/tmp/hotseatd.snapshot",
		},
		Heatmap: structures.HeatmapConfig{FromHour: 0, ToHour: 23},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_UnknownBackend(t *testing.T) {
	c := validConfig()
	c.Store.Backend = "mongodb"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_RedisBackendNeedsAddr(t *testing.T) {
	c := validConfig()
	c.Store.Backend = "redis"
	assert.Error(t, NewCnfValidator(c).Validate())

	c.Store.Redis.Addr = "localhost:6379"
	assert.NoError(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_EnabledBrokerNeedsHost(t *testing.T) {
	c := validConfig()
	c.Broker.Enabled = true
	assert.Error(t, NewCnfValidator(c).Validate())

	c.Broker.Host = "localhost"
	assert.NoError(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_HeatmapHourOrder(t *testing.T) {
	c := validConfig()
	c.Heatmap.FromHour = 12
	c.Heatmap.ToHour = 8
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroSeats(t *testing.T) {
	c := validConfig()
	c.Seats.Count = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroRetentionWindow(t *testing.T) {
	c := validConfig()
	c.Retention.DailyCountWindowDays = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}
