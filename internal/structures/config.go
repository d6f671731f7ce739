package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type BrokerConfig struct {
	Enabled              bool          `yaml:"enabled"`
	Host                 string        `yaml:"host"`
	Port                 int           `yaml:"port"`
	Username             string        `yaml:"username"`
	Password             string        `yaml:"password"`
	ClientID             string        `yaml:"clientId"`
	TopicPrefix          string        `yaml:"topicPrefix"`
	MaxReconnectAttempts int           `yaml:"maxReconnectAttempts"`
	ReconnectBackoff     time.Duration `yaml:"reconnectBackoff"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StoreConfig struct {
	Backend           string      `yaml:"backend" validate:"required|in:memory,redis"`
	Collection        string      `yaml:"collection" validate:"required"`
	ArchiveCollection string      `yaml:"archiveCollection" validate:"required"`
	Redis             RedisConfig `yaml:"redis"`
}

type SeatsConfig struct {
	Count   int `yaml:"count" validate:"required|uint|min:1"`
	FirstID int `yaml:"firstId"`
}

type RetentionConfig struct {
	DailyCountWindowDays int  `yaml:"dailyCountWindowDays" validate:"required|uint|min:1"`
	SessionHistoryLimit  int  `yaml:"sessionHistoryLimit" validate:"required|uint|min:1"`
	ArchiveAfterDays     int  `yaml:"archiveAfterDays" validate:"required|uint|min:1"`
	TrimAfterArchive     bool `yaml:"trimAfterArchive"`
}

type ReconcilerConfig struct {
	StalenessWindow   time.Duration `yaml:"stalenessWindow" validate:"required|min:1"`
	SyntheticInterval time.Duration `yaml:"syntheticInterval" validate:"required|min:1"`
}

type MaintenanceConfig struct {
	ArchiveInterval  time.Duration `yaml:"archiveInterval" validate:"required|min:1"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval" validate:"required|min:1"`
	SnapshotPath     string        `yaml:"snapshotPath" validate:"required|unixPath"`
}

type HeatmapConfig struct {
	FromHour int `yaml:"fromHour" validate:"min:0|max:23"`
	ToHour   int `yaml:"toHour" validate:"min:0|max:23"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server            `yaml:"webServer"`
	Broker      BrokerConfig      `yaml:"broker"`
	Store       StoreConfig       `yaml:"store"`
	Seats       SeatsConfig       `yaml:"seats"`
	Retention   RetentionConfig   `yaml:"retention"`
	Reconciler  ReconcilerConfig  `yaml:"reconciler"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Heatmap     HeatmapConfig     `yaml:"heatmap"`
	Logger      LoggerConfig      `yaml:"logger"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// SeatIDs returns the configured seat-id domain in ascending order.
// The domain is contiguous starting at FirstID (1 when unset).
func (c *Config) SeatIDs() []int {
	first := c.Seats.FirstID
	if first == 0 {
		first = 1
	}
	ids := make([]int, c.Seats.Count)
	for i := range ids {
		ids[i] = first + i
	}
	return ids
}
