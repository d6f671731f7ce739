package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"hotseatd/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.SetDefault("store.backend", "memory")
	viper.SetDefault("store.collection", "seats")
	viper.SetDefault("store.archiveCollection", "seats_archive")
	viper.SetDefault("seats.count", 5)
	viper.SetDefault("seats.firstId", 1)
	viper.SetDefault("heatmap.fromHour", 0)
	viper.SetDefault("heatmap.toHour", 23)
	viper.SetDefault("broker.maxReconnectAttempts", 5)
	viper.SetDefault("broker.reconnectBackoff", "5s")

	viper.BindEnv("logger.level", "HOTSEAT_LOG_LEVEL")
	viper.BindEnv("broker.host", "HOTSEAT_BROKER_HOST")
	viper.BindEnv("broker.port", "HOTSEAT_BROKER_PORT")
	viper.BindEnv("broker.username", "HOTSEAT_BROKER_USERNAME")
	viper.BindEnv("broker.password", "HOTSEAT_BROKER_PASSWORD")
	viper.BindEnv("store.backend", "HOTSEAT_STORE_BACKEND")
	viper.BindEnv("store.redis.addr", "HOTSEAT_REDIS_ADDR")
	viper.BindEnv("store.redis.password", "HOTSEAT_REDIS_PASSWORD")
	viper.BindEnv("seats.count", "HOTSEAT_SEAT_COUNT")
	viper.BindEnv("cache.enabled", "HOTSEAT_CACHE_ENABLED")
	viper.BindEnv("cache.size", "HOTSEAT_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "hotseatd"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
