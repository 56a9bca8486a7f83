// Package config is the example wiring's typed configuration surface — the
// CLI/env loading collaborator the core spec treats as out of scope
// (spec §1), built on the same pkg/config.Load[T] + validator pattern the
// rest of the original library uses for its services.
package config

import (
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/config"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
)

// AppConfig is notifyd's full configuration surface.
type AppConfig struct {
	Logger logger.Config

	LogStoreAddr     string `env:"LOGSTORE_ADDR" env-default:"localhost:6379"`
	LogStorePassword string `env:"LOGSTORE_PASSWORD"`
	LogStoreDB       int    `env:"LOGSTORE_DB" env-default:"0"`

	Stream       string `env:"NOTIFY_STREAM" env-default:"notifications:stream:default" validate:"required"`
	ConsumerGroup string `env:"NOTIFY_CONSUMER_GROUP" env-default:"G_api_worker" validate:"required"`

	QueueCapacity  int           `env:"NOTIFY_QUEUE_CAPACITY" env-default:"10000"`
	MessageTTL     time.Duration `env:"NOTIFY_MESSAGE_TTL" env-default:"1h"`
	StreamTTL      time.Duration `env:"NOTIFY_STREAM_TTL" env-default:"24h"`
	MaxStreamLen   int64         `env:"NOTIFY_MAX_STREAM_LEN" env-default:"10000"`
	GroupReadBlock time.Duration `env:"NOTIFY_GROUP_READ_BLOCK" env-default:"5s"`

	DedupTTL        time.Duration `env:"NOTIFY_DEDUP_TTL" env-default:"10m"`
	DedupMaxEntries int           `env:"NOTIFY_DEDUP_MAX_ENTRIES" env-default:"10000"`
}

// Load reads AppConfig from .env/environment and validates it.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
