// Package logconsumer implements the log consumer (spec §4.6): a reliable,
// at-least-once receiver over one log-store stream via a consumer group.
package logconsumer

import (
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/logstore"
)

// Config configures one stream's consumer.
type Config struct {
	Stream string
	Group  string

	BlockDuration      time.Duration
	BatchSize          int64
	ErrorRecoveryDelay time.Duration

	Initializer logstore.InitializerConfig
}

// DefaultConfig returns the spec-documented defaults (spec §6) for stream.
func DefaultConfig(stream string) Config {
	return Config{
		Stream:             stream,
		Group:              "G_api_worker",
		BlockDuration:      5 * time.Second,
		BatchSize:          100,
		ErrorRecoveryDelay: time.Second,
		Initializer:        logstore.DefaultInitializerConfig(),
	}
}
