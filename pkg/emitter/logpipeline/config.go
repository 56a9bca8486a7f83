// Package logpipeline implements the log emission pipeline (spec §4.4): a
// bounded-queue emitter backed by the log store, decoupling callers from
// network latency via a long-lived worker.
package logpipeline

import (
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	"github.com/chris-alexander-pop/notifyfabric/pkg/resilience"
)

// OverflowPolicy selects what happens when the emission queue is full.
type OverflowPolicy int

const (
	// OverflowWait blocks the caller until space is available. Default.
	OverflowWait OverflowPolicy = iota
	// OverflowDropNewest discards the item being enqueued.
	OverflowDropNewest
	// OverflowDropOldest discards the oldest queued item to make room.
	OverflowDropOldest
)

// UpdateableSpec describes how to derive the update key (and optional
// sequence number) for one updateable payload type (spec §3, §4.5).
type UpdateableSpec struct {
	KeyFunc func(envelope.Envelope) string
	SeqFunc func(envelope.Envelope) (int64, bool)
}

// Config configures the log emission pipeline and its write strategies.
type Config struct {
	QueueCapacity  int
	OverflowPolicy OverflowPolicy

	DefaultStream   string
	TypeStreamMap   map[string]string
	StreamOnlyTypes map[string]struct{}
	UpdateableTypes map[string]UpdateableSpec

	MessageTTL      time.Duration
	StreamTTL       time.Duration
	MaxStreamLength int64
	ApproximateTrim bool

	Retry resilience.Config
}

// DefaultConfig returns the spec-documented defaults (spec §6).
func DefaultConfig() Config {
	return Config{
		QueueCapacity:   10_000,
		OverflowPolicy:  OverflowWait,
		DefaultStream:   "notifications:stream:default",
		TypeStreamMap:   map[string]string{},
		StreamOnlyTypes: map[string]struct{}{},
		UpdateableTypes: map[string]UpdateableSpec{},
		MessageTTL:      time.Hour,
		StreamTTL:       24 * time.Hour,
		MaxStreamLength: 10_000,
		ApproximateTrim: false,
		Retry:           resilience.DefaultConfig(),
	}
}

func (c Config) streamFor(typeName string) string {
	if s, ok := c.TypeStreamMap[typeName]; ok && s != "" {
		return s
	}
	return c.DefaultStream
}
