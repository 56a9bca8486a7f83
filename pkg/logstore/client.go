// Package logstore defines the minimal capability the notification fabric's
// log transport needs from the log store (spec §6): a connection pool, a
// key/value store with TTL, and an append-only partitioned stream with
// consumer groups. Adapters (e.g. pkg/logstore/adapters/redis) implement
// Client against a concrete backend; the rest of the fabric never imports a
// concrete driver directly.
package logstore

import (
	"context"
	"time"
)

// Client is the capability surface the log emission pipeline and log
// consumer consume. Every operation takes a context so callers can bound or
// cancel it.
type Client interface {
	// SetKey sets key to value with the given TTL, atomically. A ttl of 0
	// means no expiration.
	SetKey(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetKey fetches key's value. found is false if the key is missing or
	// expired.
	GetKey(ctx context.Context, key string) (value []byte, found bool, err error)

	// AppendStream appends one entry with the given field/value pairs.
	// maxLen <= 0 disables trimming; approximate requests Redis's faster,
	// inexact trim (`~`) instead of an exact one. Returns the assigned
	// entry ID.
	AppendStream(ctx context.Context, stream string, fields map[string]string, maxLen int64, approximate bool) (entryID string, err error)

	// SetKeyTTL refreshes/extends key's TTL without altering its value.
	SetKeyTTL(ctx context.Context, key string, ttl time.Duration) error

	// EnsureGroup idempotently creates group on stream at the stream's
	// current tail. A pre-existing group is not an error.
	EnsureGroup(ctx context.Context, stream, group string) error

	// ReadGroupBlock issues a blocking read of stream's new (">") entries
	// for consumer within group, blocking up to block and returning at
	// most count entries. The reply is the raw nested-array wire shape
	// (pkg/wire.Parse); a nil reply means the block duration elapsed with
	// nothing delivered.
	ReadGroupBlock(ctx context.Context, group, consumer, stream string, block time.Duration, count int64) (reply interface{}, err error)

	// Ack removes entryID from group's pending entries list for stream.
	Ack(ctx context.Context, stream, group, entryID string) error

	// Ping measures round-trip latency to the log store as a health probe.
	Ping(ctx context.Context) (time.Duration, error)
}
