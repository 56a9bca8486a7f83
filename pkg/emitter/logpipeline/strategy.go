package logpipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	apperrors "github.com/chris-alexander-pop/notifyfabric/pkg/errors"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logstore"
	"github.com/chris-alexander-pop/notifyfabric/pkg/resilience"
)

const (
	storageStreamOnly = "stream-only"
	storageUpdateable = "updateable"
)

func updateableKey(updateKey string) string {
	return fmt.Sprintf("updateable:%s", updateKey)
}

// writeEntry appends one stream entry carrying fields, then extends the
// stream's TTL. Trimming is applied per Config on every append (spec §4.5).
func writeEntry(ctx context.Context, client logstore.Client, cfg Config, stream string, fields map[string]string) error {
	if _, err := client.AppendStream(ctx, stream, fields, cfg.MaxStreamLength, cfg.ApproximateTrim); err != nil {
		return apperrors.Wrap(err, "logpipeline: stream append failed")
	}
	if err := client.SetKeyTTL(ctx, stream, cfg.StreamTTL); err != nil {
		return apperrors.Wrap(err, "logpipeline: stream TTL refresh failed")
	}
	return nil
}

// writeStreamOnly inlines body into the stream entry; no key-store write.
func writeStreamOnly(ctx context.Context, client logstore.Client, cfg Config, stream, typeName, id, timestamp string, body []byte) error {
	fields := map[string]string{
		"type":      typeName,
		"id":        id,
		"timestamp": timestamp,
		"storage":   storageStreamOnly,
		"payload":   string(body),
	}
	return writeEntry(ctx, client, cfg, stream, fields)
}

// writeStandard writes body to a key derived from id, under retry, then
// points the stream entry at that key.
func writeStandard(ctx context.Context, client logstore.Client, cfg Config, stream, typeName, id, timestamp string, body []byte) error {
	err := resilience.Run(ctx, cfg.Retry, func(ctx context.Context) error {
		return client.SetKey(ctx, id, body, cfg.MessageTTL)
	})
	if err != nil {
		return apperrors.Wrap(err, "logpipeline: standard key write failed")
	}

	fields := map[string]string{
		"type":      typeName,
		"id":        id,
		"timestamp": timestamp,
		"key":       id,
	}
	return writeEntry(ctx, client, cfg, stream, fields)
}

// writeUpdateable writes body to a key derived from spec's extractor, under
// retry, then points the stream entry at that key plus an optional
// sequence. Falls back to writeStandard when the extracted key is empty
// (spec §4.5).
func writeUpdateable(ctx context.Context, client logstore.Client, cfg Config, stream, typeName, id, timestamp string, body []byte, payload envelope.Envelope, spec UpdateableSpec) error {
	updateKey := ""
	if spec.KeyFunc != nil {
		updateKey = spec.KeyFunc(payload)
	}
	if updateKey == "" {
		return writeStandard(ctx, client, cfg, stream, typeName, id, timestamp, body)
	}

	key := updateableKey(updateKey)
	err := resilience.Run(ctx, cfg.Retry, func(ctx context.Context) error {
		return client.SetKey(ctx, key, body, cfg.MessageTTL)
	})
	if err != nil {
		return apperrors.Wrap(err, "logpipeline: updateable key write failed")
	}

	fields := map[string]string{
		"type":      typeName,
		"id":        id,
		"timestamp": timestamp,
		"storage":   storageUpdateable,
		"key":       key,
		"updateKey": updateKey,
	}
	if spec.SeqFunc != nil {
		if seq, ok := spec.SeqFunc(payload); ok {
			fields["sequence"] = strconv.FormatInt(seq, 10)
		}
	}
	return writeEntry(ctx, client, cfg, stream, fields)
}

// selectAndWrite chooses the write strategy per cfg's type classification
// (stream-only set, then updateable set, then standard) and executes it
// (spec §4.4 step 5, §4.5).
func selectAndWrite(ctx context.Context, client logstore.Client, cfg Config, typeName, id, timestamp string, body []byte, payload envelope.Envelope) error {
	stream := cfg.streamFor(typeName)

	if _, ok := cfg.StreamOnlyTypes[typeName]; ok {
		return writeStreamOnly(ctx, client, cfg, stream, typeName, id, timestamp, body)
	}
	if spec, ok := cfg.UpdateableTypes[typeName]; ok {
		return writeUpdateable(ctx, client, cfg, stream, typeName, id, timestamp, body, payload, spec)
	}
	return writeStandard(ctx, client, cfg, stream, typeName, id, timestamp, body)
}
