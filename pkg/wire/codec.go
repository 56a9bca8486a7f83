// Package wire implements the stream wire codec (spec §4.8): parsing the
// log store's nested-array group-read reply into (entry-id, field/value)
// pairs, and serializing payloads to canonical JSON for the stream entry
// body.
//
// The nested-array shape matches Redis's raw XREADGROUP reply before any
// client-side typed parsing:
//
//	[ [ stream-name, [ [entry-id, [f1,v1,f2,v2,...]], ... ] ], ... ]
//
// Adapters issue the read with the driver's generic command execution
// (go-redis's Client.Do) so this package can parse exactly what the wire
// protocol returned, rather than a client-specific typed struct.
package wire

import (
	"encoding/json"
	"fmt"
)

// FieldValue is one field/value pair from a stream entry.
type FieldValue struct {
	Name  string
	Value string
}

// Entry is one parsed stream entry: its ID plus its field/value pairs.
type Entry struct {
	ID     string
	Fields []FieldValue
}

// Lookup returns the value of the named field, if present.
func (e Entry) Lookup(name string) (string, bool) {
	for _, fv := range e.Fields {
		if fv.Name == name {
			return fv.Value, true
		}
	}
	return "", false
}

// StreamBatch is the set of entries returned for one stream in a group-read
// reply.
type StreamBatch struct {
	Stream  string
	Entries []Entry
}

// Parse decodes a group-read reply into stream batches. Any stream or entry
// node whose shape doesn't match the expected nested-array depth, or whose
// field list has an odd length, is skipped rather than treated as fatal — a
// single malformed stream or entry must not take down the whole read. A nil
// or empty top-level reply yields an empty, non-nil result; a top-level
// reply that is not an array is returned as an error.
func Parse(raw interface{}) ([]StreamBatch, error) {
	if raw == nil {
		return []StreamBatch{}, nil
	}

	top, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("wire: top-level reply is not an array (got %T)", raw)
	}

	batches := make([]StreamBatch, 0, len(top))
	for _, rawStream := range top {
		streamPair, ok := rawStream.([]interface{})
		if !ok || len(streamPair) != 2 {
			continue
		}

		streamName, ok := asString(streamPair[0])
		if !ok {
			continue
		}

		rawEntries, ok := streamPair[1].([]interface{})
		if !ok {
			batches = append(batches, StreamBatch{Stream: streamName, Entries: []Entry{}})
			continue
		}

		entries := make([]Entry, 0, len(rawEntries))
		for _, rawEntry := range rawEntries {
			entry, ok := parseEntry(rawEntry)
			if !ok {
				continue
			}
			entries = append(entries, entry)
		}

		batches = append(batches, StreamBatch{Stream: streamName, Entries: entries})
	}

	return batches, nil
}

func parseEntry(raw interface{}) (Entry, bool) {
	pair, ok := raw.([]interface{})
	if !ok || len(pair) != 2 {
		return Entry{}, false
	}

	id, ok := asString(pair[0])
	if !ok {
		return Entry{}, false
	}

	rawFields, ok := pair[1].([]interface{})
	if !ok || len(rawFields)%2 != 0 {
		return Entry{}, false
	}

	fields := make([]FieldValue, 0, len(rawFields)/2)
	for i := 0; i < len(rawFields); i += 2 {
		name, ok := asString(rawFields[i])
		if !ok || name == "" {
			continue
		}
		value, _ := asString(rawFields[i+1])
		fields = append(fields, FieldValue{Name: name, Value: value})
	}

	return Entry{ID: id, Fields: fields}, true
}

func asString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return "", false
	}
}

// Encode serializes payload into canonical JSON — standard library
// encoding/json, which sorts map keys, for a stable wire form that round-trips
// equal across encode/decode.
func Encode(payload interface{}) ([]byte, error) {
	return json.Marshal(payload)
}
