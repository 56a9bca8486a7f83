package envelope

import "encoding/json"

// Generic is the fallback envelope constructed when a received entry's type
// identifier cannot be resolved to a concrete Go type (spec §3 "Generic
// fallback envelope", §4.7). It preserves the raw encoded body so callers
// can still inspect it, and is tagged so receivers can tell it apart from a
// concrete payload.
type Generic struct {
	Base
	Body json.RawMessage `json:"body"`
}

// RawBody returns the undecoded body exactly as received.
func (g *Generic) RawBody() json.RawMessage { return g.Body }

// IsGeneric always reports true; it exists so callers can type-assert an
// interface such as `interface{ IsGeneric() bool }` without importing this
// package, matching the "tagging the envelope as generic" language in the
// spec.
func (g *Generic) IsGeneric() bool { return true }

var _ Envelope = (*Generic)(nil)
