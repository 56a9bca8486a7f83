package envelope

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
	"github.com/google/uuid"
)

// Factory produces a fresh, zero-valued instance of a concrete envelope
// type, ready to be unmarshaled into.
type Factory func() Envelope

// Resolver maps a string notification-type to a concrete payload Factory,
// tolerating versioned/qualified type names (spec §4.7). It is safe for
// concurrent use; registration normally happens once at startup but nothing
// here assumes that.
type Resolver struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{factories: make(map[string]Factory)}
}

// Register associates typeName with factory. A later call with the same
// typeName replaces the earlier registration.
func (r *Resolver) Register(typeName string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeName] = factory
}

// Resolve maps typeName to a Factory. If the exact name is not registered,
// it strips everything from the first comma onward (tolerating qualifiers
// such as "Ns.Type, Asm, Version=999.0.0.0, Culture=neutral,
// PublicKeyToken=null") and tries again. Returns false if nothing matches.
func (r *Resolver) Resolve(ctx context.Context, typeName string) (Factory, bool) {
	trimmed := strings.TrimSpace(typeName)
	if trimmed == "" {
		logger.L().WarnContext(ctx, "envelope: empty type name cannot be resolved")
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.factories[trimmed]; ok {
		return f, true
	}

	if idx := strings.IndexByte(trimmed, ','); idx >= 0 {
		bare := strings.TrimSpace(trimmed[:idx])
		if f, ok := r.factories[bare]; ok {
			return f, true
		}
	}

	logger.L().WarnContext(ctx, "envelope: type could not be resolved", "type", typeName)
	return nil, false
}

// DeserializeOrFallback decodes body as typeName's registered concrete
// envelope; if the type cannot be resolved or decoding fails, it returns a
// Generic envelope preserving the raw body instead. It never returns nil and
// never panics — all failures are logged and degrade to the fallback (spec
// §4.7 "Fallback never-fails").
func (r *Resolver) DeserializeOrFallback(ctx context.Context, body []byte, typeName, id string, timestamp time.Time) Envelope {
	if factory, ok := r.Resolve(ctx, typeName); ok {
		env := factory()
		if err := json.Unmarshal(body, env); err == nil {
			if env.ID() == "" {
				env.SetID(normalizeID(id))
			}
			if env.Timestamp().IsZero() {
				env.SetTimestamp(normalizeTimestamp(timestamp))
			}
			return env
		} else {
			logger.L().WarnContext(ctx, "envelope: decode failed, falling back to generic", "type", typeName, "error", err)
		}
	}

	return &Generic{
		Base: Base{
			NotificationID:       normalizeID(id),
			CreatedAt:            normalizeTimestamp(timestamp),
			NotificationType:     typeName,
			NotificationSeverity: SeverityInfo,
			NotificationTags:     []string{"generic"},
		},
		Body: append(json.RawMessage(nil), body...),
	}
}

func normalizeID(id string) string {
	if strings.TrimSpace(id) == "" {
		return uuid.NewString()
	}
	return id
}

func normalizeTimestamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
