// Package notify implements the builder/registry (spec §4.11): collects
// emitter and receiver registrations plus configuration, validates them,
// and wires the composite emitter and composite receiver.
package notify

import (
	"context"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/emitter"
	apperrors "github.com/chris-alexander-pop/notifyfabric/pkg/errors"
	"github.com/chris-alexander-pop/notifyfabric/pkg/receiver"
)

// Pinger is the health-probe capability a log-store transport can offer
// (spec's probe surface is scoped out of the core; this is the minimal hook
// `cmd/notifyd`-style callers need to expose one, matching
// `pkg/messaging.Broker.Healthy`'s role in the teacher).
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Options carries the global notification options (spec §4.11, §6).
type Options struct {
	Dedup receiver.DedupConfig
	// LogStoreConnString is validated non-empty when a log-store transport
	// is registered; the concrete connection is a collaborator concern.
	LogStoreConnString string
	logStoreRegistered bool
}

// DefaultOptions returns spec-documented defaults.
func DefaultOptions() Options {
	return Options{Dedup: receiver.DefaultDedupConfig()}
}

// Registry collects registrations in a single builder scope. It is not
// safe for concurrent registration; build it up from one goroutine, then
// call Build.
type Registry struct {
	opts      Options
	emitters  []emitter.Emitter
	receivers []receiver.Receiver
	pinger    Pinger
}

// NewRegistry creates an empty registry with opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts}
}

// RegisterEmitter adds an emitter to the fan-out set.
func (r *Registry) RegisterEmitter(e emitter.Emitter) *Registry {
	r.emitters = append(r.emitters, e)
	return r
}

// RegisterReceiver adds a receiver to the merge set.
func (r *Registry) RegisterReceiver(rc receiver.Receiver) *Registry {
	r.receivers = append(r.receivers, rc)
	return r
}

// RegisterLogStoreTransport registers both halves of the log-store
// transport and records that a non-empty connection string is required at
// Build time. pinger, if non-nil, backs Fabric.Healthy.
func (r *Registry) RegisterLogStoreTransport(e emitter.Emitter, pinger Pinger, receivers ...receiver.Receiver) *Registry {
	r.opts.logStoreRegistered = true
	r.pinger = pinger
	r.RegisterEmitter(e)
	for _, rc := range receivers {
		r.RegisterReceiver(rc)
	}
	return r
}

// Fabric is the built, ready-to-use notification fabric.
type Fabric struct {
	Emitter  *emitter.Composite
	Receiver *receiver.Composite

	pinger Pinger
}

// Healthy reports whether the registered log-store transport, if any, is
// reachable. With no log-store transport registered it always reports
// healthy, since the in-process transport has nothing to probe.
func (f *Fabric) Healthy(ctx context.Context) bool {
	if f.pinger == nil {
		return true
	}
	_, err := f.pinger.Ping(ctx)
	return err == nil
}

// Build validates the registry and constructs the composite emitter and
// composite receiver (spec §4.11). Validation failures are fatal to
// startup: at least one emitter, at least one receiver, and a non-empty
// log-store connection string if the log-store transport was registered.
func (r *Registry) Build() (*Fabric, error) {
	if len(r.emitters) == 0 {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "notify: at least one emitter must be registered", nil)
	}
	if len(r.receivers) == 0 {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "notify: at least one receiver must be registered", nil)
	}
	if r.opts.logStoreRegistered && r.opts.LogStoreConnString == "" {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "notify: log-store transport registered without a connection string", nil)
	}

	return &Fabric{
		Emitter:  emitter.NewComposite(r.emitters...),
		Receiver: receiver.NewComposite(r.opts.Dedup, r.receivers...),
		pinger:   r.pinger,
	}, nil
}
