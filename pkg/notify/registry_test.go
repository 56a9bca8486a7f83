package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	"github.com/chris-alexander-pop/notifyfabric/pkg/notify"
	"github.com/stretchr/testify/require"
)

type nopEmitter struct{}

func (nopEmitter) Start(context.Context) error                  { return nil }
func (nopEmitter) Emit(context.Context, envelope.Envelope) error { return nil }
func (nopEmitter) Dispose(context.Context) error                { return nil }

type nopReceiver struct{}

func (nopReceiver) Receive(ctx context.Context, tags ...string) (<-chan envelope.Envelope, error) {
	ch := make(chan envelope.Envelope)
	close(ch)
	return ch, nil
}

func TestBuildRequiresAtLeastOneEmitter(t *testing.T) {
	r := notify.NewRegistry(notify.DefaultOptions())
	r.RegisterReceiver(nopReceiver{})
	_, err := r.Build()
	require.Error(t, err)
}

func TestBuildRequiresAtLeastOneReceiver(t *testing.T) {
	r := notify.NewRegistry(notify.DefaultOptions())
	r.RegisterEmitter(nopEmitter{})
	_, err := r.Build()
	require.Error(t, err)
}

func TestBuildRequiresConnStringForLogStoreTransport(t *testing.T) {
	r := notify.NewRegistry(notify.DefaultOptions())
	r.RegisterLogStoreTransport(nopEmitter{}, nil, nopReceiver{})
	_, err := r.Build()
	require.Error(t, err)
}

func TestBuildSucceeds(t *testing.T) {
	opts := notify.DefaultOptions()
	opts.LogStoreConnString = "localhost:6379"
	r := notify.NewRegistry(opts)
	r.RegisterLogStoreTransport(nopEmitter{}, nil, nopReceiver{})
	r.RegisterEmitter(nopEmitter{})
	r.RegisterReceiver(nopReceiver{})

	fabric, err := r.Build()
	require.NoError(t, err)
	require.NotNil(t, fabric.Emitter)
	require.NotNil(t, fabric.Receiver)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) (time.Duration, error) { return 0, f.err }

func TestFabricHealthyWithNoLogStoreTransport(t *testing.T) {
	r := notify.NewRegistry(notify.DefaultOptions())
	r.RegisterEmitter(nopEmitter{})
	r.RegisterReceiver(nopReceiver{})

	fabric, err := r.Build()
	require.NoError(t, err)
	require.True(t, fabric.Healthy(context.Background()))
}

func TestFabricHealthyReflectsPingerError(t *testing.T) {
	opts := notify.DefaultOptions()
	opts.LogStoreConnString = "localhost:6379"
	r := notify.NewRegistry(opts)
	r.RegisterLogStoreTransport(nopEmitter{}, fakePinger{err: errors.New("boom")}, nopReceiver{})
	r.RegisterEmitter(nopEmitter{})
	r.RegisterReceiver(nopReceiver{})

	fabric, err := r.Build()
	require.NoError(t, err)
	require.False(t, fabric.Healthy(context.Background()))
}
