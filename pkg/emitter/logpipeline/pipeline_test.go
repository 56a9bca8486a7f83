package logpipeline_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/emitter/logpipeline"
	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	envelope.Base
	Amount int
}

type fakeClient struct {
	mu      sync.Mutex
	keys    map[string][]byte
	entries []map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{keys: map[string][]byte{}}
}

func (f *fakeClient) SetKey(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = value
	return nil
}

func (f *fakeClient) GetKey(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.keys[key]
	return v, ok, nil
}

func (f *fakeClient) AppendStream(ctx context.Context, stream string, fields map[string]string, maxLen int64, approximate bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, fields)
	return "1-0", nil
}

func (f *fakeClient) SetKeyTTL(ctx context.Context, key string, ttl time.Duration) error { return nil }
func (f *fakeClient) EnsureGroup(ctx context.Context, stream, group string) error        { return nil }
func (f *fakeClient) ReadGroupBlock(ctx context.Context, group, consumer, stream string, block time.Duration, count int64) (interface{}, error) {
	return nil, nil
}
func (f *fakeClient) Ack(ctx context.Context, stream, group, entryID string) error { return nil }
func (f *fakeClient) Ping(ctx context.Context) (time.Duration, error)             { return 0, nil }

func (f *fakeClient) entryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeClient) keyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

func (f *fakeClient) entryIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.entries))
	for i, e := range f.entries {
		ids[i] = e["id"]
	}
	return ids
}

func TestPipelineStandardWriteCreatesKeyAndEntry(t *testing.T) {
	client := newFakeClient()
	cfg := logpipeline.DefaultConfig()
	p := logpipeline.New(client, cfg)
	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	defer p.Dispose(ctx)

	payload := &testEntity{Base: envelope.Base{NotificationID: "n-1", NotificationType: "Test.Entity", CreatedAt: time.Now()}}
	require.NoError(t, p.Emit(ctx, payload))

	require.Eventually(t, func() bool { return client.entryCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, client.keyCount())
}

func TestPipelineStreamOnlyWritesNoKey(t *testing.T) {
	client := newFakeClient()
	cfg := logpipeline.DefaultConfig()
	cfg.StreamOnlyTypes = map[string]struct{}{"Metric.Entity": {}}
	p := logpipeline.New(client, cfg)
	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	defer p.Dispose(ctx)

	payload := &testEntity{Base: envelope.Base{NotificationID: "n-2", NotificationType: "Metric.Entity", CreatedAt: time.Now()}}
	require.NoError(t, p.Emit(ctx, payload))

	require.Eventually(t, func() bool { return client.entryCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 0, client.keyCount())
}

func TestPipelineUpdateableFallsBackToStandardWhenKeyEmpty(t *testing.T) {
	client := newFakeClient()
	cfg := logpipeline.DefaultConfig()
	cfg.UpdateableTypes = map[string]logpipeline.UpdateableSpec{
		"Test.Entity": {KeyFunc: func(envelope.Envelope) string { return "" }},
	}
	p := logpipeline.New(client, cfg)
	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	defer p.Dispose(ctx)

	payload := &testEntity{Base: envelope.Base{NotificationID: "n-3", NotificationType: "Test.Entity", CreatedAt: time.Now()}}
	require.NoError(t, p.Emit(ctx, payload))

	require.Eventually(t, func() bool { return client.entryCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, client.keyCount())
}

func TestPipelineEmitAfterDisposeFails(t *testing.T) {
	client := newFakeClient()
	p := logpipeline.New(client, logpipeline.DefaultConfig())
	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	require.NoError(t, p.Dispose(ctx))

	err := p.Emit(ctx, &testEntity{Base: envelope.Base{NotificationID: "n-4"}})
	require.Error(t, err)
}

// TestPipelineBackpressureWaitBlocksUntilWorkerDrains exercises the
// documented backpressure scenario (spec.md end-to-end scenario 4): queue
// capacity 2, overflow policy wait, 5 concurrent emits against a paused
// worker. Start is deliberately not called until after the emits are in
// flight, so the worker is paused in the literal sense — nothing drains the
// queue — and the bounded channel alone gates acceptance: emits 1-2 fill it
// and return promptly, emits 3-5 remain pending until the worker resumes.
func TestPipelineBackpressureWaitBlocksUntilWorkerDrains(t *testing.T) {
	client := newFakeClient()
	cfg := logpipeline.DefaultConfig()
	cfg.QueueCapacity = 2
	cfg.OverflowPolicy = logpipeline.OverflowWait
	p := logpipeline.New(client, cfg)
	ctx := context.Background()
	defer p.Dispose(ctx)

	const n = 5
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			payload := &testEntity{Base: envelope.Base{
				NotificationID: fmt.Sprintf("n-%d", i), NotificationType: "Test.Entity", CreatedAt: time.Now(),
			}}
			done <- p.Emit(ctx, payload)
		}(i)
	}

	require.Eventually(t, func() bool { return len(done) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 2, len(done), "only 2 of 5 emits should have returned while the worker is paused")

	require.NoError(t, p.Start(ctx))

	require.Eventually(t, func() bool { return len(done) == n }, time.Second, 5*time.Millisecond)
	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}
	require.Eventually(t, func() bool { return client.entryCount() == n }, time.Second, 5*time.Millisecond)
}

// TestPipelineOverflowDropNewestDiscardsNewItem exercises the drop-newest
// overflow policy: once the bounded queue is full, further emits are
// silently dropped instead of blocking or displacing what's already queued.
func TestPipelineOverflowDropNewestDiscardsNewItem(t *testing.T) {
	client := newFakeClient()
	cfg := logpipeline.DefaultConfig()
	cfg.QueueCapacity = 1
	cfg.OverflowPolicy = logpipeline.OverflowDropNewest
	p := logpipeline.New(client, cfg)
	ctx := context.Background()
	defer p.Dispose(ctx)

	require.NoError(t, p.Emit(ctx, &testEntity{Base: envelope.Base{
		NotificationID: "n-a", NotificationType: "Test.Entity", CreatedAt: time.Now(),
	}}))
	// The 1-deep queue is now full with n-a; n-b must be dropped, not queued.
	require.NoError(t, p.Emit(ctx, &testEntity{Base: envelope.Base{
		NotificationID: "n-b", NotificationType: "Test.Entity", CreatedAt: time.Now(),
	}}))

	require.NoError(t, p.Start(ctx))

	require.Eventually(t, func() bool { return client.entryCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"n-a"}, client.entryIDs())
}

// TestPipelineOverflowDropOldestEvictsQueuedItem exercises the drop-oldest
// overflow policy: once the bounded queue is full, the oldest queued item
// is evicted to make room for the new one.
func TestPipelineOverflowDropOldestEvictsQueuedItem(t *testing.T) {
	client := newFakeClient()
	cfg := logpipeline.DefaultConfig()
	cfg.QueueCapacity = 1
	cfg.OverflowPolicy = logpipeline.OverflowDropOldest
	p := logpipeline.New(client, cfg)
	ctx := context.Background()
	defer p.Dispose(ctx)

	require.NoError(t, p.Emit(ctx, &testEntity{Base: envelope.Base{
		NotificationID: "n-a", NotificationType: "Test.Entity", CreatedAt: time.Now(),
	}}))
	// n-b evicts queued n-a rather than being dropped itself.
	require.NoError(t, p.Emit(ctx, &testEntity{Base: envelope.Base{
		NotificationID: "n-b", NotificationType: "Test.Entity", CreatedAt: time.Now(),
	}}))

	require.NoError(t, p.Start(ctx))

	require.Eventually(t, func() bool { return client.entryCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"n-b"}, client.entryIDs())
}
