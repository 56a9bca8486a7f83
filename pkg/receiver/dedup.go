package receiver

import (
	"context"
	"sync"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DedupConfig configures the composite receiver's deduplication cache
// (spec §4.2).
type DedupConfig struct {
	// TTL is how long a seen identifier is remembered.
	TTL time.Duration
	// MaxEntries bounds the cache size.
	MaxEntries int
	// CompactionFraction of MaxEntries is evicted, oldest-first, once the
	// cache reaches MaxEntries.
	CompactionFraction float64
	// ScanInterval is how often the background compaction sweep runs.
	ScanInterval time.Duration
}

// DefaultDedupConfig returns the spec-documented defaults.
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		TTL:                10 * time.Minute,
		MaxEntries:         10_000,
		CompactionFraction: 0.25,
		ScanInterval:       time.Minute,
	}
}

// dedupCache is a bounded, TTL-governed set of seen notification IDs.
// expirable.LRU already evicts the single oldest entry past MaxEntries on
// insert; the periodic sweep additionally evicts a configured fraction at
// once, so a burst of unique IDs doesn't thrash one-at-a-time evictions.
type dedupCache struct {
	cfg   DedupConfig
	cache *lru.LRU[string, struct{}]

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newDedupCache(cfg DedupConfig) *dedupCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultDedupConfig().MaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultDedupConfig().TTL
	}
	if cfg.CompactionFraction <= 0 {
		cfg.CompactionFraction = DefaultDedupConfig().CompactionFraction
	}
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultDedupConfig().ScanInterval
	}

	return &dedupCache{
		cfg:   cfg,
		cache: lru.NewLRU[string, struct{}](cfg.MaxEntries, nil, cfg.TTL),
	}
}

// seen reports whether id has already been observed, marking it seen as a
// side effect if not (first-writer-wins, spec §4.2).
func (d *dedupCache) seen(id string) bool {
	if _, ok := d.cache.Get(id); ok {
		return true
	}
	d.cache.Add(id, struct{}{})
	return false
}

func (d *dedupCache) start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.cfg.ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.compact()
			}
		}
	}()
}

func (d *dedupCache) compact() {
	if d.cache.Len() < d.cfg.MaxEntries {
		return
	}
	evict := int(float64(d.cfg.MaxEntries) * d.cfg.CompactionFraction)
	if evict <= 0 {
		evict = 1
	}
	keys := d.cache.Keys()
	for i := 0; i < evict && i < len(keys); i++ {
		d.cache.Remove(keys[i])
	}
	logger.L().Debug("receiver: dedup cache compacted", "evicted", evict, "remaining", d.cache.Len())
}

func (d *dedupCache) stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
}
