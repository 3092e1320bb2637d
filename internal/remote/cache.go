package remote

import (
	"container/list"
	"sync"
	"time"
)

// DefaultCacheTTL is the default time-to-live for cached remote responses.
// Tags and file contents of released versions rarely change; main does, so
// the TTL stays short enough for branch updates to show up.
const DefaultCacheTTL = 5 * time.Minute

// DefaultCacheCleanupInterval is how often expired entries are purged.
// Entries are also dropped on access once expired.
const DefaultCacheCleanupInterval = 1 * time.Minute

// DefaultCacheMaxEntries bounds the number of cached responses.
const DefaultCacheMaxEntries = 256

// CacheMetricsCallback receives cache events. Implementations must not call
// back into the cache.
type CacheMetricsCallback interface {
	OnCacheHit()
	OnCacheMiss()
	// OnCacheEviction is called with reason "expired" or "lru".
	OnCacheEviction(reason string)
	OnCacheSizeChange(size int)
}

type cacheEntry struct {
	key       string
	value     any
	expiresAt time.Time
}

// responseCache is a TTL cache with LRU eviction for remote responses.
type responseCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lruList *list.List // front = most recently used
	ttl     time.Duration
	maxSize int
	metrics CacheMetricsCallback
	now     func() time.Time

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// TTL defaults to DefaultCacheTTL.
	TTL time.Duration
	// MaxEntries defaults to DefaultCacheMaxEntries.
	MaxEntries int
	Metrics    CacheMetricsCallback
}

func newResponseCache(config CacheConfig) *responseCache {
	c := newResponseCacheNoCleanup(config)
	go c.cleanupLoop(DefaultCacheCleanupInterval)
	return c
}

func newResponseCacheNoCleanup(config CacheConfig) *responseCache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}
	return &responseCache{
		entries:     make(map[string]*list.Element),
		lruList:     list.New(),
		ttl:         config.TTL,
		maxSize:     config.MaxEntries,
		metrics:     config.Metrics,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Get returns the cached value for key and moves it to the front of the
// LRU list. Expired entries are removed and reported as misses.
func (c *responseCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.onMiss()
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.removeElementLocked(elem, "expired")
		c.onMiss()
		return nil, false
	}

	c.lruList.MoveToFront(elem)
	c.onHit()
	return entry.value, true
}

// Set stores value under key, evicting the least recently used entries
// when the cache is full.
func (c *responseCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		c.lruList.MoveToFront(elem)
		return
	}

	for c.lruList.Len() >= c.maxSize {
		c.removeElementLocked(c.lruList.Back(), "lru")
	}

	c.entries[key] = c.lruList.PushFront(&cacheEntry{key: key, value: value, expiresAt: expiresAt})
	c.onSizeChangeLocked()
}

// Len returns the number of cached entries, including expired ones not yet purged.
func (c *responseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *responseCache) removeElementLocked(elem *list.Element, reason string) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.lruList.Remove(elem)
	if c.metrics != nil {
		c.metrics.OnCacheEviction(reason)
	}
	c.onSizeChangeLocked()
}

func (c *responseCache) onSizeChangeLocked() {
	if c.metrics != nil {
		c.metrics.OnCacheSizeChange(len(c.entries))
	}
}

func (c *responseCache) onHit() {
	if c.metrics != nil {
		c.metrics.OnCacheHit()
	}
}

func (c *responseCache) onMiss() {
	if c.metrics != nil {
		c.metrics.OnCacheMiss()
	}
}

func (c *responseCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(c.cleanupDone)

	for {
		select {
		case <-ticker.C:
			c.purgeExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *responseCache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var next *list.Element
	for elem := c.lruList.Front(); elem != nil; elem = next {
		next = elem.Next()
		if now.After(elem.Value.(*cacheEntry).expiresAt) {
			c.removeElementLocked(elem, "expired")
		}
	}
}

// Close stops the cleanup goroutine, if any, and empties the cache.
func (c *responseCache) Close() {
	select {
	case <-c.stopCleanup:
	default:
		close(c.stopCleanup)
	}

	c.mu.Lock()
	c.entries = make(map[string]*list.Element)
	c.lruList.Init()
	c.mu.Unlock()
}
