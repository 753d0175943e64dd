package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/use-agent/aeoaudit/models"
)

// DefaultSimilarity is the largest fingerprint distance at which a cached
// report is still served for a re-fetched page.
const DefaultSimilarity = 3

// entry holds a cached report with the fingerprint of the text it scored.
type entry struct {
	report      *models.TransformedReport
	fingerprint uint64
	createdAt   time.Time
}

// Cache is an in-memory report cache. It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	similarity int
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a Cache holding at most maxEntries reports. Entries older
// than ttl are evicted by a background sweep; call Close to stop it.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		similarity: DefaultSimilarity,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Key identifies an audit by URL and extraction bounds.
func Key(url string, maxWords, schemaCap int) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.Itoa(maxWords)))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.Itoa(schemaCap)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached report for key when it is younger than maxAge and
// its text fingerprint is similar to fingerprint. maxAge <= 0 disables the
// lookup.
func (c *Cache) Get(key string, fingerprint uint64, maxAge time.Duration) (*models.TransformedReport, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.createdAt) > maxAge {
		return nil, false
	}
	if !Similar(e.fingerprint, fingerprint, c.similarity) {
		return nil, false
	}
	return e.report, true
}

// Set stores a report. At capacity, an arbitrary entry is evicted.
func (c *Cache) Set(key string, fingerprint uint64, report *models.TransformedReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		report:      report,
		fingerprint: fingerprint,
		createdAt:   c.now(),
	}
}

// Len returns the number of cached reports.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the background sweep.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanupLoop evicts expired entries every ttl/4, at least once a minute.
func (c *Cache) cleanupLoop() {
	interval := c.ttl / 4
	if interval > time.Minute || interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}
