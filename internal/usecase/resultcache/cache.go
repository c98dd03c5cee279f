// Package resultcache stores completed pipeline results keyed by request fingerprint.
package resultcache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/docnav/internal/domain/answer"
	"github.com/kailas-cloud/docnav/internal/domain/query"
	"github.com/kailas-cloud/docnav/internal/metrics"
)

// Defaults applied when options are zero.
const (
	DefaultTTL        = time.Hour
	MinTTL            = time.Minute
	DefaultMaxEntries = 10000
)

// Stats is a point-in-time view of the cache.
type Stats struct {
	Enabled bool
	Total   int
	Active  int
	Expired int
	TTL     time.Duration
}

type entry struct {
	result    answer.Result
	createdAt time.Time
}

// Cache is a TTL cache of pipeline results with a bounded entry count.
// Expired entries are evicted when read. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	enabled bool
	gen     uint64
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache. ttl below MinTTL is raised to MinTTL; maxEntries <= 0 uses DefaultMaxEntries.
func New(enabled bool, ttl time.Duration, maxEntries int, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl < MinTTL {
		ttl = MinTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	entries, err := lru.New[string, entry](maxEntries)
	if err != nil {
		// only fails for non-positive size
		panic(err)
	}
	c := &Cache{
		entries: entries,
		ttl:     ttl,
		enabled: enabled,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached result for fingerprint. An entry older than the TTL
// is removed and reported absent.
func (c *Cache) Get(fingerprint string) (answer.Result, bool) {
	if !c.enabled {
		return answer.Result{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(fingerprint)
	if !ok {
		metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
		return answer.Result{}, false
	}
	if c.expired(e) {
		c.entries.Remove(fingerprint)
		metrics.ResultCacheTotal.WithLabelValues("expired").Inc()
		return answer.Result{}, false
	}
	metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
	return e.result.Clone(), true
}

// Put stores result under fingerprint, replacing any previous entry.
func (c *Cache) Put(fingerprint string, result answer.Result) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(fingerprint, entry{result: result.Clone(), createdAt: c.now()})
}

// Generation identifies the current cache contents. Every Clear advances it.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// PutIf stores result only if no Clear happened since gen was read. It
// reports whether the result was stored.
func (c *Cache) PutIf(fingerprint string, result answer.Result, gen uint64) bool {
	if !c.enabled {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		metrics.ResultCacheTotal.WithLabelValues("stale").Inc()
		return false
	}
	c.entries.Add(fingerprint, entry{result: result.Clone(), createdAt: c.now()})
	return true
}

// Clear removes every entry and returns how many were dropped.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	n := c.entries.Len()
	c.entries.Purge()
	return n
}

// Stats counts live and expired entries without evicting them.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Enabled: c.enabled, TTL: c.ttl}
	for _, k := range c.entries.Keys() {
		e, ok := c.entries.Peek(k)
		if !ok {
			continue
		}
		s.Total++
		if c.expired(e) {
			s.Expired++
		} else {
			s.Active++
		}
	}
	return s
}

func (c *Cache) expired(e entry) bool {
	return c.now().Sub(e.createdAt) > c.ttl
}

// Fingerprint derives the cache key from the normalized text and every
// parameter that affects the result.
func Fingerprint(q query.Query) string {
	var b strings.Builder
	b.WriteString(normalize(q.Text()))
	b.WriteString("\x00n=")
	b.WriteString(strconv.Itoa(q.ResultCount()))
	b.WriteString("\x00ex=")
	b.WriteString(strconv.FormatBool(q.IncludeCodeExamples()))
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// normalize trims and collapses internal whitespace. Case is preserved.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
