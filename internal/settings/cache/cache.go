// Package cache keeps recently read setting values in memory.
//
// Entries expire after a TTL and are invalidated explicitly by every write,
// which gives read-your-writes within one process. Nothing is shared between
// processes.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/definition"
)

// Key identifies one cached value. User is zero for ScopeGlobal.
type Key struct {
	Scope  definition.Scope
	Plugin string
	Key    string
	User   uint64
}

// GlobalKey returns the key of a global value.
func GlobalKey(plugin, key string) Key {
	return Key{Scope: definition.ScopeGlobal, Plugin: plugin, Key: key}
}

// UserKey returns the key of a per user value.
func UserKey(plugin string, user uint64, key string) Key {
	return Key{Scope: definition.ScopeUser, Plugin: plugin, Key: key, User: user}
}

// String implements fmt.Stringer.
func (k Key) String() string {
	if k.Scope == definition.ScopeUser {
		return fmt.Sprintf("%s/%s/%d/%s", k.Scope, k.Plugin, k.User, k.Key)
	}

	return fmt.Sprintf("%s/%s/%s", k.Scope, k.Plugin, k.Key)
}

var lookups = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "plugin_settings_cache_lookups_total",
		Help: "Settings cache lookups, differentiated by scope and result.",
	},
	[]string{"scope", "result"},
)

var invalidations = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "plugin_settings_cache_invalidations_total",
		Help: "Settings cache invalidations, differentiated by scope.",
	},
	[]string{"scope"},
)

// Cache is an in-memory settings cache. The zero value is not usable, use New.
//
// The cache carries a version that every Invalidate increments. A reader that
// takes the version before loading from the store and populates with
// PopulateIfVersion can not resurrect a value a concurrent write replaced.
type Cache struct {
	items *ttlcache.Cache[Key, string]

	mu      sync.Mutex // guards version and serializes it with items
	version uint64
}

// New creates a cache whose entries live for ttl. A capacity of zero means unbounded.
// Start has to be called to evict expired entries in the background.
func New(ttl time.Duration, capacity uint64) *Cache {
	opts := []ttlcache.Option[Key, string]{
		ttlcache.WithTTL[Key, string](ttl),
		ttlcache.WithDisableTouchOnHit[Key, string](),
	}

	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[Key, string](capacity))
	}

	return &Cache{
		items: ttlcache.New(opts...),
	}
}

// Start evicts expired entries until Stop is called. It blocks.
func (c *Cache) Start() {
	c.items.Start()
}

// Stop ends the eviction loop started by Start.
func (c *Cache) Stop() {
	c.items.Stop()
}

// Read returns the cached value of k.
func (c *Cache) Read(k Key) (string, bool) {
	item := c.items.Get(k)
	if item == nil {
		lookups.WithLabelValues(k.Scope.String(), "miss").Inc()
		return "", false
	}

	lookups.WithLabelValues(k.Scope.String(), "hit").Inc()

	return item.Value(), true
}

// Version returns the current invalidation version.
func (c *Cache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version
}

// PopulateIfVersion stores value for k unless anything was invalidated since
// version was taken. It reports whether the value was stored.
func (c *Cache) PopulateIfVersion(k Key, value string, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != version {
		return false
	}

	c.items.Set(k, value, ttlcache.DefaultTTL)

	return true
}

// Invalidate drops k. It is synchronous, a Read started afterwards misses.
func (c *Cache) Invalidate(k Key) {
	invalidations.WithLabelValues(k.Scope.String()).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	c.items.Delete(k)
}

// Len returns the number of cached entries, expired ones included until evicted.
func (c *Cache) Len() int {
	return c.items.Len()
}
