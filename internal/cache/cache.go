// Package cache is a bounded LRU keyed by a monotonic operation counter.
// Recency is counter-ordered rather than wall-clock so eviction stays
// deterministic under bursts of sub-millisecond operations.
package cache

import "sync"

// Namespace selects one of the two independently-capacitied stores.
type Namespace string

const (
	// Artifacts holds compiled parse results keyed by content hash.
	Artifacts Namespace = "artifacts"
	// Modules holds per-module symbol tables.
	Modules Namespace = "modules"
	// All addresses both namespaces in Clear.
	All Namespace = "all"
)

// Default capacities. Deliberately small; eviction scans are O(n).
const (
	DefaultMaxArtifacts = 32
	DefaultMaxModules   = 64
)

// Stats are cumulative per-namespace counters. Hits and Misses survive
// Clear; Size and Max reflect the current moment.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Size   int    `json:"size"`
	Max    int    `json:"max"`
}

type entry struct {
	value   any
	counter uint64
}

type space struct {
	entries map[string]*entry
	max     int
	hits    uint64
	misses  uint64
}

// Cache is the one shared mutable resource of the engine. All operations
// take the same mutex; eviction scans and counter bumps are not atomic
// individually.
type Cache struct {
	mu      sync.Mutex
	counter uint64
	spaces  map[Namespace]*space
}

// New returns a cache with the given capacities. Non-positive capacities
// fall back to the defaults.
func New(maxArtifacts, maxModules int) *Cache {
	if maxArtifacts <= 0 {
		maxArtifacts = DefaultMaxArtifacts
	}
	if maxModules <= 0 {
		maxModules = DefaultMaxModules
	}
	return &Cache{
		spaces: map[Namespace]*space{
			Artifacts: {entries: map[string]*entry{}, max: maxArtifacts},
			Modules:   {entries: map[string]*entry{}, max: maxModules},
		},
	}
}

// Get returns the cached value and refreshes its recency. The second result
// is false on a miss or an unknown namespace.
func (c *Cache) Get(ns Namespace, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sp := c.spaces[ns]
	if sp == nil {
		return nil, false
	}
	e, ok := sp.entries[key]
	if !ok {
		sp.misses++
		return nil, false
	}
	sp.hits++
	c.counter++
	e.counter = c.counter
	return e.value, true
}

// Put stores a value, evicting the namespace's least-recently-touched entry
// when a new key would exceed capacity.
func (c *Cache) Put(ns Namespace, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sp := c.spaces[ns]
	if sp == nil {
		return
	}
	c.counter++
	if e, ok := sp.entries[key]; ok {
		e.value = value
		e.counter = c.counter
		return
	}
	if len(sp.entries) >= sp.max {
		sp.evict()
	}
	sp.entries[key] = &entry{value: value, counter: c.counter}
}

// evict removes the entry with the smallest counter. O(n) over a namespace
// of at most a few dozen entries.
func (sp *space) evict() {
	var victim string
	var min uint64
	first := true
	for key, e := range sp.entries {
		if first || e.counter < min {
			victim, min, first = key, e.counter, false
		}
	}
	if !first {
		delete(sp.entries, victim)
	}
}

// Remove drops a single entry, if present.
func (c *Cache) Remove(ns Namespace, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sp := c.spaces[ns]; sp != nil {
		delete(sp.entries, key)
	}
}

// Clear empties the named namespace, or both for All. Cumulative hit and
// miss counters are preserved.
func (c *Cache) Clear(ns Namespace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, sp := range c.spaces {
		if ns == All || ns == name {
			sp.entries = map[string]*entry{}
		}
	}
}

// SetLimits changes capacities. Oversized namespaces are not shrunk
// retroactively; the new limit applies on the next eviction decision.
func (c *Cache) SetLimits(maxArtifacts, maxModules int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if maxArtifacts > 0 {
		c.spaces[Artifacts].max = maxArtifacts
	}
	if maxModules > 0 {
		c.spaces[Modules].max = maxModules
	}
}

// Stats returns a snapshot of both namespaces.
func (c *Cache) Stats() map[Namespace]Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Namespace]Stats, len(c.spaces))
	for name, sp := range c.spaces {
		out[name] = Stats{
			Hits:   sp.hits,
			Misses: sp.misses,
			Size:   len(sp.entries),
			Max:    sp.max,
		}
	}
	return out
}
