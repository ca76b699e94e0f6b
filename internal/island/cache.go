// ABOUTME: Thread-safe TTL cache holding per-island UI state in process memory
// ABOUTME: Entries expire after an idle period; a background loop sweeps them out

package island

import (
	"sync"
	"time"

	"github.com/leafnote/leafnote/internal/store"
)

// DefaultTTL is how long an island's state survives without updates.
const DefaultTTL = time.Hour

// ChatEntry is one rendered line of an island's chat transcript.
type ChatEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the last-known UI state of one island. Fields are enumerated per
// feature rather than an open key/value bag so concurrent features cannot
// silently collide on a key.
type State struct {
	Messages      []ChatEntry   `json:"messages,omitempty"`
	SelectedModel string        `json:"selectedModel,omitempty"`
	LastMessage   string        `json:"lastMessage,omitempty"`
	RelatedNotes  []*store.Note `json:"relatedNotes,omitempty"`
	Error         string        `json:"error,omitempty"`
	Loading       bool          `json:"loading,omitempty"`
}

// cacheEntry pairs a state snapshot with its last-updated time.
type cacheEntry struct {
	state   State
	updated time.Time
}

// Cache maps island identifiers to their last-known state. It is safe for
// concurrent use, but two writers racing on the same island identifier are
// resolved last-writer-wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	done    chan struct{}
	closed  bool
}

// New creates an island state cache with the given idle TTL. A background
// goroutine sweeps expired entries every few minutes until Close is called.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the current state of an island and whether one is cached.
func (c *Cache) Get(islandID string) (State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[islandID]
	if !ok {
		return State{}, false
	}
	return entry.state, true
}

// Set replaces an island's state and stamps its update time.
func (c *Cache) Set(islandID string, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[islandID] = &cacheEntry{state: state, updated: time.Now()}
}

// Update applies fn to the island's current state (zero value if absent) and
// stores the result. The read-modify-write runs under the cache lock, so fn
// must not block.
func (c *Cache) Update(islandID string, fn func(State) State) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current State
	if entry, ok := c.entries[islandID]; ok {
		current = entry.state
	}
	next := fn(current)
	c.entries[islandID] = &cacheEntry{state: next, updated: time.Now()}
	return next
}

// Clear removes an island's state. Clearing an absent island is a no-op.
func (c *Cache) Clear(islandID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, islandID)
}

// Cleanup removes every entry idle longer than the TTL and reports how many
// were dropped. The background loop calls this, but it is exported so tests
// and maintenance paths can trigger a sweep directly.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, entry := range c.entries {
		if now.Sub(entry.updated) > c.ttl {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports how many islands currently have cached state.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.done:
			return
		}
	}
}

// Close stops the background sweep goroutine. Safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
