package world

import "sync"

// FlagChange is a room open/closed transition as delivered by the
// broker.  Open=false while a session occupies the room triggers
// eviction through the voluntary leave path.
type FlagChange struct {
	RoomKey string
	Open    bool
}

// FlagCache is the locally cached view of every room's open flag,
// shared by all sessions of one gateway instance.  It is primed from
// the store at startup and kept current by flag-change notifications,
// so the frequent enter paths (arcade, stadium, disco) never pay a
// store round-trip for the precondition check.
type FlagCache struct {
	mu   sync.RWMutex
	open map[string]bool
}

func NewFlagCache() *FlagCache {
	return &FlagCache{open: make(map[string]bool)}
}

// Prime replaces the cache contents with a full snapshot from the
// store.
func (c *FlagCache) Prime(flags map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = make(map[string]bool, len(flags))
	for k, v := range flags {
		c.open[k] = v
	}
}

// IsOpen reports the cached flag for a room.  Unknown rooms read as
// closed; a room missing from the snapshot cannot be entered until a
// flag change announces it.
func (c *FlagCache) IsOpen(roomKey string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open[roomKey]
}

// Set records a single flag transition.
func (c *FlagCache) Set(roomKey string, open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open[roomKey] = open
}
