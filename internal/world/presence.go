package world

import (
	"sync"
	"time"

	"github.com/iliyamo/cinema-world/internal/model"
)

// HeldSeat records the seat a session currently occupies.
type HeldSeat struct {
	SeatID     uint64
	RoomID     uint64 // cinema room the seat belongs to
	RowNumber  uint32
	SeatNumber uint32
}

// Tracker is the per-session in-memory mirror of "where am I": the
// current room (if any), position, the saved map position and the seat
// held.  Long-lived listeners such as the eviction path read it at
// notification-delivery time rather than capturing values when they
// subscribe, so every read goes through the mutex-guarded cell.
type Tracker struct {
	mu       sync.RWMutex
	presence model.Presence
	current  *RoomSpec // nil while on the open map
	seat     *HeldSeat // nil while standing
}

// NewTracker creates a tracker for a freshly connected user placed at
// the map spawn point.
func NewTracker(userID uint64, spawn model.Vec3, rotation float64) *Tracker {
	return &Tracker{
		presence: model.Presence{
			UserID:           userID,
			Position:         spawn,
			Rotation:         rotation,
			SavedMapPosition: spawn,
			SavedMapRotation: rotation,
			UpdatedAt:        time.Now().UTC(),
		},
	}
}

// Snapshot returns a copy of the current presence row.
func (t *Tracker) Snapshot() model.Presence {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.presence
}

// CurrentRoom returns the spec of the occupied room, or nil while on
// the open map.  The returned value is a copy.
func (t *Tracker) CurrentRoom() *RoomSpec {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return nil
	}
	spec := *t.current
	return &spec
}

// Seat returns a copy of the held seat, or nil while standing.
func (t *Tracker) Seat() *HeldSeat {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.seat == nil {
		return nil
	}
	seat := *t.seat
	return &seat
}

// UserID returns the owning user's id.
func (t *Tracker) UserID() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.presence.UserID
}

// MoveTo updates position and rotation for free movement on the map or
// inside a room.  It does not touch room membership.
func (t *Tracker) MoveTo(p model.Vec3, rotation float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.presence.Position = p
	t.presence.Rotation = rotation
	t.presence.UpdatedAt = time.Now().UTC()
}

// enterRoom records room membership and teleports to the spawn point.
// The room key is set before the position so a concurrent reader never
// observes the avatar at its map position while already attributed to
// the room; the world renderer keys the interior switch off the room
// field and would otherwise flash the avatar at the old spot.
func (t *Tracker) enterRoom(spec RoomSpec, saveMapPosition bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if saveMapPosition {
		t.presence.SavedMapPosition = t.presence.Position
		t.presence.SavedMapRotation = t.presence.Rotation
	}
	key := spec.Ref.Key()
	t.presence.RoomKey = &key
	t.current = &spec
	t.presence.Position = spec.Spawn
	t.presence.Rotation = spec.SpawnRotation
	t.presence.UpdatedAt = time.Now().UTC()
}

// leaveRoom clears room membership and restores the saved map
// position.  It is a no-op result-wise when called twice; callers
// check CurrentRoom first.
func (t *Tracker) leaveRoom() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.presence.RoomKey = nil
	t.current = nil
	t.presence.Position = t.presence.SavedMapPosition
	t.presence.Rotation = t.presence.SavedMapRotation
	t.presence.UpdatedAt = time.Now().UTC()
}

func (t *Tracker) setSeat(seat *HeldSeat) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seat = seat
}
