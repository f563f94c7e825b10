// Package queue defines the message payloads exchanged over the
// broker and the consumers that feed them into the session core.
package queue

import (
	"time"

	"github.com/iliyamo/cinema-world/internal/model"
)

// Queue names.  Both queues are declared durable by publisher and
// consumer alike so declarations stay idempotent.
const (
	RoomFlagsQueueName = "room.flags"
	PresenceQueueName  = "presence.updated"
)

// RoomFlagChangedEvent is published when a staff member flips a
// room's open flag.  Every gateway instance consumes it to refresh
// its flag cache and, on close, evict current occupants.
type RoomFlagChangedEvent struct {
	RoomID    uint64 `json:"room_id"`
	RoomKey   string `json:"room_key"`
	Open      bool   `json:"open"`
	ChangedBy uint64 `json:"changed_by"`
	ChangedAt string `json:"changed_at"`
}

// PresenceUpdatedEvent mirrors a presence write-through so other
// instances can update the shared world rendering without polling the
// store.
type PresenceUpdatedEvent struct {
	UserID    uint64  `json:"user_id"`
	RoomKey   *string `json:"room_key"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Rotation  float64 `json:"rotation"`
	UpdatedAt string  `json:"updated_at"`
}

// PresenceUpdatedFrom builds the broadcast payload for a presence row.
func PresenceUpdatedFrom(p model.Presence) PresenceUpdatedEvent {
	return PresenceUpdatedEvent{
		UserID:    p.UserID,
		RoomKey:   p.RoomKey,
		X:         p.Position.X,
		Y:         p.Position.Y,
		Z:         p.Position.Z,
		Rotation:  p.Rotation,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
