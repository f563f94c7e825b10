package model

import "time"

// Room kind constants stored in the rooms.kind column.  Arcade, stadium
// and disco are singleton spaces; any number of cinema auditoriums may
// exist, each with its own schedule and screen.
const (
	RoomKindArcade  = "ARCADE"
	RoomKindStadium = "STADIUM"
	RoomKindDisco   = "DISCO"
	RoomKindCinema  = "CINEMA"
)

// Room represents a shared space in the world.  The open flag is the
// only column this service ever writes; everything else is provisioned
// by the admin tooling.  Cinema rooms additionally carry a screening
// schedule and an embed URL for the auditorium screen.
//
// Fields:
//  ID        – primary key identifier.
//  RoomKey   – stable key used in presence rows and flag-change events
//              (e.g. "ARCADE", "CINEMA:5").
//  Kind      – one of the RoomKind* constants.
//  Name      – human readable label shown in the lobby.
//  IsOpen    – admin-controlled flag; closed rooms reject entry and
//              evict current occupants.
//  Capacity  – seat count for cinema rooms (nil for seatless rooms).
//  EmbedURL  – streaming URL for the cinema screen (nil when no
//              session is configured).
//  StartsAt  – scheduled start of the screening (nil when unset).
//  EndsAt    – scheduled end of the screening (nil when unset).
//  Theme     – rendering theme for cinema interiors; irrelevant to the
//              occupancy core but carried through for the clients.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64     // rooms.id
	RoomKey   string     // rooms.room_key
	Kind      string     // rooms.kind
	Name      string     // rooms.name
	IsOpen    bool       // rooms.is_open
	Capacity  *uint32    // rooms.capacity (nullable)
	EmbedURL  *string    // rooms.embed_url (nullable)
	StartsAt  *time.Time // rooms.starts_at (nullable)
	EndsAt    *time.Time // rooms.ends_at (nullable)
	Theme     *string    // rooms.theme (nullable)
	CreatedAt time.Time  // rooms.created_at
	UpdatedAt time.Time  // rooms.updated_at
}
