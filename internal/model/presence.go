package model

import "time"

// Vec3 is a position in the shared 3D world.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Presence is a connected user's location state as written through to
// the presences table.  RoomKey is nil while the user is on the open
// map; it holds the occupied room's key otherwise.  SavedMapPosition
// and SavedMapRotation remember where the avatar stood on the map so
// the position can be restored when the user leaves a room.
//
// Position and rotation are only ever written by the owning user's own
// session; no session writes another user's presence row.
//
// Fields:
//  UserID           – user this row belongs to (primary key).
//  RoomKey          – key of the occupied room (nil when on the map).
//  Position         – current 3D position.
//  Rotation         – heading in radians.
//  SavedMapPosition – map position to restore on leaving a room.
//  SavedMapRotation – map rotation to restore on leaving a room.
//  UpdatedAt        – last write-through timestamp.
type Presence struct {
	UserID           uint64    // presences.user_id
	RoomKey          *string   // presences.room_key (nullable)
	Position         Vec3      // presences.pos_x/pos_y/pos_z
	Rotation         float64   // presences.rotation
	SavedMapPosition Vec3      // presences.saved_x/saved_y/saved_z
	SavedMapRotation float64   // presences.saved_rotation
	UpdatedAt        time.Time // presences.updated_at
}
