// Package world implements the room-occupancy and session-synchronization
// core of the shared 3D space: per-session presence tracking, the room
// enter/leave state machine with exclusive seat claims, staff-driven
// closure eviction and the synchronized playback driver for cinema
// screens.  Persistence and change notification are delegated to a
// Store and the message broker; rendering, voice and engagement
// recording are reached through the narrow hook interfaces in hooks.go.
package world

import (
	"fmt"

	"github.com/iliyamo/cinema-world/internal/model"
)

// RoomRef identifies a room by kind plus, for cinemas, the auditorium
// id.  It is the in-memory form of the room_key column.
type RoomRef struct {
	Kind     string // one of the model.RoomKind* constants
	CinemaID uint64 // auditorium id; zero unless Kind is CINEMA
}

// Key renders the stable room key used in presence rows, flag caches
// and flag-change events ("ARCADE", "CINEMA:5", ...).
func (r RoomRef) Key() string {
	if r.Kind == model.RoomKindCinema {
		return fmt.Sprintf("%s:%d", model.RoomKindCinema, r.CinemaID)
	}
	return r.Kind
}

// IsCinema reports whether the ref points at a cinema auditorium.
func (r RoomRef) IsCinema() bool { return r.Kind == model.RoomKindCinema }

// RoomSpec is the per-kind configuration the lifecycle controller is
// parameterized with.  One generic Enter/Leave pair runs over these
// records instead of a separate code path per room kind.
type RoomSpec struct {
	Ref           RoomRef
	Label         string     // engagement + voice-scope label
	Spawn         model.Vec3 // fixed spawn point inside the room
	SpawnRotation float64    // facing direction at the spawn point
	CameraOffset  model.Vec3 // camera position relative to the spawn point
}

// Fixed-room specs.  Spawn points and camera offsets mirror the scene
// geometry shipped with the clients.
var (
	ArcadeSpec = RoomSpec{
		Ref:           RoomRef{Kind: model.RoomKindArcade},
		Label:         "arcade",
		Spawn:         model.Vec3{X: 120, Y: 0, Z: -40},
		SpawnRotation: 3.14,
		CameraOffset:  model.Vec3{X: 0, Y: 6, Z: 14},
	}
	StadiumSpec = RoomSpec{
		Ref:           RoomRef{Kind: model.RoomKindStadium},
		Label:         "stadium",
		Spawn:         model.Vec3{X: -200, Y: 0, Z: 80},
		SpawnRotation: 0,
		CameraOffset:  model.Vec3{X: 0, Y: 10, Z: 22},
	}
	DiscoSpec = RoomSpec{
		Ref:           RoomRef{Kind: model.RoomKindDisco},
		Label:         "disco",
		Spawn:         model.Vec3{X: 60, Y: 0, Z: 160},
		SpawnRotation: 1.57,
		CameraOffset:  model.Vec3{X: 0, Y: 5, Z: 12},
	}
)

// CinemaSpec builds the spec for one of the cinema auditoriums.  All
// auditoriums share interior geometry, so spawn and camera are common;
// only the ref and labels differ.
func CinemaSpec(cinemaID uint64) RoomSpec {
	return RoomSpec{
		Ref:           RoomRef{Kind: model.RoomKindCinema, CinemaID: cinemaID},
		Label:         fmt.Sprintf("cinema-%d", cinemaID),
		Spawn:         model.Vec3{X: 0, Y: 0, Z: -300},
		SpawnRotation: 0,
		CameraOffset:  model.Vec3{X: 0, Y: 4, Z: 10},
	}
}
