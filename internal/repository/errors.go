// Package repository implements the shared state store on MySQL: room
// definitions and flags, seat occupancy with atomic conditional
// claims, presence write-through and staff accounts.  Sentinel errors
// defined here let handlers map failure modes to responses without
// inspecting error strings; seat-contention errors come from the world
// package, whose Store contract these repositories implement.
package repository

import "errors"

// ErrRoomNotFound is returned when a room lookup yields no rows.
var ErrRoomNotFound = errors.New("room not found")

// ErrStaffUserNotFound is returned when a staff account lookup yields
// no rows.
var ErrStaffUserNotFound = errors.New("staff user not found")

// ErrPresenceNotFound is returned when a presence lookup yields no rows.
var ErrPresenceNotFound = errors.New("presence not found")
