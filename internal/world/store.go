package world

import (
	"context"
	"errors"

	"github.com/iliyamo/cinema-world/internal/model"
)

// ErrSeatTaken is returned by Store.ClaimSeat when the conditional
// write finds the seat already occupied: another user won the race
// between observing the seat as free and claiming it.
var ErrSeatTaken = errors.New("seat already taken")

// ErrNoFreeSeat is returned by the controller when a cinema room has
// no unoccupied seat left.
var ErrNoFreeSeat = errors.New("no free seat available")

// ErrNotInCinema is returned when a seat claim is attempted while the
// session is not inside a cinema room.
var ErrNotInCinema = errors.New("not inside a cinema room")

// Store is the durable shared state store the core writes through to.
// It is the single source of truth for seat occupancy and room flags;
// the in-memory tracker only mirrors it for responsiveness.  All
// methods are round-trips and honour context cancellation.
type Store interface {
	// RoomFlags returns the open/closed flag of every room keyed by
	// room key.  Used once at startup to prime the local flag cache,
	// which is kept current by flag-change notifications afterwards.
	RoomFlags(ctx context.Context) (map[string]bool, error)

	// RoomOpen re-checks a room's flag directly against the store.
	// Entering a cinema is rare enough that the extra round-trip is
	// worth the authoritative answer; frequently entered rooms trust
	// the local cache instead.
	RoomOpen(ctx context.Context, roomKey string) (bool, error)

	// FirstFreeSeat returns the first unoccupied seat of a cinema
	// room in stable order (row, then seat number), or nil when the
	// room is full.
	FirstFreeSeat(ctx context.Context, roomID uint64) (*model.Seat, error)

	// ClaimSeat atomically sets the seat's occupant if and only if it
	// is still free, returning ErrSeatTaken when the race was lost.
	ClaimSeat(ctx context.Context, seatID, userID uint64) error

	// ReleaseSeats frees every seat the user holds in the given room.
	// The scope to (room, user) guarantees no other user's seat is
	// ever released.
	ReleaseSeats(ctx context.Context, roomID, userID uint64) error

	// WritePresence writes a user's presence row through to the store.
	WritePresence(ctx context.Context, p model.Presence) error
}
