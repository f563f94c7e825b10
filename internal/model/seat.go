package model

import "time"

// Seat describes a claimable seat inside a cinema room.  Seats are
// uniquely identified by their room, row number and seat number.  A
// seat is occupied exactly when OccupiedBy is non-nil, and OccupiedAt
// must be non-nil in precisely the same cases; the repository enforces
// this by always writing or clearing both columns together.
//
// Fields:
//  ID         – primary key identifier.
//  RoomID     – cinema room to which this seat belongs.
//  RowNumber  – row within the auditorium (1-based).
//  SeatNumber – position within the row (1-based).
//  OccupiedBy – user currently holding the seat (nil when free).
//  OccupiedAt – when the seat was claimed (nil when free).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
	ID         uint64     // seats.id
	RoomID     uint64     // seats.room_id
	RowNumber  uint32     // seats.row_num
	SeatNumber uint32     // seats.seat_number
	OccupiedBy *uint64    // seats.occupied_by (nullable)
	OccupiedAt *time.Time // seats.occupied_at (nullable)
	CreatedAt  time.Time  // seats.created_at
	UpdatedAt  time.Time  // seats.updated_at
}

// Free reports whether the seat is currently unclaimed.
func (s Seat) Free() bool { return s.OccupiedBy == nil }
