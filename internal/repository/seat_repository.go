package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cinema-world/internal/model"
	"github.com/iliyamo/cinema-world/internal/world"
)

// SeatRepo provides access to cinema seats.  The occupied_by and
// occupied_at columns are always written together so the occupancy
// invariant (one is null exactly when the other is) holds at the row
// level for every statement in this file.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// FirstFree returns the first unoccupied seat of a room in stable
// order (row number, then seat number), or nil when the room is full.
func (r *SeatRepo) FirstFree(ctx context.Context, roomID uint64) (*model.Seat, error) {
	const q = `SELECT id, room_id, row_num, seat_number, occupied_by, occupied_at, created_at, updated_at
	           FROM seats
	           WHERE room_id = ? AND occupied_by IS NULL
	           ORDER BY row_num, seat_number
	           LIMIT 1`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, roomID).Scan(
		&s.ID, &s.RoomID, &s.RowNumber, &s.SeatNumber,
		&s.OccupiedBy, &s.OccupiedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Claim occupies a seat if and only if it is still free.  The
// condition in the WHERE clause makes the claim a compare-and-swap:
// when two users observed the same free seat, exactly one UPDATE
// matches and the loser gets world.ErrSeatTaken.
func (r *SeatRepo) Claim(ctx context.Context, seatID, userID uint64) error {
	const q = `UPDATE seats
	           SET occupied_by = ?, occupied_at = UTC_TIMESTAMP(), updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND occupied_by IS NULL`
	res, err := r.db.ExecContext(ctx, q, userID, seatID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return world.ErrSeatTaken
	}
	return nil
}

// ReleaseByRoomAndUser frees every seat the user holds in the room.
// Scoping on both columns guarantees no other user's seat is touched.
// Releasing zero rows is not an error; the defensive reset on room
// entry relies on that.
func (r *SeatRepo) ReleaseByRoomAndUser(ctx context.Context, roomID, userID uint64) error {
	const q = `UPDATE seats
	           SET occupied_by = NULL, occupied_at = NULL, updated_at = CURRENT_TIMESTAMP
	           WHERE room_id = ? AND occupied_by = ?`
	_, err := r.db.ExecContext(ctx, q, roomID, userID)
	return err
}

// GetByRoom retrieves the full seat map of a room ordered by row then
// seat number, for the occupancy endpoint.
func (r *SeatRepo) GetByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	const q = `SELECT id, room_id, row_num, seat_number, occupied_by, occupied_at, created_at, updated_at
	           FROM seats
	           WHERE room_id = ?
	           ORDER BY row_num, seat_number`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(
			&s.ID, &s.RoomID, &s.RowNumber, &s.SeatNumber,
			&s.OccupiedBy, &s.OccupiedAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
