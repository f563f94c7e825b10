package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-world/internal/model"
)

// RoomRepo provides read access to rooms and the single write this
// service performs on them: flipping the open flag.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, room_key, kind, name, is_open, capacity, embed_url, starts_at, ends_at, theme, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	err := row.Scan(
		&r.ID, &r.RoomKey, &r.Kind, &r.Name, &r.IsOpen,
		&r.Capacity, &r.EmbedURL, &r.StartsAt, &r.EndsAt, &r.Theme,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List retrieves all rooms ordered by kind then key, for the lobby
// browse endpoint.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY kind, room_key`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a single room.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// Flags returns the open flag of every room keyed by room key.  Used
// to prime the gateway's local flag cache at startup.
func (r *RoomRepo) Flags(ctx context.Context) (map[string]bool, error) {
	const q = `SELECT room_key, is_open FROM rooms`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make(map[string]bool)
	for rows.Next() {
		var key string
		var open bool
		if err := rows.Scan(&key, &open); err != nil {
			return nil, err
		}
		flags[key] = open
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flags, nil
}

// IsOpen re-reads a single room's flag.  This is the authoritative
// re-check used on cinema entry.
func (r *RoomRepo) IsOpen(ctx context.Context, roomKey string) (bool, error) {
	const q = `SELECT is_open FROM rooms WHERE room_key = ?`
	var open bool
	err := r.db.QueryRowContext(ctx, q, roomKey).Scan(&open)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrRoomNotFound
		}
		return false, err
	}
	return open, nil
}

// SetOpen flips a room's open flag and returns the updated row so the
// caller can publish the transition.  Returns ErrRoomNotFound when the
// id does not exist.
func (r *RoomRepo) SetOpen(ctx context.Context, id uint64, open bool) (*model.Room, error) {
	const q = `UPDATE rooms SET is_open = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, open, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also zero when the flag already had the
		// requested value; confirm existence before reporting not-found.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}
