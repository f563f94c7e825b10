package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-world/internal/model"
)

// PresenceRepo persists per-user presence rows.  Each user owns
// exactly one row which is upserted on every write-through; only the
// owning user's session ever writes it.
type PresenceRepo struct {
	db *sql.DB
}

// NewPresenceRepo constructs a PresenceRepo with the given DB handle.
func NewPresenceRepo(db *sql.DB) *PresenceRepo {
	return &PresenceRepo{db: db}
}

// Upsert writes a presence row through, inserting on first connection
// and updating afterwards.
func (r *PresenceRepo) Upsert(ctx context.Context, p model.Presence) error {
	const q = `INSERT INTO presences
	             (user_id, room_key, pos_x, pos_y, pos_z, rotation, saved_x, saved_y, saved_z, saved_rotation)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             room_key = VALUES(room_key),
	             pos_x = VALUES(pos_x), pos_y = VALUES(pos_y), pos_z = VALUES(pos_z),
	             rotation = VALUES(rotation),
	             saved_x = VALUES(saved_x), saved_y = VALUES(saved_y), saved_z = VALUES(saved_z),
	             saved_rotation = VALUES(saved_rotation),
	             updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q,
		p.UserID, p.RoomKey,
		p.Position.X, p.Position.Y, p.Position.Z, p.Rotation,
		p.SavedMapPosition.X, p.SavedMapPosition.Y, p.SavedMapPosition.Z, p.SavedMapRotation,
	)
	return err
}

// Get retrieves a user's presence row.
func (r *PresenceRepo) Get(ctx context.Context, userID uint64) (*model.Presence, error) {
	const q = `SELECT user_id, room_key, pos_x, pos_y, pos_z, rotation, saved_x, saved_y, saved_z, saved_rotation, updated_at
	           FROM presences WHERE user_id = ?`
	var p model.Presence
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&p.UserID, &p.RoomKey,
		&p.Position.X, &p.Position.Y, &p.Position.Z, &p.Rotation,
		&p.SavedMapPosition.X, &p.SavedMapPosition.Y, &p.SavedMapPosition.Z, &p.SavedMapRotation,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPresenceNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a user's presence row on disconnect.
func (r *PresenceRepo) Delete(ctx context.Context, userID uint64) error {
	const q = `DELETE FROM presences WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
