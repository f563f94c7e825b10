package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/iliyamo/cinema-world/internal/model"
	"github.com/iliyamo/cinema-world/internal/queue"
	queue_publisher "github.com/iliyamo/cinema-world/internal/service"
	"github.com/iliyamo/cinema-world/internal/world"
)

// WorldStore bundles the repositories into the world.Store contract
// consumed by the session core.  Presence write-throughs additionally
// broadcast a presence.updated event so other gateway instances can
// mirror avatar movement; a failed broadcast is logged and ignored, it
// must never fail the transition itself.
type WorldStore struct {
	Rooms     *RoomRepo
	Seats     *SeatRepo
	Presences *PresenceRepo
	Publish   bool // broadcast presence updates to the broker
}

// NewWorldStore wires a WorldStore over one DB handle.
func NewWorldStore(db *sql.DB, publish bool) *WorldStore {
	return &WorldStore{
		Rooms:     NewRoomRepo(db),
		Seats:     NewSeatRepo(db),
		Presences: NewPresenceRepo(db),
		Publish:   publish,
	}
}

var _ world.Store = (*WorldStore)(nil)

func (s *WorldStore) RoomFlags(ctx context.Context) (map[string]bool, error) {
	return s.Rooms.Flags(ctx)
}

func (s *WorldStore) RoomOpen(ctx context.Context, roomKey string) (bool, error) {
	open, err := s.Rooms.IsOpen(ctx, roomKey)
	if errors.Is(err, ErrRoomNotFound) {
		// Unknown rooms read as closed, same as the flag cache.
		return false, nil
	}
	return open, err
}

func (s *WorldStore) FirstFreeSeat(ctx context.Context, roomID uint64) (*model.Seat, error) {
	return s.Seats.FirstFree(ctx, roomID)
}

func (s *WorldStore) ClaimSeat(ctx context.Context, seatID, userID uint64) error {
	return s.Seats.Claim(ctx, seatID, userID)
}

func (s *WorldStore) ReleaseSeats(ctx context.Context, roomID, userID uint64) error {
	return s.Seats.ReleaseByRoomAndUser(ctx, roomID, userID)
}

func (s *WorldStore) WritePresence(ctx context.Context, p model.Presence) error {
	if err := s.Presences.Upsert(ctx, p); err != nil {
		return err
	}
	if s.Publish {
		if err := queue_publisher.PublishPresenceUpdated(ctx, queue.PresenceUpdatedFrom(p)); err != nil {
			log.Printf("presence broadcast failed: %v", err)
		}
	}
	return nil
}
