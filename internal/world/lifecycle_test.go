package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-world/internal/model"
)

func TestEnter_ClosedRoom_RejectsWithoutMutation(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	flags := NewFlagCache()
	flags.Set(ArcadeSpec.Ref.Key(), false)
	s := newTestSession(store, flags, 7)
	before := s.tracker.Snapshot()

	// When entering a closed arcade
	err := s.ctrl.Enter(context.Background(), ArcadeSpec)

	// Then the user gets the closed notice and nothing moved
	req.NoError(err)
	req.Equal([]Notice{NoticeRoomClosed}, s.notifier.all())
	after := s.tracker.Snapshot()
	req.Nil(after.RoomKey)
	req.Equal(before.Position, after.Position)
	req.Zero(store.presenceWrites)
	req.Empty(s.recorder.entered)
}

func TestEnter_UnknownRoom_TreatedAsClosed(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	flags := NewFlagCache() // never primed
	s := newTestSession(store, flags, 7)

	req.NoError(s.ctrl.Enter(context.Background(), DiscoSpec))

	req.Equal([]Notice{NoticeRoomClosed}, s.notifier.all())
	req.Nil(s.tracker.CurrentRoom())
}

func TestEnterLeave_RestoresMapPosition(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	flags := NewFlagCache()
	flags.Set(ArcadeSpec.Ref.Key(), true)
	s := newTestSession(store, flags, 7)

	// Given an avatar roaming the map
	mapPos := model.Vec3{X: 42, Y: 0, Z: -13}
	s.tracker.MoveTo(mapPos, 1.2)

	// When entering the arcade
	req.NoError(s.ctrl.Enter(context.Background(), ArcadeSpec))

	// Then the avatar stands at the spawn point, attributed to the room
	p := s.tracker.Snapshot()
	req.NotNil(p.RoomKey)
	req.Equal(ArcadeSpec.Ref.Key(), *p.RoomKey)
	req.Equal(ArcadeSpec.Spawn, p.Position)
	req.Equal(ArcadeSpec.SpawnRotation, p.Rotation)
	req.Equal([]string{"arcade"}, s.recorder.entered)
	req.Equal([]string{"arcade"}, s.voice.labels)

	// When leaving again
	req.NoError(s.ctrl.Leave(context.Background()))

	// Then the exact map position and rotation are restored
	p = s.tracker.Snapshot()
	req.Nil(p.RoomKey)
	req.Equal(mapPos, p.Position)
	req.Equal(1.2, p.Rotation)
	req.Equal([]string{"arcade"}, s.recorder.left)
	req.Equal("", s.voice.labels[len(s.voice.labels)-1])

	// And the store mirrors the tracker
	req.Equal(p, store.presences[7])
}

func TestLeave_Idempotent(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	flags := NewFlagCache()
	flags.Set(StadiumSpec.Ref.Key(), true)
	s := newTestSession(store, flags, 7)

	req.NoError(s.ctrl.Enter(context.Background(), StadiumSpec))
	req.NoError(s.ctrl.Leave(context.Background()))
	after := s.tracker.Snapshot()
	writes := store.presenceWrites

	// When leaving a second time
	req.NoError(s.ctrl.Leave(context.Background()))

	// Then nothing changed at all
	second := s.tracker.Snapshot()
	second.UpdatedAt = after.UpdatedAt
	req.Equal(after, second)
	req.Equal(writes, store.presenceWrites)
	req.Equal([]string{"stadium"}, s.recorder.left)
}

func TestEnterCinema_RechecksStoreFlag(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	flags := NewFlagCache()
	spec := CinemaSpec(2)
	// The local cache is stale: it still believes the room is open,
	// but the store already holds the closed flag.
	flags.Set(spec.Ref.Key(), true)
	s := newTestSession(store, flags, 7)

	req.NoError(s.ctrl.Enter(context.Background(), spec))

	// The authoritative re-check wins over the cache.
	req.Equal([]Notice{NoticeRoomClosed}, s.notifier.all())
	req.Nil(s.tracker.CurrentRoom())
}

func TestClaimSeat_TwoUsersGetAdjacentSeats(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	store.flags["CINEMA:2"] = true
	store.addSeats(2, 4, 5) // room 2: 4 rows of 5
	flags := NewFlagCache()
	spec := CinemaSpec(2)

	a := newTestSession(store, flags, 1)
	b := newTestSession(store, flags, 2)
	ctx := context.Background()

	// Given both users inside cinema 2
	req.NoError(a.ctrl.Enter(ctx, spec))
	req.NoError(b.ctrl.Enter(ctx, spec))

	// When both auto-claim a seat
	seatA, err := a.ctrl.ClaimSeat(ctx)
	req.NoError(err)
	seatB, err := b.ctrl.ClaimSeat(ctx)
	req.NoError(err)

	// Then they hold row 1 seats 1 and 2
	req.Equal(uint32(1), seatA.RowNumber)
	req.Equal(uint32(1), seatA.SeatNumber)
	req.Equal(uint32(1), seatB.RowNumber)
	req.Equal(uint32(2), seatB.SeatNumber)
	store.requireOccupancyInvariant(t)

	// When A leaves
	req.NoError(a.ctrl.Leave(ctx))

	// Then A's seat is free again and B's untouched
	req.True(store.seat(2, 1, 1).Free())
	left := store.seat(2, 1, 2)
	req.NotNil(left.OccupiedBy)
	req.Equal(uint64(2), *left.OccupiedBy)
	store.requireOccupancyInvariant(t)
}

func TestClaimSeat_LostRace_MovesToNextSeat(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	store.flags["CINEMA:2"] = true
	store.addSeats(2, 1, 3)
	flags := NewFlagCache()
	s := newTestSession(store, flags, 1)
	ctx := context.Background()
	req.NoError(s.ctrl.Enter(ctx, CinemaSpec(2)))

	// A competing user snatches the observed seat right before the
	// conditional write lands.
	raced := false
	store.onClaim = func(seatID uint64) {
		if !raced {
			raced = true
			store.forceClaim(seatID, 99)
		}
	}

	seat, err := s.ctrl.ClaimSeat(ctx)

	// The claim falls through to the next free seat.
	req.NoError(err)
	req.Equal(uint32(1), seat.RowNumber)
	req.Equal(uint32(2), seat.SeatNumber)
	store.requireOccupancyInvariant(t)
}

func TestClaimSeat_FullRoom(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	store.flags["CINEMA:3"] = true
	store.addSeats(3, 1, 1)
	store.forceClaim(1, 99)
	flags := NewFlagCache()
	s := newTestSession(store, flags, 1)
	ctx := context.Background()
	req.NoError(s.ctrl.Enter(ctx, CinemaSpec(3)))

	seat, err := s.ctrl.ClaimSeat(ctx)

	req.ErrorIs(err, ErrNoFreeSeat)
	req.Nil(seat)
	req.Contains(s.notifier.all(), NoticeNoSeatAvailable)
}

func TestClaimSeat_OutsideCinema(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	flags := NewFlagCache()
	flags.Set(DiscoSpec.Ref.Key(), true)
	s := newTestSession(store, flags, 1)
	ctx := context.Background()

	// On the map
	_, err := s.ctrl.ClaimSeat(ctx)
	req.ErrorIs(err, ErrNotInCinema)

	// Inside a seatless room
	req.NoError(s.ctrl.Enter(ctx, DiscoSpec))
	_, err = s.ctrl.ClaimSeat(ctx)
	req.ErrorIs(err, ErrNotInCinema)
}

func TestEnter_SwitchingRooms_ReleasesSeatAndKeepsSavedPosition(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	store.flags["CINEMA:2"] = true
	store.addSeats(2, 1, 2)
	flags := NewFlagCache()
	flags.Set(DiscoSpec.Ref.Key(), true)
	s := newTestSession(store, flags, 1)
	ctx := context.Background()

	mapPos := model.Vec3{X: -5, Y: 0, Z: 9}
	s.tracker.MoveTo(mapPos, 0)

	// Given a seated cinema visitor
	req.NoError(s.ctrl.Enter(ctx, CinemaSpec(2)))
	_, err := s.ctrl.ClaimSeat(ctx)
	req.NoError(err)

	// When teleporting straight into the disco
	req.NoError(s.ctrl.Enter(ctx, DiscoSpec))

	// Then the cinema seat did not survive the transition
	req.True(store.seat(2, 1, 1).Free())
	req.Nil(s.tracker.Seat())
	store.requireOccupancyInvariant(t)

	// And leaving the disco still restores the original map position
	req.NoError(s.ctrl.Leave(ctx))
	req.Equal(mapPos, s.tracker.Snapshot().Position)
}

func TestPresence_RoomKeySetExactlyWhileInside(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	flags := NewFlagCache()
	flags.Set(ArcadeSpec.Ref.Key(), true)
	flags.Set(DiscoSpec.Ref.Key(), true)
	s := newTestSession(store, flags, 1)
	ctx := context.Background()

	req.Nil(s.tracker.Snapshot().RoomKey)
	req.Nil(s.tracker.CurrentRoom())

	req.NoError(s.ctrl.Enter(ctx, ArcadeSpec))
	req.NotNil(s.tracker.Snapshot().RoomKey)
	req.NotNil(s.tracker.CurrentRoom())

	req.NoError(s.ctrl.Enter(ctx, DiscoSpec))
	p := s.tracker.Snapshot()
	req.NotNil(p.RoomKey)
	req.Equal(DiscoSpec.Ref.Key(), *p.RoomKey)

	req.NoError(s.ctrl.Leave(ctx))
	req.Nil(s.tracker.Snapshot().RoomKey)
	req.Nil(s.tracker.CurrentRoom())
}
