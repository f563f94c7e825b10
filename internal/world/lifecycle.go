package world

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iliyamo/cinema-world/internal/model"
)

// mapCameraOffset is the camera position relative to the avatar while
// roaming the open map.
var mapCameraOffset = model.Vec3{X: 0, Y: 8, Z: 18}

// DefaultClaimRetries bounds how many free seats a claim walks through
// when conditional writes keep losing to concurrent claimers.
const DefaultClaimRetries = 3

// Controller drives a single session's transitions between the open
// map and the shared rooms.  Enter and Leave are serialized by the
// session's own event sequencing; the controller assumes no concurrent
// calls for the same session, while seat claims remain genuinely racy
// across sessions and are settled by the store's conditional write.
type Controller struct {
	store    Store
	tracker  *Tracker
	flags    *FlagCache
	recorder EngagementRecorder
	voice    VoiceScoper
	camera   CameraRig
	notifier Notifier
	log      *slog.Logger
	retries  int
}

// NewController wires a controller for one session.  Nil hooks default
// to no-ops so tests and headless tools can wire only what they need.
func NewController(store Store, tracker *Tracker, flags *FlagCache, log *slog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:    store,
		tracker:  tracker,
		flags:    flags,
		recorder: NopRecorder{},
		voice:    NopVoice{},
		camera:   NopCamera{},
		notifier: NopNotifier{},
		log:      log,
		retries:  DefaultClaimRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ControllerOption customises controller wiring.
type ControllerOption func(*Controller)

func WithRecorder(r EngagementRecorder) ControllerOption {
	return func(c *Controller) { c.recorder = r }
}

func WithVoice(v VoiceScoper) ControllerOption {
	return func(c *Controller) { c.voice = v }
}

func WithCamera(cam CameraRig) ControllerOption {
	return func(c *Controller) { c.camera = cam }
}

func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

func WithClaimRetries(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.retries = n
		}
	}
}

// Enter moves the session into the given room.  A closed room is not
// an error: the user gets NoticeRoomClosed and nothing is mutated.
// Cinema entry re-validates the flag against the store; the other
// rooms trust the notification-fed cache.
func (c *Controller) Enter(ctx context.Context, spec RoomSpec) error {
	open, err := c.roomOpen(ctx, spec)
	if err != nil {
		return err
	}
	if !open {
		c.notifier.Notify(NoticeRoomClosed)
		return nil
	}

	userID := c.tracker.UserID()
	prev := c.tracker.CurrentRoom()

	// A seat held in another room must not survive the transition.
	// Stale holds were observed when users teleported between rooms
	// while seated, leaving the seat occupied forever.
	if seat := c.tracker.Seat(); seat != nil && seat.RoomID != spec.Ref.CinemaID {
		if err := c.store.ReleaseSeats(ctx, seat.RoomID, userID); err != nil {
			c.log.Error("release stale seat failed", "room_id", seat.RoomID, "user_id", userID, "err", err)
		}
		c.tracker.setSeat(nil)
	}
	if prev != nil {
		c.recorder.RoomLeft(prev.Label)
	}

	// Only a map position is worth restoring later; entering directly
	// from another room keeps the previously saved map position.
	c.tracker.enterRoom(spec, prev == nil)

	// Reset any seat row left over in the target room from a previous
	// session of the same user.
	if spec.Ref.IsCinema() {
		if err := c.store.ReleaseSeats(ctx, spec.Ref.CinemaID, userID); err != nil {
			c.log.Error("reset seats on entry failed", "room_id", spec.Ref.CinemaID, "user_id", userID, "err", err)
		}
	}

	c.writeThrough(ctx)
	c.placeCamera(spec.Spawn, spec.CameraOffset)
	c.voice.Rescope(ctx, spec.Label)
	c.recorder.RoomEntered(spec.Label)
	return nil
}

// Leave returns the session to the open map, releasing the held seat
// and restoring the saved map position.  Calling Leave while already
// on the map is a no-op.
func (c *Controller) Leave(ctx context.Context) error {
	spec := c.tracker.CurrentRoom()
	if spec == nil {
		return nil
	}
	userID := c.tracker.UserID()

	if seat := c.tracker.Seat(); seat != nil {
		if err := c.store.ReleaseSeats(ctx, seat.RoomID, userID); err != nil {
			c.log.Error("release seat on leave failed", "room_id", seat.RoomID, "user_id", userID, "err", err)
		}
		c.tracker.setSeat(nil)
	}

	c.tracker.leaveRoom()
	c.writeThrough(ctx)

	restored := c.tracker.Snapshot()
	c.placeCamera(restored.Position, mapCameraOffset)
	c.voice.Rescope(ctx, "")
	c.recorder.RoomLeft(spec.Label)
	return nil
}

// ClaimSeat auto-assigns the first free seat of the cinema room the
// session currently occupies.  Losing the conditional write to a
// concurrent claimer moves on to the next free seat, bounded by the
// retry budget.  A full auditorium surfaces NoticeNoSeatAvailable and
// ErrNoFreeSeat.
func (c *Controller) ClaimSeat(ctx context.Context) (*HeldSeat, error) {
	spec := c.tracker.CurrentRoom()
	if spec == nil || !spec.Ref.IsCinema() {
		return nil, ErrNotInCinema
	}
	userID := c.tracker.UserID()

	for attempt := 0; attempt < c.retries; attempt++ {
		seat, err := c.store.FirstFreeSeat(ctx, spec.Ref.CinemaID)
		if err != nil {
			return nil, err
		}
		if seat == nil {
			break
		}
		if err := c.store.ClaimSeat(ctx, seat.ID, userID); err != nil {
			if errors.Is(err, ErrSeatTaken) {
				continue
			}
			return nil, err
		}
		held := &HeldSeat{
			SeatID:     seat.ID,
			RoomID:     seat.RoomID,
			RowNumber:  seat.RowNumber,
			SeatNumber: seat.SeatNumber,
		}
		c.tracker.setSeat(held)
		return held, nil
	}
	c.notifier.Notify(NoticeNoSeatAvailable)
	return nil, ErrNoFreeSeat
}

// evict runs the voluntary leave path on behalf of a staff closure,
// surfacing the distinct closed-by-staff notice first.
func (c *Controller) evict(ctx context.Context) error {
	c.notifier.Notify(NoticeClosedByStaff)
	return c.Leave(ctx)
}

func (c *Controller) roomOpen(ctx context.Context, spec RoomSpec) (bool, error) {
	if !spec.Ref.IsCinema() {
		return c.flags.IsOpen(spec.Ref.Key()), nil
	}
	open, err := c.store.RoomOpen(ctx, spec.Ref.Key())
	if err != nil {
		c.log.Error("authoritative flag check failed", "room", spec.Ref.Key(), "err", err)
		return false, err
	}
	return open, nil
}

// writeThrough pushes the tracker's presence row to the store.  A
// failed write is logged and local state kept; the next successful
// write re-converges the store (accepted gap, no rollback).
func (c *Controller) writeThrough(ctx context.Context) {
	if err := c.store.WritePresence(ctx, c.tracker.Snapshot()); err != nil {
		c.log.Error("presence write-through failed", "user_id", c.tracker.UserID(), "err", err)
	}
}

func (c *Controller) placeCamera(target, offset model.Vec3) {
	c.camera.SetPosition(target.Add(offset))
	c.camera.SetTarget(target)
	c.camera.Update()
}
