package world

import (
	"context"

	"github.com/iliyamo/cinema-world/internal/model"
)

// Notice is a declarative, user-visible signal.  Notices are the only
// way precondition failures surface; they never abort the session.
type Notice string

const (
	// NoticeRoomClosed is shown when entry is refused because the
	// room's flag is closed.
	NoticeRoomClosed Notice = "room_closed"
	// NoticeClosedByStaff is shown when the user is evicted because a
	// staff member closed the room they were inside.  Deliberately
	// distinct from NoticeRoomClosed.
	NoticeClosedByStaff Notice = "room_closed_by_staff"
	// NoticeNoSeatAvailable is shown when a seat claim finds the
	// auditorium full.
	NoticeNoSeatAvailable Notice = "no_seat_available"
)

// Notifier delivers notices to the user's UI layer.
type Notifier interface {
	Notify(n Notice)
}

// EngagementRecorder receives fire-and-forget room transition
// callbacks.  Failures inside the recorder must never affect the
// transition itself, so the interface has no error returns.
type EngagementRecorder interface {
	RoomEntered(label string)
	RoomLeft(label string)
}

// VoiceScoper moves the user's voice connection between channels.
// The empty label scopes voice back to the open map.
type VoiceScoper interface {
	Rescope(ctx context.Context, label string)
}

// CameraRig repositions the viewpoint during room transitions.  Calls
// are synchronous side effects with no return value.
type CameraRig interface {
	SetTarget(p model.Vec3)
	SetPosition(p model.Vec3)
	Update()
}

// Nop implementations used as wiring defaults.

type NopNotifier struct{}

func (NopNotifier) Notify(Notice) {}

type NopRecorder struct{}

func (NopRecorder) RoomEntered(string) {}
func (NopRecorder) RoomLeft(string)    {}

type NopVoice struct{}

func (NopVoice) Rescope(context.Context, string) {}

type NopCamera struct{}

func (NopCamera) SetTarget(model.Vec3)   {}
func (NopCamera) SetPosition(model.Vec3) {}
func (NopCamera) Update()                {}
