package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-world/internal/queue"
	"github.com/iliyamo/cinema-world/internal/repository"
	queue_publisher "github.com/iliyamo/cinema-world/internal/service"
)

// StaffRoomHandler lets operators flip room open flags.  The flag
// write goes to the store first; the broker event is published after
// so consumers never observe a transition the store does not yet hold.
type StaffRoomHandler struct {
	Rooms *repository.RoomRepo
}

// NewStaffRoomHandler constructs the handler and panics on a nil
// repository.
func NewStaffRoomHandler(rooms *repository.RoomRepo) *StaffRoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewStaffRoomHandler")
	}
	return &StaffRoomHandler{Rooms: rooms}
}

type setFlagRequest struct {
	Open *bool `json:"open"`
}

// SetFlag handles PATCH /v1/staff/rooms/:id/flag.  Closing a room
// evicts its occupants on every gateway instance via the published
// flag-change event.
func (h *StaffRoomHandler) SetFlag(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req setFlagRequest
	if err := c.Bind(&req); err != nil || req.Open == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must contain open flag"})
	}
	staffID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	room, err := h.Rooms.SetOpen(c.Request().Context(), id, *req.Open)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	ev := queue.RoomFlagChangedEvent{
		RoomID:    room.ID,
		RoomKey:   room.RoomKey,
		Open:      room.IsOpen,
		ChangedBy: staffID,
		ChangedAt: time.Now().UTC().Format(time.RFC3339),
	}
	// Publish failures are logged inside the publisher; the flag is
	// already durable, consumers converge on their next cache prime.
	_ = queue_publisher.PublishRoomFlagChanged(c.Request().Context(), ev)

	return c.JSON(http.StatusOK, echo.Map{
		"id":       room.ID,
		"room_key": room.RoomKey,
		"open":     room.IsOpen,
	})
}

// ListRooms handles GET /v1/staff/rooms with full room records for the
// admin panel.
func (h *StaffRoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, rooms)
}
