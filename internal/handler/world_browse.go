package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/iliyamo/cinema-world/internal/model"
	"github.com/iliyamo/cinema-world/internal/repository"
	"github.com/iliyamo/cinema-world/internal/world"
)

// WorldHandler exposes the public lobby endpoints: room listing with
// open flags, screen state for cinema rooms and seat occupancy maps.
// No authentication is required; these power the world clients' lobby
// and auditorium views.
type WorldHandler struct {
	Rooms   *repository.RoomRepo
	Seats   *repository.SeatRepo
	SyncCfg world.DriverConfig
	now     func() time.Time
}

// NewWorldHandler constructs the handler and panics on nil
// repositories.  The driver config is echoed to clients so every
// playback loop runs with the server-configured tuning.
func NewWorldHandler(rooms *repository.RoomRepo, seats *repository.SeatRepo, syncCfg world.DriverConfig) *WorldHandler {
	if rooms == nil || seats == nil {
		panic("nil repository passed to NewWorldHandler")
	}
	if syncCfg.ResyncInterval <= 0 {
		syncCfg = world.DefaultDriverConfig()
	}
	return &WorldHandler{Rooms: rooms, Seats: seats, SyncCfg: syncCfg, now: time.Now}
}

type roomSummary struct {
	ID      uint64  `json:"id"`
	RoomKey string  `json:"room_key"`
	Kind    string  `json:"kind"`
	Name    string  `json:"name"`
	Open    bool    `json:"open"`
	Theme   *string `json:"theme,omitempty"`
}

// GetRooms handles GET /v1/rooms, the lobby listing.
func (h *WorldHandler) GetRooms(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := lo.Map(rooms, func(r model.Room, _ int) roomSummary {
		return roomSummary{
			ID:      r.ID,
			RoomKey: r.RoomKey,
			Kind:    r.Kind,
			Name:    r.Name,
			Open:    r.IsOpen,
			Theme:   r.Theme,
		}
	})
	return c.JSON(http.StatusOK, out)
}

// GetScreen handles GET /v1/rooms/:id/screen.  It evaluates the
// screen state from the room's schedule against the wall clock, the
// same computation every client performs on its render tick.
func (h *WorldHandler) GetScreen(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	show := world.ShowtimeFromRoom(*room)
	now := h.now()
	state := show.StateAt(now, 0)
	resp := echo.Map{
		"room_key": room.RoomKey,
		"state":    state,
	}
	switch state {
	case world.ScreenWaiting:
		resp["starts_in_seconds"] = int64(room.StartsAt.Sub(now).Seconds())
	case world.ScreenPlaying:
		resp["embed_url"] = room.EmbedURL
		resp["offset_seconds"] = int64(show.Offset(now).Seconds())
		resp["sync"] = echo.Map{
			"resync_interval_ms": h.SyncCfg.ResyncInterval.Milliseconds(),
			"drift_threshold_ms": h.SyncCfg.DriftThreshold.Milliseconds(),
			"health_interval_ms": h.SyncCfg.HealthInterval.Milliseconds(),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type seatView struct {
	ID         uint64  `json:"id"`
	RowNumber  uint32  `json:"row"`
	SeatNumber uint32  `json:"seat"`
	Occupied   bool    `json:"occupied"`
	OccupiedBy *uint64 `json:"occupied_by,omitempty"`
}

// GetSeats handles GET /v1/rooms/:id/seats, the occupancy map of a
// cinema room ordered by row then seat number.
func (h *WorldHandler) GetSeats(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	seats, err := h.Seats.GetByRoom(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	out := lo.Map(seats, func(s model.Seat, _ int) seatView {
		return seatView{
			ID:         s.ID,
			RowNumber:  s.RowNumber,
			SeatNumber: s.SeatNumber,
			Occupied:   !s.Free(),
			OccupiedBy: s.OccupiedBy,
		}
	})
	return c.JSON(http.StatusOK, out)
}
