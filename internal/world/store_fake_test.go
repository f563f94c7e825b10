package world

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-world/internal/model"
)

// memStore is an in-memory Store used by the package tests.  It keeps
// the same occupancy semantics as the MySQL layer: claims are
// conditional writes and occupied_by/occupied_at always change
// together.
type memStore struct {
	mu             sync.Mutex
	flags          map[string]bool
	seats          []model.Seat
	presences      map[uint64]model.Presence
	presenceWrites int
	// onClaim runs before each claim attempt; tests use it to inject
	// a competing claimer winning the race.
	onClaim func(seatID uint64)
}

func newMemStore() *memStore {
	return &memStore{
		flags:     make(map[string]bool),
		presences: make(map[uint64]model.Presence),
	}
}

func (s *memStore) addSeats(roomID uint64, rows, perRow uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for r := uint32(1); r <= rows; r++ {
		for n := uint32(1); n <= perRow; n++ {
			s.seats = append(s.seats, model.Seat{
				ID:         uint64(len(s.seats) + 1),
				RoomID:     roomID,
				RowNumber:  r,
				SeatNumber: n,
			})
		}
	}
}

func (s *memStore) RoomFlags(context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) RoomOpen(_ context.Context, roomKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[roomKey], nil
}

func (s *memStore) FirstFreeSeat(_ context.Context, roomID uint64) (*model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	free := make([]model.Seat, 0)
	for _, seat := range s.seats {
		if seat.RoomID == roomID && seat.Free() {
			free = append(free, seat)
		}
	}
	if len(free) == 0 {
		return nil, nil
	}
	sort.Slice(free, func(i, j int) bool {
		if free[i].RowNumber != free[j].RowNumber {
			return free[i].RowNumber < free[j].RowNumber
		}
		return free[i].SeatNumber < free[j].SeatNumber
	})
	seat := free[0]
	return &seat, nil
}

func (s *memStore) ClaimSeat(_ context.Context, seatID, userID uint64) error {
	if s.onClaim != nil {
		s.onClaim(seatID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.seats {
		if s.seats[i].ID != seatID {
			continue
		}
		if !s.seats[i].Free() {
			return ErrSeatTaken
		}
		now := time.Now().UTC()
		s.seats[i].OccupiedBy = &userID
		s.seats[i].OccupiedAt = &now
		return nil
	}
	return ErrSeatTaken
}

func (s *memStore) ReleaseSeats(_ context.Context, roomID, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.seats {
		if s.seats[i].RoomID == roomID && s.seats[i].OccupiedBy != nil && *s.seats[i].OccupiedBy == userID {
			s.seats[i].OccupiedBy = nil
			s.seats[i].OccupiedAt = nil
		}
	}
	return nil
}

func (s *memStore) WritePresence(_ context.Context, p model.Presence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presences[p.UserID] = p
	s.presenceWrites++
	return nil
}

// forceClaim occupies a seat on behalf of a competing user, bypassing
// the controller.
func (s *memStore) forceClaim(seatID, userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.seats {
		if s.seats[i].ID == seatID {
			now := time.Now().UTC()
			s.seats[i].OccupiedBy = &userID
			s.seats[i].OccupiedAt = &now
			return
		}
	}
}

func (s *memStore) seat(roomID uint64, row, number uint32) model.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seat := range s.seats {
		if seat.RoomID == roomID && seat.RowNumber == row && seat.SeatNumber == number {
			return seat
		}
	}
	return model.Seat{}
}

// requireOccupancyInvariant asserts that for every seat occupied_by
// and occupied_at are either both set or both clear.
func (s *memStore) requireOccupancyInvariant(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seat := range s.seats {
		require.Equal(t, seat.OccupiedBy == nil, seat.OccupiedAt == nil,
			"seat %d breaks the occupancy invariant", seat.ID)
	}
}

// Hook fakes recording what the controller fired.

type fakeNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *fakeNotifier) Notify(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *fakeNotifier) all() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice{}, n.notices...)
}

type fakeRecorder struct {
	mu      sync.Mutex
	entered []string
	left    []string
}

func (r *fakeRecorder) RoomEntered(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entered = append(r.entered, label)
}

func (r *fakeRecorder) RoomLeft(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.left = append(r.left, label)
}

type fakeVoice struct {
	mu     sync.Mutex
	labels []string
}

func (v *fakeVoice) Rescope(_ context.Context, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.labels = append(v.labels, label)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testSession bundles a controller with its fakes for one user.
type testSession struct {
	tracker  *Tracker
	ctrl     *Controller
	notifier *fakeNotifier
	recorder *fakeRecorder
	voice    *fakeVoice
}

func newTestSession(store Store, flags *FlagCache, userID uint64) *testSession {
	tracker := NewTracker(userID, model.Vec3{X: 1, Y: 0, Z: 2}, 0.5)
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	voice := &fakeVoice{}
	ctrl := NewController(store, tracker, flags, testLogger(),
		WithNotifier(notifier),
		WithRecorder(recorder),
		WithVoice(voice),
	)
	return &testSession{tracker: tracker, ctrl: ctrl, notifier: notifier, recorder: recorder, voice: voice}
}
