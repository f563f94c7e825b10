package world

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/iliyamo/cinema-world/internal/model"
)

// MapSpawn is where freshly connected avatars appear on the open map.
var MapSpawn = model.Vec3{X: 0, Y: 0, Z: 0}

// Session bundles the per-connection state: the presence tracker and
// the lifecycle controller operating on it.  A playback driver is
// attached while the session is inside a cinema room.
type Session struct {
	ID         uuid.UUID
	Tracker    *Tracker
	Controller *Controller
}

// Manager is the registry of live sessions on one gateway instance.
// It owns the shared flag cache and is the fan-out target for
// flag-change notifications coming off the broker: closed→open only
// refreshes the cache, open→closed additionally evicts every session
// currently inside the room.
type Manager struct {
	mu       sync.RWMutex
	store    Store
	flags    *FlagCache
	sessions map[uint64]*Session // keyed by user id
	log      *slog.Logger
	opts     []ControllerOption
}

// NewManager creates a session manager over the given store.  The
// controller options are applied to every session's controller; use
// them to wire shared camera/voice/engagement implementations.
func NewManager(store Store, flags *FlagCache, log *slog.Logger, opts ...ControllerOption) *Manager {
	return &Manager{
		store:    store,
		flags:    flags,
		sessions: make(map[uint64]*Session),
		log:      log,
		opts:     opts,
	}
}

// PrimeFlags loads the full flag snapshot from the store into the
// cache.  Called once at startup before the consumer starts feeding
// individual transitions.
func (m *Manager) PrimeFlags(ctx context.Context) error {
	flags, err := m.store.RoomFlags(ctx)
	if err != nil {
		return err
	}
	m.flags.Prime(flags)
	return nil
}

// Connect registers a session for a user, placing the avatar at the
// map spawn and writing the initial presence row through.  Connecting
// twice for the same user returns the existing session.
func (m *Manager) Connect(ctx context.Context, userID uint64, opts ...ControllerOption) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	tracker := NewTracker(userID, MapSpawn, 0)
	all := append(append([]ControllerOption{}, m.opts...), opts...)
	s := &Session{
		ID:         uuid.New(),
		Tracker:    tracker,
		Controller: NewController(m.store, tracker, m.flags, m.log, all...),
	}
	m.sessions[userID] = s
	if err := m.store.WritePresence(ctx, tracker.Snapshot()); err != nil {
		m.log.Error("initial presence write failed", "user_id", userID, "err", err)
	}
	return s, nil
}

// Disconnect leaves any occupied room (releasing the seat) and drops
// the session.  Unknown users are a no-op.
func (m *Manager) Disconnect(ctx context.Context, userID uint64) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := s.Controller.Leave(ctx); err != nil {
		m.log.Error("leave on disconnect failed", "user_id", userID, "err", err)
	}
}

// Session returns the live session for a user, if any.
func (m *Manager) Session(userID uint64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// HandleFlagChange applies one open/closed transition.  The occupancy
// comparison reads each tracker live at delivery time: a session that
// already left the room between the staff action and the notification
// is not evicted again.
func (m *Manager) HandleFlagChange(ctx context.Context, ch FlagChange) error {
	m.flags.Set(ch.RoomKey, ch.Open)
	if ch.Open {
		return nil
	}

	m.mu.RLock()
	affected := lo.Filter(lo.Values(m.sessions), func(s *Session, _ int) bool {
		cur := s.Tracker.CurrentRoom()
		return cur != nil && cur.Ref.Key() == ch.RoomKey
	})
	m.mu.RUnlock()

	for _, s := range affected {
		if err := s.Controller.evict(ctx); err != nil {
			m.log.Error("eviction failed", "room", ch.RoomKey, "user_id", s.Tracker.UserID(), "err", err)
		}
	}
	return nil
}
