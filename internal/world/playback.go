package world

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/cinema-world/internal/model"
)

// ScreenState is what a cinema screen shows at a given instant.
// Exactly one state is active per evaluation, derived solely from the
// room's schedule and embed URL against the wall clock.
type ScreenState string

const (
	// ScreenNoSession means no media URL is configured at all.
	ScreenNoSession ScreenState = "NO_SESSION"
	// ScreenWaiting means the screening has not started yet; clients
	// show a countdown and the poster.
	ScreenWaiting ScreenState = "WAITING"
	// ScreenPlaying means the screening is in progress.
	ScreenPlaying ScreenState = "PLAYING"
	// ScreenEnded means the screening is over.
	ScreenEnded ScreenState = "ENDED"
)

// ErrAutoplayBlocked is returned by MediaPlayer.Play when the platform
// refuses playback before a user gesture.  The driver retries on the
// next gesture; it is never treated as fatal.
var ErrAutoplayBlocked = errors.New("autoplay blocked until user gesture")

// MediaPlayer abstracts the client's media element.  Duration returns
// zero while the media's total length is unknown.
type MediaPlayer interface {
	Play() error
	Pause()
	Seek(offset time.Duration)
	Position() time.Duration
	Paused() bool
	Duration() time.Duration
}

// Showtime is the schedule of one cinema screen, extracted from the
// room record.
type Showtime struct {
	EmbedURL *string
	StartsAt *time.Time
	EndsAt   *time.Time
}

// ShowtimeFromRoom builds a Showtime from a room row.
func ShowtimeFromRoom(r model.Room) Showtime {
	return Showtime{EmbedURL: r.EmbedURL, StartsAt: r.StartsAt, EndsAt: r.EndsAt}
}

// StateAt evaluates the screen state at the given instant.  The
// mediaDuration parameter lets callers infer the end when no schedule
// end is configured; pass zero when unknown.
func (s Showtime) StateAt(now time.Time, mediaDuration time.Duration) ScreenState {
	if s.EmbedURL == nil || *s.EmbedURL == "" || s.StartsAt == nil {
		return ScreenNoSession
	}
	if now.Before(*s.StartsAt) {
		return ScreenWaiting
	}
	if s.EndsAt != nil && !now.Before(*s.EndsAt) {
		return ScreenEnded
	}
	if s.EndsAt == nil && mediaDuration > 0 && now.Sub(*s.StartsAt) >= mediaDuration {
		return ScreenEnded
	}
	return ScreenPlaying
}

// Offset returns the wall-clock-derived playback position, clamped to
// zero before the scheduled start.
func (s Showtime) Offset(now time.Time) time.Duration {
	if s.StartsAt == nil {
		return 0
	}
	elapsed := now.Sub(*s.StartsAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// DriverConfig tunes the playback driver's loops.
type DriverConfig struct {
	ResyncInterval time.Duration // how often drift is checked
	DriftThreshold time.Duration // drift beyond this forces a seek
	HealthInterval time.Duration // how often stalled playback is repaired
}

// DefaultDriverConfig matches the intervals the clients shipped with.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		ResyncInterval: 10 * time.Second,
		DriftThreshold: 5 * time.Second,
		HealthInterval: 5 * time.Second,
	}
}

// Driver keeps one client's media element in lockstep with the wall
// clock.  The expected position is always derived from the scheduled
// start, never from peer consensus: every client computes the same
// offset independently and drifts are corrected by force-seeking.
type Driver struct {
	player MediaPlayer
	show   Showtime
	cfg    DriverConfig
	log    *slog.Logger
	now    func() time.Time

	mu             sync.Mutex
	state          ScreenState
	pendingGesture bool
}

// NewDriver builds a driver for one screen.  The zero-value config is
// replaced with DefaultDriverConfig.
func NewDriver(player MediaPlayer, show Showtime, cfg DriverConfig, log *slog.Logger) *Driver {
	if cfg.ResyncInterval <= 0 {
		cfg = DefaultDriverConfig()
	}
	return &Driver{
		player: player,
		show:   show,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// State returns the current screen state.
func (d *Driver) State() ScreenState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Load evaluates the schedule and, when the screening is already in
// progress, seeks to the elapsed offset before starting playback so
// the viewer joins at the same frame as everyone else.
func (d *Driver) Load() ScreenState {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.state = d.show.StateAt(now, d.player.Duration())
	if d.state != ScreenPlaying {
		return d.state
	}

	offset := d.show.Offset(now)
	if dur := d.player.Duration(); dur > 0 && offset > dur {
		d.state = ScreenEnded
		return d.state
	}
	if offset > 0 {
		d.player.Seek(offset)
	}
	d.play()
	return d.state
}

// OnUserGesture retries a playback start that was blocked by autoplay
// policy.  The retry is one-shot; further gestures do nothing until
// playback blocks again.
func (d *Driver) OnUserGesture() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pendingGesture {
		return
	}
	d.pendingGesture = false
	d.play()
}

// Resync recomputes the expected position from the wall clock and
// force-seeks when the actual position has drifted past the threshold.
// It also advances the screen state across schedule boundaries.
func (d *Driver) Resync() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	next := d.show.StateAt(now, d.player.Duration())
	switch {
	case next == ScreenPlaying && d.state != ScreenPlaying:
		// Waiting countdown expired; start from the top.
		d.state = ScreenPlaying
		if off := d.show.Offset(now); off > 0 {
			d.player.Seek(off)
		}
		d.play()
		return
	case next == ScreenEnded && d.state != ScreenEnded:
		d.state = ScreenEnded
		d.player.Pause()
		return
	case next != ScreenPlaying:
		d.state = next
		return
	}

	expected := d.show.Offset(now)
	drift := d.player.Position() - expected
	if drift < 0 {
		drift = -drift
	}
	if drift > d.cfg.DriftThreshold {
		d.log.Info("correcting playback drift", "drift", drift, "expected", expected)
		d.player.Seek(expected)
	}
}

// RepairLiveness resumes playback that stalled or paused unexpectedly.
// This is a liveness repair only; correctness comes from Resync.
func (d *Driver) RepairLiveness() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != ScreenPlaying || !d.player.Paused() {
		return
	}
	d.play()
}

// Run drives the resync and health loops until the context ends.
func (d *Driver) Run(ctx context.Context) {
	resync := time.NewTicker(d.cfg.ResyncInterval)
	defer resync.Stop()
	health := time.NewTicker(d.cfg.HealthInterval)
	defer health.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-resync.C:
			d.Resync()
		case <-health.C:
			d.RepairLiveness()
		}
	}
}

// play starts the media element, downgrading an autoplay block to a
// pending gesture retry.  Callers hold d.mu.
func (d *Driver) play() {
	if err := d.player.Play(); err != nil {
		if errors.Is(err, ErrAutoplayBlocked) {
			d.pendingGesture = true
			return
		}
		d.log.Error("playback start failed", "err", err)
	}
}
