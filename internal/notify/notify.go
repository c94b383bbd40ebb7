// Package notify delivers desktop notifications behind the process-wide
// mute and focus-assist gates. It uses github.com/gen2brain/beeep for
// cross-platform notification support.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/breaktray/breaktray/internal/events"
	"github.com/breaktray/breaktray/internal/logging"
)

// SendFunc performs the OS-level delivery of a notification.
type SendFunc func(title, message string) error

// ProbeFunc reports whether the OS is currently suppressing notifications.
type ProbeFunc func() bool

// Dispatcher gates notification delivery on the process-wide toggles and,
// optionally, the OS do-not-disturb signal. The toggles are read at delivery
// time, never cached by callers.
type Dispatcher struct {
	mu                sync.RWMutex
	muted             bool
	followFocusAssist bool

	probe  ProbeFunc
	send   SendFunc
	logger *logging.Logger
	bus    *events.Bus
}

// Config holds the initial dispatcher toggles.
type Config struct {
	// Muted suppresses all notification delivery.
	Muted bool

	// FollowFocusAssist additionally suppresses delivery while the OS
	// focus-assist/DND signal is active.
	FollowFocusAssist bool
}

// NewDispatcher creates a dispatcher. probe may be nil, in which case the
// focus-assist gate never suppresses. bus may be nil.
func NewDispatcher(cfg Config, probe ProbeFunc, logger *logging.Logger, bus *events.Bus) *Dispatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	if probe == nil {
		probe = func() bool { return false }
	}
	return &Dispatcher{
		muted:             cfg.Muted,
		followFocusAssist: cfg.FollowFocusAssist,
		probe:             probe,
		send:              defaultSend,
		logger:            logger,
		bus:               bus,
	}
}

// defaultSend delivers through beeep, which maps to toast notifications on
// Windows, NSUserNotificationCenter on macOS and D-Bus on Linux.
func defaultSend(title, message string) error {
	return beeep.Notify(title, message, "")
}

// SetSend replaces the delivery mechanism. Used by tests.
func (d *Dispatcher) SetSend(send SendFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.send = send
}

// SetMuted sets the mute toggle.
func (d *Dispatcher) SetMuted(muted bool) {
	d.mu.Lock()
	d.muted = muted
	follow := d.followFocusAssist
	d.mu.Unlock()

	if d.bus != nil {
		d.bus.PublishSettings(muted, follow)
	}
}

// Muted returns the mute toggle.
func (d *Dispatcher) Muted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.muted
}

// SetFollowFocusAssist sets the focus-assist toggle.
func (d *Dispatcher) SetFollowFocusAssist(follow bool) {
	d.mu.Lock()
	d.followFocusAssist = follow
	muted := d.muted
	d.mu.Unlock()

	if d.bus != nil {
		d.bus.PublishSettings(muted, follow)
	}
}

// FollowFocusAssist returns the focus-assist toggle.
func (d *Dispatcher) FollowFocusAssist() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.followFocusAssist
}

// ShowToast forwards (title, message) to the OS delivery mechanism unless a
// gate suppresses it. The mute gate always wins; the focus-assist gate is
// only consulted when enabled, and the DND signal is polled at delivery
// time. Delivery errors are logged and discarded, never surfaced.
func (d *Dispatcher) ShowToast(title, message string) {
	d.mu.RLock()
	muted := d.muted
	follow := d.followFocusAssist
	probe := d.probe
	send := d.send
	d.mu.RUnlock()

	if muted {
		d.logger.Debug().Str("title", title).Msg("Notification suppressed: muted")
		return
	}
	if follow && probe() {
		d.logger.Debug().Str("title", title).Msg("Notification suppressed: focus assist active")
		return
	}

	if err := send(title, truncate(message, 200)); err != nil {
		d.logger.Warn().Err(err).Str("title", title).Msg("Failed to send notification")
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
