// Package reminder implements the per-reminder scheduling loop and the
// in-memory registry of active reminders.
package reminder

import (
	"sync"
	"time"

	"github.com/breaktray/breaktray/internal/events"
	"github.com/breaktray/breaktray/internal/logging"
)

// Title is the notification title used for every reminder fire.
const Title = "Break Reminder"

// DeliverFunc hands a (title, message) pair to the notification dispatcher.
// Delivery is fire-and-forget; failures are handled behind the dispatcher
// and never reach the reminder loop.
type DeliverFunc func(title, message string)

const (
	defaultFloor = 60 * time.Second // minimum wait per cycle, even for interval_minutes < 1
	defaultTick  = 1 * time.Second  // wait-loop step so edits and stops apply promptly
	defaultJoin  = 1 * time.Second  // bounded wait for loop exit on terminate
)

// Reminder is a single periodic notification timer. It owns a background
// wait loop started by Start and stopped by Terminate; all mutable fields
// are mutex-guarded so control-surface writes and loop reads stay
// consistent.
type Reminder struct {
	id string

	mu              sync.RWMutex
	message         string
	intervalMinutes int
	paused          bool
	snoozedUntil    time.Time

	deliver DeliverFunc
	logger  *logging.Logger
	bus     *events.Bus

	startMu  sync.Mutex
	started  bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// Timing seams, overridden in tests.
	floor time.Duration
	tick  time.Duration
	join  time.Duration
	unit  time.Duration // duration of one interval minute
	now   func() time.Time
}

// Snapshot is a consistent read of a reminder's state for presentation.
type Snapshot struct {
	ID              string
	Message         string
	IntervalMinutes int
	Paused          bool
	SnoozedUntil    time.Time
}

// Status describes the snapshot for display: "paused", "snoozed" or "running".
func (s Snapshot) Status(now time.Time) string {
	if s.Paused {
		return "paused"
	}
	if !s.SnoozedUntil.IsZero() && now.Before(s.SnoozedUntil) {
		return "snoozed"
	}
	return "running"
}

// New creates a reminder. intervalMinutes below 1 is clamped to 1; the wait
// loop additionally floors each cycle at 60 seconds. The loop does not run
// until Start is called.
func New(id, message string, intervalMinutes int, deliver DeliverFunc, logger *logging.Logger, bus *events.Bus) *Reminder {
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reminder{
		id:              id,
		message:         message,
		intervalMinutes: intervalMinutes,
		deliver:         deliver,
		logger:          logger,
		bus:             bus,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
		floor:           defaultFloor,
		tick:            defaultTick,
		join:            defaultJoin,
		unit:            time.Minute,
		now:             time.Now,
	}
}

// ID returns the reminder's identifier.
func (r *Reminder) ID() string {
	return r.id
}

// Start launches the background wait loop. Idempotent: starting a running
// or terminated reminder is a no-op. A terminated reminder is not reusable.
func (r *Reminder) Start() {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	if r.started || r.stopped() {
		return
	}
	r.started = true
	go r.run()
}

func (r *Reminder) stopped() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

// run waits one interval per cycle, then fires unless suppressed.
func (r *Reminder) run() {
	defer close(r.done)

	r.logger.Debug().Str("id", r.id).Msg("Reminder loop started")
	for {
		if !r.wait() {
			r.logger.Debug().Str("id", r.id).Msg("Reminder loop stopped")
			return
		}
		r.fire(true)
	}
}

// wait blocks for the current wait period, stepping in small ticks so that
// interval edits and stop requests take effect promptly. Returns false when
// the reminder was terminated mid-wait.
func (r *Reminder) wait() bool {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		// Re-read each step: edits apply without restarting the loop.
		if elapsed >= r.waitPeriod() {
			return true
		}
		select {
		case <-r.stop:
			return false
		case <-ticker.C:
			elapsed += r.tick
		}
	}
}

// waitPeriod returns the configured interval, floored at one minute.
func (r *Reminder) waitPeriod() time.Duration {
	r.mu.RLock()
	minutes := r.intervalMinutes
	r.mu.RUnlock()

	period := time.Duration(minutes) * r.unit
	if period < r.floor {
		return r.floor
	}
	return period
}

// fire delivers the notification unless the reminder is paused or inside an
// active snooze window. The snooze window suppresses every attempt until
// the timestamp passes; it is consumed by time alone, never cleared by a
// fire. cycle distinguishes background fires from TriggerNow for logging.
func (r *Reminder) fire(cycle bool) {
	now := r.now()

	r.mu.RLock()
	message := r.message
	paused := r.paused
	snoozedUntil := r.snoozedUntil
	r.mu.RUnlock()

	if !snoozedUntil.IsZero() && now.Before(snoozedUntil) {
		r.logger.Debug().Str("id", r.id).Time("snoozed_until", snoozedUntil).Msg("Fire suppressed: snoozed")
		if r.bus != nil {
			r.bus.PublishSkip(r.id, message, events.SkipSnoozed)
		}
		return
	}
	if paused {
		r.logger.Debug().Str("id", r.id).Msg("Fire suppressed: paused")
		if r.bus != nil {
			r.bus.PublishSkip(r.id, message, events.SkipPaused)
		}
		return
	}

	r.deliver(Title, message)
	r.logger.Debug().Str("id", r.id).Bool("cycle", cycle).Msg("Reminder fired")
	if r.bus != nil {
		r.bus.PublishReminder(events.EventReminderFired, r.id, message, 0, false)
	}
}

// TriggerNow fires the reminder on demand, outside the wait cycle. It does
// nothing while paused or snoozed, and never perturbs the background
// cycle's timing.
func (r *Reminder) TriggerNow() {
	r.fire(false)
}

// Pause suppresses fires until Resume. The wait loop keeps running.
func (r *Reminder) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// Resume clears the paused flag. It does not force an immediate fire.
func (r *Reminder) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
}

// Paused reports the paused flag.
func (r *Reminder) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// Snooze suppresses every fire attempt, background or on-demand, for the
// given number of minutes from now. Values below 1 clamp to 1. Snoozing
// again overwrites the window.
func (r *Reminder) Snooze(minutes int) {
	if minutes < 1 {
		minutes = 1
	}
	until := r.now().Add(time.Duration(minutes) * r.unit)

	r.mu.Lock()
	r.snoozedUntil = until
	r.mu.Unlock()

	r.logger.Debug().Str("id", r.id).Time("until", until).Msg("Reminder snoozed")
}

// ClearSnooze unsets the snooze window.
func (r *Reminder) ClearSnooze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snoozedUntil = time.Time{}
}

// SnoozedUntil returns the snooze deadline, zero when unset.
func (r *Reminder) SnoozedUntil() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snoozedUntil
}

// SetMessage updates the message. Takes effect on the next fire.
func (r *Reminder) SetMessage(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = message
}

// SetInterval updates the interval, clamped to a 1-minute minimum. The wait
// loop re-reads the interval every step, so the edit applies without a
// restart.
func (r *Reminder) SetInterval(minutes int) {
	if minutes < 1 {
		minutes = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intervalMinutes = minutes
}

// Snapshot returns a consistent copy of the reminder's state.
func (r *Reminder) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		ID:              r.id,
		Message:         r.message,
		IntervalMinutes: r.intervalMinutes,
		Paused:          r.paused,
		SnoozedUntil:    r.snoozedUntil,
	}
}

// Terminate signals the loop to exit and waits up to the join bound for it
// to acknowledge. Always returns; the join is best effort. Safe to call
// more than once.
func (r *Reminder) Terminate() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})

	r.startMu.Lock()
	started := r.started
	r.startMu.Unlock()
	if !started {
		return
	}

	select {
	case <-r.done:
	case <-time.After(r.join):
		r.logger.Warn().Str("id", r.id).Msg("Reminder loop did not stop within join bound")
	}
}
