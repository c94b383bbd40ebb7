package reminder

import (
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/breaktray/breaktray/internal/events"
	"github.com/breaktray/breaktray/internal/logging"
)

// Registry is the in-memory collection of active reminders, keyed by
// generated identifier. Every mapped reminder has a live wait loop; removal
// terminates the loop and deletes the entry under the same lock, so the two
// are atomic from the caller's perspective.
type Registry struct {
	mu        sync.RWMutex
	reminders map[string]*Reminder

	deliver DeliverFunc
	logger  *logging.Logger
	bus     *events.Bus
}

// NewRegistry creates an empty registry. deliver is bound to every reminder
// created through Add. bus may be nil; when set, the registry publishes a
// change event for every mutation so presentation layers can re-render.
func NewRegistry(deliver DeliverFunc, logger *logging.Logger, bus *events.Bus) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{
		reminders: make(map[string]*Reminder),
		deliver:   deliver,
		logger:    logger,
		bus:       bus,
	}
}

// newID generates a fresh unique identifier. ULIDs sort lexicographically
// by creation time, which gives List a stable display order for free.
func newID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Add creates a reminder, starts its wait loop and inserts it. Returns the
// generated identifier. intervalMinutes below 1 is clamped to 1; input
// validation beyond that is the caller's job.
func (g *Registry) Add(message string, intervalMinutes int) string {
	id := newID()
	r := New(id, message, intervalMinutes, g.deliver, g.logger, g.bus)
	r.Start()

	g.mu.Lock()
	g.reminders[id] = r
	g.mu.Unlock()

	g.logger.Info().Str("id", id).Int("interval_minutes", intervalMinutes).Msg("Reminder added")
	if g.bus != nil {
		g.bus.PublishReminder(events.EventReminderAdded, id, message, intervalMinutes, false)
	}
	return id
}

// Remove terminates the reminder and deletes it. No-op for unknown IDs.
func (g *Registry) Remove(id string) {
	g.mu.Lock()
	r, ok := g.reminders[id]
	if ok {
		r.Terminate()
		delete(g.reminders, id)
	}
	g.mu.Unlock()

	if !ok {
		return
	}

	g.logger.Info().Str("id", id).Msg("Reminder removed")
	if g.bus != nil {
		g.bus.PublishReminder(events.EventReminderRemoved, id, "", 0, false)
	}
}

// Edit updates a reminder's message and interval in place, without
// restarting its loop. No-op for unknown IDs.
func (g *Registry) Edit(id, message string, intervalMinutes int) {
	r, ok := g.get(id)
	if !ok {
		return
	}

	r.SetMessage(message)
	r.SetInterval(intervalMinutes)

	g.logger.Info().Str("id", id).Int("interval_minutes", intervalMinutes).Msg("Reminder updated")
	g.publishUpdated(r)
}

// TriggerNow fires a reminder on demand. No-op for unknown IDs.
func (g *Registry) TriggerNow(id string) {
	if r, ok := g.get(id); ok {
		r.TriggerNow()
	}
}

// Pause suppresses a reminder's fires. No-op for unknown IDs.
func (g *Registry) Pause(id string) {
	if r, ok := g.get(id); ok {
		r.Pause()
		g.publishUpdated(r)
	}
}

// Resume clears a reminder's paused flag. No-op for unknown IDs.
func (g *Registry) Resume(id string) {
	if r, ok := g.get(id); ok {
		r.Resume()
		g.publishUpdated(r)
	}
}

// Snooze suppresses a reminder's fires for the given minutes from now.
// No-op for unknown IDs.
func (g *Registry) Snooze(id string, minutes int) {
	if r, ok := g.get(id); ok {
		r.Snooze(minutes)
		g.publishUpdated(r)
	}
}

// ClearSnooze unsets a reminder's snooze window. No-op for unknown IDs.
func (g *Registry) ClearSnooze(id string) {
	if r, ok := g.get(id); ok {
		r.ClearSnooze()
		g.publishUpdated(r)
	}
}

// Get returns the reminder for an ID.
func (g *Registry) Get(id string) (*Reminder, bool) {
	return g.get(id)
}

func (g *Registry) get(id string) (*Reminder, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.reminders[id]
	return r, ok
}

// List returns snapshots of all reminders, ordered by creation (ULID order).
// Snapshots are taken at call time; nothing is cached.
func (g *Registry) List() []Snapshot {
	g.mu.RLock()
	snapshots := make([]Snapshot, 0, len(g.reminders))
	for _, r := range g.reminders {
		snapshots = append(snapshots, r.Snapshot())
	}
	g.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID < snapshots[j].ID
	})
	return snapshots
}

// Len returns the number of active reminders.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.reminders)
}

// Shutdown terminates every reminder and empties the registry.
func (g *Registry) Shutdown() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, r := range g.reminders {
		r.Terminate()
		delete(g.reminders, id)
	}
	g.logger.Info().Msg("All reminders terminated")
}

func (g *Registry) publishUpdated(r *Reminder) {
	if g.bus == nil {
		return
	}
	snap := r.Snapshot()
	g.bus.PublishReminder(events.EventReminderUpdated, snap.ID, snap.Message, snap.IntervalMinutes, snap.Paused)
}
