// Package events provides the change-notification bus that presentation
// layers (tray menu, headless log view) subscribe to for re-rendering.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType defines the types of events that can be emitted.
type EventType string

const (
	EventReminderAdded   EventType = "reminder_added"
	EventReminderRemoved EventType = "reminder_removed"
	EventReminderUpdated EventType = "reminder_updated" // message/interval edit or pause/resume/snooze
	EventReminderFired   EventType = "reminder_fired"   // a notification was handed to the dispatcher
	EventReminderSkipped EventType = "reminder_skipped" // a fire was suppressed (paused or snoozed)
	EventSettingsChanged EventType = "settings_changed" // mute / focus-assist toggles
)

// SkipReason explains why a reminder cycle did not fire.
type SkipReason string

const (
	SkipPaused  SkipReason = "paused"
	SkipSnoozed SkipReason = "snoozed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// ReminderEvent carries the state of a reminder at the time of the change.
type ReminderEvent struct {
	BaseEvent
	ID              string
	Message         string
	IntervalMinutes int
	Paused          bool
	Reason          SkipReason // only set for EventReminderSkipped
}

// SettingsEvent carries the dispatcher toggles after a change.
type SettingsEvent struct {
	BaseEvent
	Muted             bool
	FollowFocusAssist bool
}

const (
	defaultBuffer = 64
	maxBuffer     = 1024
)

// Bus manages event subscriptions and publishing. Publishing never blocks;
// events to a full subscriber channel are dropped and counted.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]chan Event
	all         []chan Event
	bufferSize  int
	closed      bool
	dropped     atomic.Int64
}

// NewBus creates an event bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	if bufferSize > maxBuffer {
		bufferSize = maxBuffer
	}
	return &Bus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
func (b *Bus) Subscribe(eventType EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events.
func (b *Bus) SubscribeAll() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, b.bufferSize)
	b.all = append(b.all, ch)
	return ch
}

// Publish sends an event to all matching subscribers without blocking.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
		}
	}

	for _, ch := range b.all {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// PublishReminder publishes a reminder lifecycle event.
func (b *Bus) PublishReminder(t EventType, id, message string, intervalMinutes int, paused bool) {
	b.Publish(&ReminderEvent{
		BaseEvent:       BaseEvent{EventType: t, Time: time.Now()},
		ID:              id,
		Message:         message,
		IntervalMinutes: intervalMinutes,
		Paused:          paused,
	})
}

// PublishSkip publishes a suppressed-fire event with its reason.
func (b *Bus) PublishSkip(id, message string, reason SkipReason) {
	b.Publish(&ReminderEvent{
		BaseEvent: BaseEvent{EventType: EventReminderSkipped, Time: time.Now()},
		ID:        id,
		Message:   message,
		Reason:    reason,
	})
}

// PublishSettings publishes the dispatcher toggle state.
func (b *Bus) PublishSettings(muted, followFocusAssist bool) {
	b.Publish(&SettingsEvent{
		BaseEvent:         BaseEvent{EventType: EventSettingsChanged, Time: time.Now()},
		Muted:             muted,
		FollowFocusAssist: followFocusAssist,
	})
}

// Unsubscribe removes a subscription channel from a specific event type.
func (b *Bus) Unsubscribe(eventType EventType, ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	subs := b.subscribers[eventType]
	for i, sub := range subs {
		if sub == ch {
			subs[i] = subs[len(subs)-1]
			b.subscribers[eventType] = subs[:len(subs)-1]
			break
		}
	}
}

// UnsubscribeAll removes a channel obtained from SubscribeAll.
func (b *Bus) UnsubscribeAll(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for i, sub := range b.all {
		if sub == ch {
			b.all[i] = b.all[len(b.all)-1]
			b.all = b.all[:len(b.all)-1]
			break
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, channels := range b.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range b.all {
		close(ch)
	}
}

// Dropped returns the number of events dropped due to full buffers.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
