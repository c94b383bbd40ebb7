// Package tray renders the system-tray menu. It is presentation only:
// every action delegates to the registry or the dispatcher, and the menu
// re-renders from registry snapshots whenever the event bus reports a
// change.
package tray

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/systray"

	"github.com/breaktray/breaktray/internal/config"
	"github.com/breaktray/breaktray/internal/events"
	"github.com/breaktray/breaktray/internal/logging"
	"github.com/breaktray/breaktray/internal/notify"
	"github.com/breaktray/breaktray/internal/reminder"
)

// maxSlots is the number of pre-allocated reminder menu entries. systray
// cannot remove items once added, so unused slots are hidden instead.
const maxSlots = 10

// snoozeMinutes is the snooze window applied by the menu's snooze action.
const snoozeMinutes = 5

// Options wires the tray to the core.
type Options struct {
	Registry   *reminder.Registry
	Dispatcher *notify.Dispatcher
	Defaults   config.DefaultSettings
	Bus        *events.Bus
	Logger     *logging.Logger
	Version    string
}

// slot is one pre-allocated reminder entry with its submenu actions.
type slot struct {
	root        *systray.MenuItem
	trigger     *systray.MenuItem
	pauseResume *systray.MenuItem
	snooze      *systray.MenuItem
	remove      *systray.MenuItem
}

type trayApp struct {
	opts Options

	mu      sync.Mutex
	slotIDs [maxSlots]string // reminder ID bound to each slot, "" when unused

	mStatus *systray.MenuItem
	mAdd    *systray.MenuItem
	slots   [maxSlots]*slot
	mMute   *systray.MenuItem
	mFocus  *systray.MenuItem
	mQuit   *systray.MenuItem

	done chan struct{}
}

var app *trayApp

// Run starts the tray event loop. Blocks until Quit is selected.
func Run(opts Options) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	app = &trayApp{
		opts: opts,
		done: make(chan struct{}),
	}
	systray.Run(app.onReady, app.onExit)
}

func (a *trayApp) onReady() {
	systray.SetIcon(iconData)
	systray.SetTitle("Break Reminder")
	systray.SetTooltip("Break Reminder " + a.opts.Version)

	a.mStatus = systray.AddMenuItem("No reminders", "Active reminder count")
	a.mStatus.Disable()

	systray.AddSeparator()

	a.mAdd = systray.AddMenuItem("Add Reminder", fmt.Sprintf("Add a reminder (%q every %d min)", a.opts.Defaults.Message, a.opts.Defaults.IntervalMinutes))

	systray.AddSeparator()

	for i := range a.slots {
		root := systray.AddMenuItem("", "")
		a.slots[i] = &slot{
			root:        root,
			trigger:     root.AddSubMenuItem("Trigger Now", "Fire this reminder immediately"),
			pauseResume: root.AddSubMenuItem("Pause", "Suppress fires until resumed"),
			snooze:      root.AddSubMenuItem(fmt.Sprintf("Snooze %d min", snoozeMinutes), "Suppress fires for a few minutes"),
			remove:      root.AddSubMenuItem("Remove", "Terminate and remove this reminder"),
		}
		root.Hide()
	}

	systray.AddSeparator()

	a.mMute = systray.AddMenuItemCheckbox("Mute Notifications", "Suppress all notifications", a.opts.Dispatcher.Muted())
	a.mFocus = systray.AddMenuItemCheckbox("Follow Focus Assist", "Also suppress while the OS focus-assist signal is active", a.opts.Dispatcher.FollowFocusAssist())

	systray.AddSeparator()

	a.mQuit = systray.AddMenuItem("Quit", "Stop all reminders and exit")

	go a.handleMenuClicks()
	for i := range a.slots {
		go a.handleSlotClicks(i)
	}
	go a.watchEvents()

	a.refresh()
}

func (a *trayApp) onExit() {
	close(a.done)
}

// watchEvents re-renders the menu whenever the core reports a change.
func (a *trayApp) watchEvents() {
	ch := a.opts.Bus.SubscribeAll()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			switch ev.Type() {
			case events.EventReminderAdded, events.EventReminderRemoved, events.EventReminderUpdated, events.EventSettingsChanged:
				a.refresh()
			}
		case <-a.done:
			a.opts.Bus.UnsubscribeAll(ch)
			return
		}
	}
}

// refresh rebinds the reminder slots and toggles from current core state.
func (a *trayApp) refresh() {
	list := a.opts.Registry.List()
	now := time.Now()

	a.mu.Lock()
	for i, s := range a.slots {
		if i >= len(list) {
			a.slotIDs[i] = ""
			s.root.Hide()
			continue
		}

		snap := list[i]
		a.slotIDs[i] = snap.ID
		s.root.SetTitle(slotLabel(snap, now))
		s.root.SetTooltip("Reminder " + snap.ID)
		if snap.Paused {
			s.pauseResume.SetTitle("Resume")
		} else {
			s.pauseResume.SetTitle("Pause")
		}
		s.root.Show()
	}
	a.mu.Unlock()

	if len(list) > maxSlots {
		a.opts.Logger.Warn().Int("count", len(list)).Int("slots", maxSlots).Msg("More reminders than tray slots; extras not shown")
	}

	switch len(list) {
	case 0:
		a.mStatus.SetTitle("No reminders")
	case 1:
		a.mStatus.SetTitle("1 active reminder")
	default:
		a.mStatus.SetTitle(fmt.Sprintf("%d active reminders", len(list)))
	}
	systray.SetTooltip(fmt.Sprintf("Break Reminder %s\n%d active", a.opts.Version, len(list)))

	if a.opts.Dispatcher.Muted() {
		a.mMute.Check()
	} else {
		a.mMute.Uncheck()
	}
	if a.opts.Dispatcher.FollowFocusAssist() {
		a.mFocus.Check()
	} else {
		a.mFocus.Uncheck()
	}
}

// slotLabel renders a reminder entry like `Stand up and stretch (30m)`,
// with the message truncated and the state appended when not running.
func slotLabel(snap reminder.Snapshot, now time.Time) string {
	message := snap.Message
	if len(message) > 20 {
		message = message[:20] + "…"
	}
	label := fmt.Sprintf("%s (%dm)", message, snap.IntervalMinutes)
	if status := snap.Status(now); status != "running" {
		label += " [" + status + "]"
	}
	return label
}

func (a *trayApp) handleMenuClicks() {
	for {
		select {
		case <-a.mAdd.ClickedCh:
			a.opts.Registry.Add(a.opts.Defaults.Message, a.opts.Defaults.IntervalMinutes)

		case <-a.mMute.ClickedCh:
			a.opts.Dispatcher.SetMuted(!a.opts.Dispatcher.Muted())

		case <-a.mFocus.ClickedCh:
			a.opts.Dispatcher.SetFollowFocusAssist(!a.opts.Dispatcher.FollowFocusAssist())

		case <-a.mQuit.ClickedCh:
			a.opts.Registry.Shutdown()
			systray.Quit()
			return

		case <-a.done:
			return
		}
	}
}

func (a *trayApp) handleSlotClicks(i int) {
	s := a.slots[i]
	for {
		select {
		case <-s.trigger.ClickedCh:
			if id := a.slotID(i); id != "" {
				a.opts.Registry.TriggerNow(id)
			}

		case <-s.pauseResume.ClickedCh:
			id := a.slotID(i)
			if id == "" {
				continue
			}
			if r, ok := a.opts.Registry.Get(id); ok {
				if r.Paused() {
					a.opts.Registry.Resume(id)
				} else {
					a.opts.Registry.Pause(id)
				}
			}

		case <-s.snooze.ClickedCh:
			if id := a.slotID(i); id != "" {
				a.opts.Registry.Snooze(id, snoozeMinutes)
			}

		case <-s.remove.ClickedCh:
			if id := a.slotID(i); id != "" {
				a.opts.Registry.Remove(id)
			}

		case <-a.done:
			return
		}
	}
}

func (a *trayApp) slotID(i int) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slotIDs[i]
}
