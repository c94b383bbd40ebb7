package reminder

import (
	"sync"
	"testing"
	"time"

	"github.com/breaktray/breaktray/internal/events"
	"github.com/breaktray/breaktray/internal/logging"
)

// recorder collects deliveries from the injected callback.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (c *recorder) deliver(title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, title+":"+message)
}

func (c *recorder) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *recorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// speedUp makes the reminder's timing testable: one "minute" becomes a
// few milliseconds and the join bound shrinks accordingly.
func speedUp(r *Reminder) {
	r.unit = 20 * time.Millisecond
	r.floor = 20 * time.Millisecond
	r.tick = 2 * time.Millisecond
	r.join = 500 * time.Millisecond
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestTriggerNowRespectsPauseAndSnooze(t *testing.T) {
	rec := &recorder{}
	r := New("r1", "msg", 1, rec.deliver, logging.Nop(), nil)

	// paused -> no trigger
	r.Pause()
	r.TriggerNow()
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("trigger while paused delivered %v, want none", got)
	}

	// resumed but snoozed -> no trigger
	r.Resume()
	r.Snooze(5)
	r.TriggerNow()
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("trigger while snoozed delivered %v, want none", got)
	}

	// clear snooze -> exactly one delivery with the expected payload
	r.ClearSnooze()
	r.TriggerNow()
	got := rec.snapshot()
	if len(got) != 1 || got[0] != "Break Reminder:msg" {
		t.Fatalf("trigger after clearing snooze delivered %v, want [Break Reminder:msg]", got)
	}
}

func TestPauseResumeRestoresEligibility(t *testing.T) {
	rec := &recorder{}
	r := New("r1", "hello", 1, rec.deliver, logging.Nop(), nil)

	r.Pause()
	if !r.Paused() {
		t.Fatal("expected paused after Pause")
	}
	r.TriggerNow()
	if rec.count() != 0 {
		t.Fatal("paused reminder delivered")
	}

	r.Resume()
	if r.Paused() {
		t.Fatal("expected not paused after Resume")
	}
	r.TriggerNow()
	if rec.count() != 1 {
		t.Fatalf("expected exactly one delivery after resume, got %d", rec.count())
	}
}

func TestSnoozeWindow(t *testing.T) {
	tests := []struct {
		name        string
		minutes     int
		wantMinutes int
	}{
		{"normal", 5, 5},
		{"zero clamps to one", 0, 1},
		{"negative clamps to one", -3, 1},
		{"one", 1, 1},
	}

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r := New("r1", "msg", 1, rec.deliver, logging.Nop(), nil)
			r.now = func() time.Time { return base }

			r.Snooze(tt.minutes)

			want := base.Add(time.Duration(tt.wantMinutes) * time.Minute)
			if got := r.SnoozedUntil(); !got.Equal(want) {
				t.Errorf("SnoozedUntil = %v, want %v", got, want)
			}
		})
	}
}

func TestSnoozeSuppressesUntilElapsed(t *testing.T) {
	rec := &recorder{}
	r := New("r1", "msg", 1, rec.deliver, logging.Nop(), nil)

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Snooze(5)
	r.TriggerNow()
	if rec.count() != 0 {
		t.Fatal("trigger inside snooze window delivered")
	}

	// The window is consumed by time passing, not by an explicit clear.
	now = now.Add(5*time.Minute + time.Second)
	r.TriggerNow()
	if rec.count() != 1 {
		t.Fatalf("expected exactly one delivery after window elapsed, got %d", rec.count())
	}
}

func TestReSnoozeOverwritesWindow(t *testing.T) {
	r := New("r1", "msg", 1, func(string, string) {}, logging.Nop(), nil)

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }

	r.Snooze(30)
	r.Snooze(2)

	want := base.Add(2 * time.Minute)
	if got := r.SnoozedUntil(); !got.Equal(want) {
		t.Fatalf("SnoozedUntil = %v, want %v (last snooze wins)", got, want)
	}
}

func TestBackgroundLoopFires(t *testing.T) {
	rec := &recorder{}
	r := New("r1", "loop", 1, rec.deliver, logging.Nop(), nil)
	speedUp(r)

	r.Start()
	defer r.Terminate()

	eventually(t, func() bool { return rec.count() >= 2 }, "background loop never fired twice")

	got := rec.snapshot()
	if got[0] != "Break Reminder:loop" {
		t.Fatalf("unexpected payload %q", got[0])
	}
}

func TestBackgroundLoopSkipsWhilePaused(t *testing.T) {
	rec := &recorder{}
	bus := events.NewBus(16)
	defer bus.Close()
	skips := bus.Subscribe(events.EventReminderSkipped)

	r := New("r1", "msg", 1, rec.deliver, logging.Nop(), bus)
	speedUp(r)
	r.Pause()

	r.Start()
	defer r.Terminate()

	// The loop keeps running while paused: cycles complete and are skipped.
	select {
	case ev := <-skips:
		re, ok := ev.(*events.ReminderEvent)
		if !ok || re.Reason != events.SkipPaused {
			t.Fatalf("unexpected skip event %#v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no skip event from paused loop")
	}

	if rec.count() != 0 {
		t.Fatalf("paused loop delivered %d times", rec.count())
	}
}

func TestEditsApplyOnNextCycle(t *testing.T) {
	rec := &recorder{}
	r := New("r1", "old", 1, rec.deliver, logging.Nop(), nil)
	speedUp(r)

	r.Start()
	defer r.Terminate()

	eventually(t, func() bool { return rec.count() >= 1 }, "loop never fired")

	r.SetMessage("new")
	r.SetInterval(2)

	eventually(t, func() bool {
		for _, call := range rec.snapshot() {
			if call == "Break Reminder:new" {
				return true
			}
		}
		return false
	}, "edited message never delivered")

	snap := r.Snapshot()
	if snap.Message != "new" || snap.IntervalMinutes != 2 {
		t.Fatalf("snapshot = %+v after edit", snap)
	}
}

func TestIntervalClamping(t *testing.T) {
	r := New("r1", "msg", 0, func(string, string) {}, logging.Nop(), nil)
	if got := r.Snapshot().IntervalMinutes; got != 1 {
		t.Errorf("constructor interval = %d, want clamped to 1", got)
	}

	r.SetInterval(-10)
	if got := r.Snapshot().IntervalMinutes; got != 1 {
		t.Errorf("SetInterval interval = %d, want clamped to 1", got)
	}

	// The wait floor holds even for a 1-minute interval.
	if got := r.waitPeriod(); got != defaultFloor {
		t.Errorf("waitPeriod = %v, want %v", got, defaultFloor)
	}
}

func TestTerminateIsIdempotent(t *testing.T) {
	rec := &recorder{}
	r := New("r1", "msg", 1, rec.deliver, logging.Nop(), nil)
	speedUp(r)

	r.Start()
	r.Terminate()
	r.Terminate() // second terminate must be safe

	before := rec.count()
	time.Sleep(100 * time.Millisecond)
	if rec.count() != before {
		t.Fatal("loop still firing after terminate")
	}
}

func TestTerminateWithoutStart(t *testing.T) {
	r := New("r1", "msg", 1, func(string, string) {}, logging.Nop(), nil)

	done := make(chan struct{})
	go func() {
		r.Terminate()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("terminate of never-started reminder blocked")
	}
}

func TestStartIsIdempotentAndNotReusable(t *testing.T) {
	rec := &recorder{}
	r := New("r1", "msg", 1, rec.deliver, logging.Nop(), nil)
	speedUp(r)

	r.Start()
	r.Start() // no second loop

	eventually(t, func() bool { return rec.count() >= 1 }, "loop never fired")

	r.Terminate()
	before := rec.count()

	// A terminated reminder must not restart.
	r.Start()
	time.Sleep(100 * time.Millisecond)
	if rec.count() != before {
		t.Fatal("terminated reminder fired after restart attempt")
	}
}

func TestTriggerNowDoesNotDisturbCycle(t *testing.T) {
	rec := &recorder{}
	r := New("r1", "msg", 1, rec.deliver, logging.Nop(), nil)
	speedUp(r)

	r.Start()
	defer r.Terminate()

	r.TriggerNow()
	if rec.count() < 1 {
		t.Fatal("TriggerNow did not deliver")
	}

	// The background cycle still fires on its own schedule.
	eventually(t, func() bool { return rec.count() >= 3 }, "background cycle stalled after TriggerNow")
}

func TestSnapshotStatus(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{"running", Snapshot{}, "running"},
		{"paused", Snapshot{Paused: true}, "paused"},
		{"snoozed", Snapshot{SnoozedUntil: now.Add(time.Minute)}, "snoozed"},
		{"snooze elapsed", Snapshot{SnoozedUntil: now.Add(-time.Minute)}, "running"},
		{"paused wins over snooze", Snapshot{Paused: true, SnoozedUntil: now.Add(time.Minute)}, "paused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Status(now); got != tt.want {
				t.Errorf("Status = %q, want %q", got, tt.want)
			}
		})
	}
}
