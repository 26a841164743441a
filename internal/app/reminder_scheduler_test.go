package app

import (
	"context"
	"testing"
	"time"

	"household_reminder_bot/internal/domain/notify"
)

var testNow = time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

func testPrefs() notify.Preferences {
	p := notify.DefaultPreferences()
	p.ReminderTime = "09:00"
	p.TaskLeadDays = 0
	p.BillLeadDays = 3
	p.MaintenanceLeadDays = 7
	return p
}

func newTestScheduler(gw notify.Gateway) *ReminderScheduler {
	s := NewReminderScheduler(gw, testLogger())
	s.now = fixedClock(testNow)
	return s
}

func taskReq(id int64, due time.Time) ReminderRequest {
	return ReminderRequest{Category: notify.CategoryTask, EntityID: id, Title: "Task due", Body: "x", DueDate: due}
}

func TestScheduleForIsIdempotent(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)
	req := taskReq(7, testNow.AddDate(0, 0, 5))

	first := s.ScheduleFor(context.Background(), req, testPrefs())
	second := s.ScheduleFor(context.Background(), req, testPrefs())
	if first == "" || second == "" {
		t.Fatalf("expected both calls to schedule, got %q and %q", first, second)
	}
	if first == second {
		t.Errorf("expected a fresh identifier on reschedule, got %q twice", first)
	}
	if got := gw.byTag("task_7"); len(got) != 1 {
		t.Fatalf("expected exactly 1 scheduled notification for tag, got %d", len(got))
	}
	if gw.cancelCalls != 1 {
		t.Errorf("expected 1 cancel call (for the first id), got %d", gw.cancelCalls)
	}
}

func TestScheduleForTriggerUsesLeadDaysAndClockTime(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)
	prefs := testPrefs()
	prefs.ReminderTime = "18:30"

	req := ReminderRequest{Category: notify.CategoryBill, EntityID: 3, Title: "Bill due", DueDate: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)}
	if id := s.ScheduleFor(context.Background(), req, prefs); id == "" {
		t.Fatal("expected a reminder to be scheduled")
	}

	got := gw.byTag("bill_3")
	if len(got) != 1 {
		t.Fatalf("expected 1 scheduled notification, got %d", len(got))
	}
	want := time.Date(2024, time.May, 17, 18, 30, 0, 0, time.UTC)
	if !got[0].TriggerAt.Equal(want) {
		t.Fatalf("trigger = %v, want %v", got[0].TriggerAt, want)
	}
}

func TestScheduleForSuppressesStaleEvents(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)

	// Due yesterday: trigger and event date are both in the past.
	id := s.ScheduleFor(context.Background(), taskReq(1, testNow.AddDate(0, 0, -1)), testPrefs())
	if id != "" {
		t.Errorf("expected no reminder for a stale event, got %q", id)
	}
	if len(gw.scheduled) != 0 {
		t.Errorf("expected no gateway calls, got %d scheduled", len(gw.scheduled))
	}
}

func TestScheduleForClampsPastTriggerToNow(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)
	prefs := testPrefs()
	prefs.BillLeadDays = 10

	// Due in 2 days; the 10-day lead puts the natural trigger in the past.
	due := testNow.AddDate(0, 0, 2)
	if id := s.ScheduleFor(context.Background(), ReminderRequest{Category: notify.CategoryBill, EntityID: 4, DueDate: due}, prefs); id == "" {
		t.Fatal("expected a same-day reminder")
	}
	got := gw.byTag("bill_4")
	if len(got) != 1 {
		t.Fatalf("expected 1 scheduled notification, got %d", len(got))
	}
	if !got[0].TriggerAt.Equal(testNow) {
		t.Fatalf("trigger = %v, want clamp to now %v", got[0].TriggerAt, testNow)
	}
}

func TestScheduleForRespectsPreferenceGates(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*notify.Preferences)
	}{
		{"globally disabled", func(p *notify.Preferences) { p.Enabled = false }},
		{"category disabled", func(p *notify.Preferences) { p.TasksEnabled = false }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newFakeGateway()
			s := newTestScheduler(gw)
			prefs := testPrefs()
			tc.mutate(&prefs)

			if id := s.ScheduleFor(context.Background(), taskReq(1, testNow.AddDate(0, 0, 3)), prefs); id != "" {
				t.Errorf("expected no reminder, got %q", id)
			}
			if len(gw.scheduled) != 0 {
				t.Errorf("expected no gateway side effects, got %d", len(gw.scheduled))
			}
		})
	}
}

func TestScheduleForUnavailableGateway(t *testing.T) {
	gw := newFakeGateway()
	gw.available = false
	s := newTestScheduler(gw)

	if id := s.ScheduleFor(context.Background(), taskReq(1, testNow.AddDate(0, 0, 3)), testPrefs()); id != "" {
		t.Errorf("expected degraded no-op, got %q", id)
	}
}

func TestScheduleForGatewayFailureIsNonFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.failSchedule = true
	s := newTestScheduler(gw)

	if id := s.ScheduleFor(context.Background(), taskReq(1, testNow.AddDate(0, 0, 3)), testPrefs()); id != "" {
		t.Errorf("expected empty identifier on gateway failure, got %q", id)
	}
	if tags := s.ActiveTags(); len(tags) != 0 {
		t.Errorf("expected empty index after failed schedule, got %v", tags)
	}
}

func TestScheduleForBadReminderTimeFallsBack(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)
	prefs := testPrefs()
	prefs.ReminderTime = "25:99"
	prefs.TaskLeadDays = 0

	due := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	if id := s.ScheduleFor(context.Background(), taskReq(2, due), prefs); id == "" {
		t.Fatal("expected a reminder despite malformed clock time")
	}
	got := gw.byTag("task_2")
	if len(got) != 1 {
		t.Fatalf("expected 1 scheduled notification, got %d", len(got))
	}
	want := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC) // DefaultReminderTime
	if !got[0].TriggerAt.Equal(want) {
		t.Fatalf("trigger = %v, want fallback %v", got[0].TriggerAt, want)
	}
}

func TestCancelForIsSafeWithoutActiveReminder(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)

	s.CancelFor(context.Background(), "task_99") // must not panic or call the gateway
	if gw.cancelCalls != 0 {
		t.Errorf("expected no cancel calls for unknown tag, got %d", gw.cancelCalls)
	}
}

func TestCancelForRemovesScheduledReminder(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)
	req := taskReq(5, testNow.AddDate(0, 0, 3))

	if id := s.ScheduleFor(context.Background(), req, testPrefs()); id == "" {
		t.Fatal("schedule failed")
	}
	s.CancelFor(context.Background(), req.Tag())
	if got := gw.byTag("task_5"); len(got) != 0 {
		t.Errorf("expected reminder cancelled, %d still scheduled", len(got))
	}
	if tags := s.ActiveTags(); len(tags) != 0 {
		t.Errorf("expected empty index, got %v", tags)
	}
}

func TestRescheduleAllSchedulesEligibleEntitiesOnly(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)

	reqs := []ReminderRequest{
		taskReq(1, testNow.AddDate(0, 0, 1)),
		taskReq(2, testNow.AddDate(0, 0, 2)),
		taskReq(3, testNow.AddDate(0, 0, -5)), // stale
	}
	n := s.RescheduleAll(context.Background(), reqs, testPrefs())
	if n != 2 {
		t.Errorf("expected 2 reminders scheduled, got %d", n)
	}
	if len(gw.scheduled) != 2 {
		t.Errorf("expected 2 gateway entries, got %d", len(gw.scheduled))
	}
}

func TestRescheduleAllReplacesExistingReminders(t *testing.T) {
	gw := newFakeGateway()
	s := newTestScheduler(gw)
	reqs := []ReminderRequest{taskReq(1, testNow.AddDate(0, 0, 1)), taskReq(2, testNow.AddDate(0, 0, 2))}

	s.RescheduleAll(context.Background(), reqs, testPrefs())
	s.RescheduleAll(context.Background(), reqs, testPrefs())

	if len(gw.scheduled) != 2 {
		t.Errorf("expected 2 gateway entries after repeated refresh, got %d", len(gw.scheduled))
	}
	for _, tag := range []string{"task_1", "task_2"} {
		if got := gw.byTag(tag); len(got) != 1 {
			t.Errorf("tag %s: expected 1 entry, got %d", tag, len(got))
		}
	}
}
