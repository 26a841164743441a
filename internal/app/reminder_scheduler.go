package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"household_reminder_bot/internal/domain/notify"
	"household_reminder_bot/internal/domain/recurrence"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// rescheduleAllConcurrency bounds how many gateway round trips a batch
// reschedule may have in flight at once.
const rescheduleAllConcurrency = 4

// ReminderRequest describes one entity that may need a reminder. DueDate is
// the relevant date the lead time counts back from, at date precision.
type ReminderRequest struct {
	Category notify.Category
	EntityID int64
	Title    string
	Body     string
	DueDate  time.Time
}

// Tag returns the notification tag for the request's entity.
func (r ReminderRequest) Tag() string {
	return notify.Tag(r.Category, r.EntityID)
}

// ReminderScheduler owns the tag→identifier bookkeeping and is the only
// component that talks to the notification gateway. Every schedule is a
// cancel-then-schedule under a per-tag lock, so calling ScheduleFor twice in
// a row for the same entity leaves exactly one active reminder.
type ReminderScheduler struct {
	gateway   notify.Gateway
	available bool // gateway availability, captured once at wiring time
	logger    *logrus.Entry
	now       func() time.Time

	mu    sync.Mutex
	index map[string][]string // tag -> gateway identifiers

	lockMu   sync.Mutex
	tagLocks map[string]*sync.Mutex
}

func NewReminderScheduler(gateway notify.Gateway, logger *logrus.Entry) *ReminderScheduler {
	return &ReminderScheduler{
		gateway:   gateway,
		available: gateway.Available(),
		logger:    logger,
		now:       time.Now,
		index:     make(map[string][]string),
		tagLocks:  make(map[string]*sync.Mutex),
	}
}

// ScheduleFor computes the reminder trigger for req and replaces any reminder
// already scheduled under the same tag. It returns the gateway identifier of
// the scheduled notification, or "" when no reminder was issued: gateway
// unavailable, notifications disabled, the event is stale, or the gateway
// call failed (logged, never fatal).
func (s *ReminderScheduler) ScheduleFor(ctx context.Context, req ReminderRequest, prefs notify.Preferences) string {
	if !s.available {
		return ""
	}
	if !prefs.Enabled || !prefs.CategoryEnabled(req.Category) {
		return ""
	}

	tag := req.Tag()
	log := s.logger.WithField("tag", tag)

	now := s.now()
	trigger := s.triggerTime(req.DueDate, prefs.LeadDays(req.Category), prefs.ReminderTime)
	if trigger.Before(now) {
		if recurrence.DateOnly(req.DueDate).Before(recurrence.DateOnly(now)) {
			// Both the trigger and the event itself have passed: stale, no
			// notification and no side effect.
			log.WithField("due_date", req.DueDate.Format("2006-01-02")).Debug("Skipping stale reminder")
			return ""
		}
		// The date is still ahead (or today): fire a same-day reminder now.
		trigger = now
	}

	lock := s.lockFor(tag)
	lock.Lock()
	defer lock.Unlock()

	s.cancelTag(ctx, tag, log)

	id, err := s.gateway.Schedule(ctx, notify.Notification{
		Title:     req.Title,
		Body:      req.Body,
		TriggerAt: trigger,
		Tag:       tag,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to schedule reminder, proceeding without one")
		return ""
	}

	s.mu.Lock()
	s.index[tag] = []string{id}
	s.mu.Unlock()

	log.WithFields(logrus.Fields{
		"notification_id": id,
		"trigger_at":      trigger.Format(time.RFC3339),
	}).Info("Reminder scheduled")
	return id
}

// CancelFor cancels every notification scheduled under tag. Calling it for a
// tag with no active reminder is a no-op.
func (s *ReminderScheduler) CancelFor(ctx context.Context, tag string) {
	lock := s.lockFor(tag)
	lock.Lock()
	defer lock.Unlock()
	s.cancelTag(ctx, tag, s.logger.WithField("tag", tag))
}

// RescheduleAll replaces the reminder of every request in reqs. Entities are
// processed concurrently with a bounded group; the per-tag locks keep each
// cancel/schedule pair serialized. Returns how many reminders were issued.
func (s *ReminderScheduler) RescheduleAll(ctx context.Context, reqs []ReminderRequest, prefs notify.Preferences) int {
	if len(reqs) == 0 {
		return 0
	}

	var scheduled int64
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rescheduleAllConcurrency)
	for _, req := range reqs {
		req := req
		g.Go(func() error {
			if id := s.ScheduleFor(gctx, req, prefs); id != "" {
				mu.Lock()
				scheduled++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures degrade per entity

	return int(scheduled)
}

// ActiveTags returns the tags with a reminder currently tracked in the index.
func (s *ReminderScheduler) ActiveTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]string, 0, len(s.index))
	for tag := range s.index {
		tags = append(tags, tag)
	}
	return tags
}

// cancelTag must be called with the tag's lock held.
func (s *ReminderScheduler) cancelTag(ctx context.Context, tag string, log *logrus.Entry) {
	s.mu.Lock()
	ids := s.index[tag]
	delete(s.index, tag)
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.gateway.Cancel(ctx, id); err != nil {
			log.WithError(err).WithField("notification_id", id).Warn("Failed to cancel notification")
		}
	}
}

func (s *ReminderScheduler) lockFor(tag string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.tagLocks[tag]
	if !ok {
		lock = &sync.Mutex{}
		s.tagLocks[tag] = lock
	}
	return lock
}

// triggerTime combines (dueDate - leadDays) with the preferred clock time.
// A malformed clock time falls back to notify.DefaultReminderTime; this can
// mask a bad stored value, so the fallback is logged.
func (s *ReminderScheduler) triggerTime(dueDate time.Time, leadDays int, clock string) time.Time {
	hour, minute, err := parseClock(clock)
	if err != nil {
		s.logger.WithError(err).WithField("reminder_time", clock).Warn("Invalid reminder time preference, using default")
		hour, minute, _ = parseClock(notify.DefaultReminderTime)
	}
	day := recurrence.DateOnly(dueDate).AddDate(0, 0, -leadDays)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
