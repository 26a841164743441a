package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderSource is implemented by each domain coordinator: one call refreshes
// the reminder of every eligible entity in that domain.
type ReminderSource interface {
	ScheduleAllReminders(ctx context.Context) (int, error)
}

// CycleRoller resets bills paid in earlier cycles back to pending.
type CycleRoller interface {
	RolloverCycles(ctx context.Context) (int64, error)
}

// ReminderRefresher drives the batch side of the engine on cron schedules:
// a periodic full refresh per domain and the daily bill-cycle rollover. Event
// driven scheduling stays with the coordinators; this keeps the schedule
// consistent after restarts, preference changes and cycle rollovers.
type ReminderRefresher struct {
	cronEngine       *cron.Cron
	sources          map[string]ReminderSource
	roller           CycleRoller
	logger           *logrus.Entry
	cronSpecRefresh  string
	cronSpecRollover string
}

func NewReminderRefresher(
	sources map[string]ReminderSource,
	roller CycleRoller,
	logger *logrus.Entry,
	cronSpecRefresh string, // e.g. "0 6 * * *"
	cronSpecRollover string, // e.g. "30 0 * * *"
) *ReminderRefresher {
	return &ReminderRefresher{
		cronEngine:       cron.New(cron.WithLocation(time.Local)),
		sources:          sources,
		roller:           roller,
		logger:           logger,
		cronSpecRefresh:  cronSpecRefresh,
		cronSpecRollover: cronSpecRollover,
	}
}

func (r *ReminderRefresher) Start() error {
	if _, err := r.cronEngine.AddFunc(r.cronSpecRefresh, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		r.RefreshAll(ctx)
	}); err != nil {
		return err
	}

	if _, err := r.cronEngine.AddFunc(r.cronSpecRollover, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if _, err := r.roller.RolloverCycles(ctx); err != nil {
			r.logger.WithError(err).Error("Bill cycle rollover failed")
		}
	}); err != nil {
		return err
	}

	r.cronEngine.Start()
	r.logger.WithFields(logrus.Fields{
		"refresh_spec":  r.cronSpecRefresh,
		"rollover_spec": r.cronSpecRollover,
	}).Info("Reminder refresher started")

	// Rebuild the schedule immediately: gateway timers do not survive a
	// restart, the entity store does.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := r.roller.RolloverCycles(ctx); err != nil {
			r.logger.WithError(err).Error("Initial bill cycle rollover failed")
		}
		r.RefreshAll(ctx)
	}()
	return nil
}

// RefreshAll runs one full refresh across every registered domain. Failures
// are per-domain: one broken listing does not stop the others.
func (r *ReminderRefresher) RefreshAll(ctx context.Context) {
	for name, source := range r.sources {
		n, err := source.ScheduleAllReminders(ctx)
		if err != nil {
			r.logger.WithError(err).WithField("domain", name).Error("Reminder refresh failed")
			continue
		}
		r.logger.WithFields(logrus.Fields{"domain": name, "scheduled": n}).Debug("Domain reminders refreshed")
	}
}

func (r *ReminderRefresher) Stop() {
	r.logger.Info("Stopping reminder refresher...")
	ctx := r.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	r.logger.Info("Reminder refresher stopped")
}
