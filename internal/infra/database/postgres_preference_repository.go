package database

import (
	"context"
	"database/sql"
	"fmt"

	"household_reminder_bot/internal/domain/notify"
)

// PostgresPreferenceRepository persists the household's single notification
// preference record. The table holds at most one row (id = 1); Get before any
// Save returns the defaults.
type PostgresPreferenceRepository struct {
	db *sql.DB
}

func NewPostgresPreferenceRepository(db *sql.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

func (r *PostgresPreferenceRepository) Get(ctx context.Context) (notify.Preferences, error) {
	query := `SELECT enabled, tasks_enabled, bills_enabled, maintenance_enabled,
                      reminder_time, task_lead_days, bill_lead_days, maintenance_lead_days
               FROM notification_preferences WHERE id = 1`
	p := notify.Preferences{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&p.Enabled, &p.TasksEnabled, &p.BillsEnabled, &p.MaintenanceEnabled,
		&p.ReminderTime, &p.TaskLeadDays, &p.BillLeadDays, &p.MaintenanceLeadDays)
	if err != nil {
		if err == sql.ErrNoRows {
			return notify.DefaultPreferences(), nil
		}
		return notify.Preferences{}, fmt.Errorf("error getting notification preferences: %w", err)
	}
	return p, nil
}

func (r *PostgresPreferenceRepository) Save(ctx context.Context, p notify.Preferences) error {
	query := `INSERT INTO notification_preferences
                      (id, enabled, tasks_enabled, bills_enabled, maintenance_enabled,
                       reminder_time, task_lead_days, bill_lead_days, maintenance_lead_days)
               VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
               ON CONFLICT (id) DO UPDATE SET
                       enabled = EXCLUDED.enabled,
                       tasks_enabled = EXCLUDED.tasks_enabled,
                       bills_enabled = EXCLUDED.bills_enabled,
                       maintenance_enabled = EXCLUDED.maintenance_enabled,
                       reminder_time = EXCLUDED.reminder_time,
                       task_lead_days = EXCLUDED.task_lead_days,
                       bill_lead_days = EXCLUDED.bill_lead_days,
                       maintenance_lead_days = EXCLUDED.maintenance_lead_days,
                       updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query,
		p.Enabled, p.TasksEnabled, p.BillsEnabled, p.MaintenanceEnabled,
		p.ReminderTime, p.TaskLeadDays, p.BillLeadDays, p.MaintenanceLeadDays); err != nil {
		return fmt.Errorf("error saving notification preferences: %w", err)
	}
	return nil
}
