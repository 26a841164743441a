package database

import (
	"context"
	"database/sql"
	"fmt"

	"household_reminder_bot/internal/domain/maintenance"
)

// Custom errors
var ErrMaintenanceItemNotFound = fmt.Errorf("maintenance item not found")

type PostgresMaintenanceRepository struct {
	db *sql.DB
}

func NewPostgresMaintenanceRepository(db *sql.DB) *PostgresMaintenanceRepository {
	return &PostgresMaintenanceRepository{db: db}
}

func (r *PostgresMaintenanceRepository) Create(ctx context.Context, item *maintenance.Item) error {
	query := `INSERT INTO maintenance_items (name, interval_months, last_date, next_date)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		item.Name, item.IntervalMonths, item.LastDate, item.NextDate,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating maintenance item: %w", err)
	}
	return nil
}

func (r *PostgresMaintenanceRepository) GetByID(ctx context.Context, id int64) (*maintenance.Item, error) {
	query := `SELECT id, name, interval_months, last_date, next_date, created_at, updated_at
               FROM maintenance_items WHERE id = $1`
	item := &maintenance.Item{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.IntervalMonths, &item.LastDate, &item.NextDate, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMaintenanceItemNotFound
		}
		return nil, fmt.Errorf("error getting maintenance item by ID: %w", err)
	}
	return item, nil
}

func (r *PostgresMaintenanceRepository) Update(ctx context.Context, item *maintenance.Item) error {
	query := `UPDATE maintenance_items
               SET name = $1, interval_months = $2, last_date = $3, next_date = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		item.Name, item.IntervalMonths, item.LastDate, item.NextDate, item.ID,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrMaintenanceItemNotFound
		}
		return fmt.Errorf("error updating maintenance item: %w", err)
	}
	return nil
}

// Delete removes the item; its event history goes with it via ON DELETE CASCADE.
func (r *PostgresMaintenanceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM maintenance_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting maintenance item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted maintenance item rows: %w", err)
	}
	if affected == 0 {
		return ErrMaintenanceItemNotFound
	}
	return nil
}

func (r *PostgresMaintenanceRepository) ListAll(ctx context.Context) ([]*maintenance.Item, error) {
	query := `SELECT id, name, interval_months, last_date, next_date, created_at, updated_at
               FROM maintenance_items ORDER BY next_date NULLS LAST, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing maintenance items: %w", err)
	}
	defer rows.Close()

	items := make([]*maintenance.Item, 0)
	for rows.Next() {
		item := &maintenance.Item{}
		if err := rows.Scan(&item.ID, &item.Name, &item.IntervalMonths, &item.LastDate, &item.NextDate, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning maintenance item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating maintenance items: %w", err)
	}
	return items, nil
}

func (r *PostgresMaintenanceRepository) AddEvent(ctx context.Context, event *maintenance.Event) error {
	query := `INSERT INTO maintenance_events (item_id, performed_at, notes)
               VALUES ($1, $2, $3)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, event.ItemID, event.PerformedAt, event.Notes).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("error recording maintenance event: %w", err)
	}
	return nil
}

func (r *PostgresMaintenanceRepository) ListEvents(ctx context.Context, itemID int64) ([]*maintenance.Event, error) {
	query := `SELECT id, item_id, performed_at, notes, created_at
               FROM maintenance_events WHERE item_id = $1 ORDER BY performed_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("error listing maintenance events: %w", err)
	}
	defer rows.Close()

	events := make([]*maintenance.Event, 0)
	for rows.Next() {
		e := &maintenance.Event{}
		if err := rows.Scan(&e.ID, &e.ItemID, &e.PerformedAt, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning maintenance event: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating maintenance events: %w", err)
	}
	return events, nil
}
