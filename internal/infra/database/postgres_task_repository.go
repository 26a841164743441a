package database

import (
	"context"
	"database/sql"
	"fmt"

	"household_reminder_bot/internal/domain/task"
)

// Custom errors
var ErrTaskNotFound = fmt.Errorf("task not found")

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `INSERT INTO tasks (title, due_date, due_time, is_recurring, recurrence_kind, recurrence_interval, status)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.DueDate, t.DueTime, t.IsRecurring, string(t.RecurrenceKind), t.RecurrenceInterval, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	query := `SELECT id, title, due_date, due_time, is_recurring, recurrence_kind, recurrence_interval, status, created_at, updated_at
               FROM tasks WHERE id = $1`
	t := &task.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.DueDate, &t.DueTime, &t.IsRecurring, &t.RecurrenceKind, &t.RecurrenceInterval, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("error getting task by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `UPDATE tasks
               SET title = $1, due_date = $2, due_time = $3, is_recurring = $4, recurrence_kind = $5, recurrence_interval = $6, status = $7, updated_at = NOW()
               WHERE id = $8
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.DueDate, t.DueTime, t.IsRecurring, string(t.RecurrenceKind), t.RecurrenceInterval, t.Status, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrTaskNotFound
		}
		return fmt.Errorf("error updating task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted task rows: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *PostgresTaskRepository) ListPending(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT id, title, due_date, due_time, is_recurring, recurrence_kind, recurrence_interval, status, created_at, updated_at
               FROM tasks WHERE status = $1 ORDER BY due_date, id`
	return r.list(ctx, query, task.StatusPending)
}

func (r *PostgresTaskRepository) ListAll(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT id, title, due_date, due_time, is_recurring, recurrence_kind, recurrence_interval, status, created_at, updated_at
               FROM tasks ORDER BY due_date, id`
	return r.list(ctx, query)
}

func (r *PostgresTaskRepository) list(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t := &task.Task{}
		if err := rows.Scan(&t.ID, &t.Title, &t.DueDate, &t.DueTime, &t.IsRecurring, &t.RecurrenceKind, &t.RecurrenceInterval, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}
