package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"household_reminder_bot/internal/domain/bill"
)

// Custom errors
var ErrBillNotFound = fmt.Errorf("bill not found")

type PostgresBillRepository struct {
	db *sql.DB
}

func NewPostgresBillRepository(db *sql.DB) *PostgresBillRepository {
	return &PostgresBillRepository{db: db}
}

func (r *PostgresBillRepository) Create(ctx context.Context, b *bill.Bill) error {
	query := `INSERT INTO bills (name, due_day, is_recurring, status, paid_at, paid_amount)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		b.Name, b.DueDay, b.IsRecurring, b.Status, b.PaidAt, b.PaidAmount,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating bill: %w", err)
	}
	return nil
}

func (r *PostgresBillRepository) GetByID(ctx context.Context, id int64) (*bill.Bill, error) {
	query := `SELECT id, name, due_day, is_recurring, status, paid_at, paid_amount, created_at, updated_at
               FROM bills WHERE id = $1`
	b := &bill.Bill{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.DueDay, &b.IsRecurring, &b.Status, &b.PaidAt, &b.PaidAmount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("error getting bill by ID: %w", err)
	}
	return b, nil
}

func (r *PostgresBillRepository) Update(ctx context.Context, b *bill.Bill) error {
	query := `UPDATE bills
               SET name = $1, due_day = $2, is_recurring = $3, status = $4, paid_at = $5, paid_amount = $6, updated_at = NOW()
               WHERE id = $7
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		b.Name, b.DueDay, b.IsRecurring, b.Status, b.PaidAt, b.PaidAmount, b.ID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrBillNotFound
		}
		return fmt.Errorf("error updating bill: %w", err)
	}
	return nil
}

func (r *PostgresBillRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting bill: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted bill rows: %w", err)
	}
	if affected == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *PostgresBillRepository) ListUnpaid(ctx context.Context) ([]*bill.Bill, error) {
	query := `SELECT id, name, due_day, is_recurring, status, paid_at, paid_amount, created_at, updated_at
               FROM bills WHERE status <> $1 ORDER BY due_day, id`
	return r.list(ctx, query, bill.StatusPaid)
}

func (r *PostgresBillRepository) ListAll(ctx context.Context) ([]*bill.Bill, error) {
	query := `SELECT id, name, due_day, is_recurring, status, paid_at, paid_amount, created_at, updated_at
               FROM bills ORDER BY due_day, id`
	return r.list(ctx, query)
}

func (r *PostgresBillRepository) ResetPaidBefore(ctx context.Context, cycleStart time.Time) (int64, error) {
	query := `UPDATE bills
               SET status = $1, paid_at = NULL, paid_amount = NULL, updated_at = NOW()
               WHERE status = $2 AND paid_at < $3`
	result, err := r.db.ExecContext(ctx, query, bill.StatusPending, bill.StatusPaid, cycleStart)
	if err != nil {
		return 0, fmt.Errorf("error resetting paid bills: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking reset bill rows: %w", err)
	}
	return affected, nil
}

func (r *PostgresBillRepository) list(ctx context.Context, query string, args ...any) ([]*bill.Bill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bills: %w", err)
	}
	defer rows.Close()

	bills := make([]*bill.Bill, 0)
	for rows.Next() {
		b := &bill.Bill{}
		if err := rows.Scan(&b.ID, &b.Name, &b.DueDay, &b.IsRecurring, &b.Status, &b.PaidAt, &b.PaidAmount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}
	return bills, nil
}
