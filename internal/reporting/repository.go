package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists spendings and opening balances.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertSpending records a spending.
func (r *Repository) InsertSpending(ctx context.Context, sp Spending) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO spendings (spend_date, category, note, amount, staff_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		sp.Date, sp.Category, sp.Note, sp.Amount, sp.StaffID, sp.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reporting: insert spending: %w", err)
	}
	return id, nil
}

// DeleteSpending removes a spending.
func (r *Repository) DeleteSpending(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM spendings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reporting: delete spending: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSpendingNotFound
	}
	return nil
}

// SpendingsByRange lists spendings inside the inclusive range, newest first.
func (r *Repository) SpendingsByRange(ctx context.Context, from, to time.Time) ([]Spending, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, spend_date, category, COALESCE(note, ''), amount, staff_id, created_at
		FROM spendings
		WHERE spend_date BETWEEN $1 AND $2
		ORDER BY created_at DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("reporting: list spendings: %w", err)
	}
	defer rows.Close()

	var out []Spending
	for rows.Next() {
		var sp Spending
		if err := rows.Scan(&sp.ID, &sp.Date, &sp.Category, &sp.Note, &sp.Amount, &sp.StaffID, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("reporting: scan spending: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// UpsertOpeningBalance writes the manual opening balance for a day.
func (r *Repository) UpsertOpeningBalance(ctx context.Context, day time.Time, amount float64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO opening_balances (balance_date, amount)
		VALUES ($1, $2)
		ON CONFLICT (balance_date) DO UPDATE SET amount = EXCLUDED.amount`,
		day, amount)
	if err != nil {
		return fmt.Errorf("reporting: upsert opening balance: %w", err)
	}
	return nil
}

// GetOpeningBalance returns the manual opening balance for a day, if set.
func (r *Repository) GetOpeningBalance(ctx context.Context, day time.Time) (float64, bool, error) {
	var amount float64
	err := r.pool.QueryRow(ctx,
		`SELECT amount FROM opening_balances WHERE balance_date = $1`, day).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reporting: get opening balance: %w", err)
	}
	return amount, true, nil
}
