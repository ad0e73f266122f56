package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists bills and their lines.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const billColumns = `id, number, type, table_no, status, subtotal, total,
	COALESCE(payment_mode, ''), staff_id, created_at, settled_at`

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.Number, &b.Type, &b.TableNo, &b.Status,
		&b.Subtotal, &b.Total, &b.PaymentMode, &b.StaffID, &b.CreatedAt, &b.SettledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bill{}, ErrNotFound
		}
		return Bill{}, fmt.Errorf("billing: scan bill: %w", err)
	}
	return b, nil
}

// Insert creates an open bill.
func (r *Repository) Insert(ctx context.Context, b Bill) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bills (number, type, table_no, status, subtotal, total, staff_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		b.Number, b.Type, b.TableNo, b.Status, b.Subtotal, b.Total, b.StaffID, b.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("billing: insert bill: %w", err)
	}
	return id, nil
}

// Get loads a bill with its lines.
func (r *Repository) Get(ctx context.Context, id int64) (Bill, error) {
	b, err := scanBill(r.pool.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1`, id))
	if err != nil {
		return Bill{}, err
	}
	lines, err := r.lines(ctx, id)
	if err != nil {
		return Bill{}, err
	}
	b.Lines = lines
	return b, nil
}

func (r *Repository) lines(ctx context.Context, billID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, bill_id, product_id, name, COALESCE(variant, ''), quantity,
		       unit_price, line_total, voided, created_at
		FROM bill_lines WHERE bill_id = $1 ORDER BY id`, billID)
	if err != nil {
		return nil, fmt.Errorf("billing: list lines: %w", err)
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.BillID, &l.ProductID, &l.Name, &l.Variant,
			&l.Quantity, &l.UnitPrice, &l.LineTotal, &l.Voided, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("billing: scan line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertLine appends a line to a bill.
func (r *Repository) InsertLine(ctx context.Context, l Line) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bill_lines (bill_id, product_id, name, variant, quantity, unit_price, line_total, voided, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8)
		RETURNING id`,
		l.BillID, l.ProductID, l.Name, l.Variant, l.Quantity, l.UnitPrice, l.LineTotal, l.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("billing: insert line: %w", err)
	}
	return id, nil
}

// VoidLine marks a line voided.
func (r *Repository) VoidLine(ctx context.Context, billID, lineID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bill_lines SET voided = true WHERE id = $1 AND bill_id = $2 AND NOT voided`,
		lineID, billID)
	if err != nil {
		return fmt.Errorf("billing: void line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

// UpdateTotals writes recalculated bill totals.
func (r *Repository) UpdateTotals(ctx context.Context, billID int64, subtotal, total float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE bills SET subtotal = $2, total = $3 WHERE id = $1`,
		billID, subtotal, total)
	if err != nil {
		return fmt.Errorf("billing: update totals: %w", err)
	}
	return nil
}

// SetStatus transitions a bill; payment mode and settled_at only apply on settle.
func (r *Repository) SetStatus(ctx context.Context, billID int64, status BillStatus, mode PaymentMode, settledAt *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bills SET status = $2, payment_mode = NULLIF($3, ''), settled_at = $4 WHERE id = $1`,
		billID, status, string(mode), settledAt)
	if err != nil {
		return fmt.Errorf("billing: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns bills in a status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status BillStatus) ([]Bill, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+billColumns+` FROM bills WHERE status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("billing: list bills: %w", err)
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

// ListSettledByRange returns settled bills whose settled_at falls inside the
// inclusive range, newest first. Reporting revenue reads from this.
func (r *Repository) ListSettledByRange(ctx context.Context, from, to time.Time) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE status = $1 AND settled_at BETWEEN $2 AND $3
		ORDER BY settled_at DESC`,
		BillStatusSettled, from, to)
	if err != nil {
		return nil, fmt.Errorf("billing: list settled bills: %w", err)
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

func (r *Repository) collect(ctx context.Context, rows pgx.Rows) ([]Bill, error) {
	var out []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		lines, err := r.lines(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}
