package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists stock levels and the movement journal in PostgreSQL.
// Stock columns live on the products table; the journal has its own table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside one transaction.
type TxRepository interface {
	GetStockForUpdate(ctx context.Context, productID int64) (StockLevel, error)
	SetStock(ctx context.Context, productID int64, godown, counter int) error
	InsertMovement(ctx context.Context, m Movement) (int64, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetStock reads the current balance without locking.
func (r *Repository) GetStock(ctx context.Context, productID int64) (StockLevel, error) {
	var level StockLevel
	err := r.pool.QueryRow(ctx, `SELECT id, godown_stock, counter_stock, updated_at FROM products WHERE id=$1`, productID).
		Scan(&level.ProductID, &level.Godown, &level.Counter, &level.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockLevel{}, ErrNotFound
		}
		return StockLevel{}, err
	}
	return level, nil
}

// ListMovements returns journal rows for a product, newest first.
func (r *Repository) ListMovements(ctx context.Context, productID int64, from, to time.Time, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, movement_type, quantity, from_location, to_location, note, ref_module, ref_id, staff_id, created_at
FROM stock_movements
WHERE product_id=$1 AND created_at BETWEEN COALESCE($2, '-infinity') AND COALESCE($3, 'infinity')
ORDER BY created_at DESC, id DESC
LIMIT $4`, productID, nullTime(from), nullTime(to), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.From, &m.To, &m.Note, &m.RefModule, &m.RefID, &m.StaffID, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *txRepository) GetStockForUpdate(ctx context.Context, productID int64) (StockLevel, error) {
	var level StockLevel
	err := r.tx.QueryRow(ctx, `SELECT id, godown_stock, counter_stock, updated_at FROM products WHERE id=$1 FOR UPDATE`, productID).
		Scan(&level.ProductID, &level.Godown, &level.Counter, &level.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockLevel{}, ErrNotFound
		}
		return StockLevel{}, err
	}
	return level, nil
}

func (r *txRepository) SetStock(ctx context.Context, productID int64, godown, counter int) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET godown_stock=$2, counter_stock=$3, updated_at=NOW() WHERE id=$1`, productID, godown, counter)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_movements (product_id, movement_type, quantity, from_location, to_location, note, ref_module, ref_id, staff_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW()) RETURNING id`,
		m.ProductID, string(m.Type), m.Quantity, string(m.From), string(m.To), m.Note, m.RefModule, m.RefID, m.StaffID).Scan(&id)
	return id, err
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
