package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists transfer records in PostgreSQL. Records are append-only;
// there is no update or delete path.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a record with its items and returns the record id.
func (r *Repository) Insert(ctx context.Context, rec Record) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var id int64
	err = tx.QueryRow(ctx, `INSERT INTO transfer_records (code, transfer_date, total_items, total_quantity, created_at)
VALUES ($1,$2,$3,$4,NOW()) RETURNING id`,
		rec.Code, rec.TransferDate, rec.TotalItems, rec.TotalQuantity).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, item := range rec.Items {
		if _, err := tx.Exec(ctx, `INSERT INTO transfer_record_items (record_id, product_id, name, variant, quantity, transfer_time)
VALUES ($1,$2,$3,$4,$5,$6)`, id, item.ProductID, item.Name, item.Variant, item.Quantity, item.TransferTime); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// Get loads one record with its items.
func (r *Repository) Get(ctx context.Context, id int64) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `SELECT id, code, transfer_date, total_items, total_quantity, created_at
FROM transfer_records WHERE id=$1`, id).
		Scan(&rec.ID, &rec.Code, &rec.TransferDate, &rec.TotalItems, &rec.TotalQuantity, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	items, err := r.loadItems(ctx, []int64{rec.ID})
	if err != nil {
		return Record{}, err
	}
	rec.Items = items[rec.ID]
	return rec, nil
}

// ListByRange returns records whose transfer_date falls inside the inclusive
// range, newest first by created_at.
func (r *Repository) ListByRange(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, transfer_date, total_items, total_quantity, created_at
FROM transfer_records
WHERE transfer_date BETWEEN $1 AND $2
ORDER BY created_at DESC, id DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	ids := []int64{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.TransferDate, &rec.TotalItems, &rec.TotalQuantity, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return records, nil
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Items = items[records[i].ID]
	}
	return records, nil
}

func (r *Repository) loadItems(ctx context.Context, recordIDs []int64) (map[int64][]RecordItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT record_id, product_id, name, variant, quantity, transfer_time
FROM transfer_record_items WHERE record_id = ANY($1) ORDER BY id ASC`, recordIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := map[int64][]RecordItem{}
	for rows.Next() {
		var recordID int64
		var item RecordItem
		if err := rows.Scan(&recordID, &item.ProductID, &item.Name, &item.Variant, &item.Quantity, &item.TransferTime); err != nil {
			return nil, err
		}
		items[recordID] = append(items[recordID], item)
	}
	return items, rows.Err()
}
