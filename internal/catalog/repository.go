package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates an unknown product.
var ErrNotFound = errors.New("catalog: product not found")

// ErrDuplicateSKU indicates a SKU that is already in use.
var ErrDuplicateSKU = errors.New("catalog: sku already exists")

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, sku, barcode, variant, category, price, cost,
godown_stock, counter_stock, min_stock_level, max_stock_level, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Barcode, &p.Variant, &p.Category,
		&p.Price, &p.Cost, &p.GodownStock, &p.CounterStock,
		&p.MinStockLevel, &p.MaxStockLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a product and returns its id.
func (r *Repository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products
(name, sku, barcode, variant, category, price, cost, godown_stock, counter_stock, min_stock_level, max_stock_level, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,TRUE,NOW(),NOW()) RETURNING id`,
		p.Name, p.SKU, p.Barcode, p.Variant, p.Category, p.Price, p.Cost,
		p.GodownStock, p.CounterStock, p.MinStockLevel, p.MaxStockLevel).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateSKU
		}
		return 0, fmt.Errorf("catalog: create product: %w", err)
	}
	return id, nil
}

// Get fetches one product by id.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("catalog: get product: %w", err)
	}
	return p, nil
}

// Update applies a column/value map to one product row.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		sets = append(sets, fmt.Sprintf("%s=$%d", col, i))
		args = append(args, val)
		i++
	}
	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id=$%d", strings.Join(sets, ", "), i)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("catalog: update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns products matching the filters plus the unfiltered total.
// Search is a case-insensitive substring match on name, sku and barcode;
// input order is the catalog's natural name order.
func (r *Repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	where := []string{"1=1"}
	args := []any{}
	i := 1
	if req.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d OR barcode ILIKE $%d)", i, i, i))
		args = append(args, "%"+req.Search+"%")
		i++
	}
	if req.Category != "" {
		where = append(where, fmt.Sprintf("category=$%d", i))
		args = append(args, req.Category)
		i++
	}
	if req.OnlyActive {
		where = append(where, "is_active")
	}
	if req.OnlyLow {
		where = append(where, "godown_stock + counter_stock <= min_stock_level")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count products: %w", err)
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		productColumns, cond, i, i+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
