package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateName indicates a staff name that is already registered.
var ErrDuplicateName = errors.New("staff: name already exists")

// Repository persists staff accounts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, m Member) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO staff (name, role, pin_hash, is_active, created_at)
VALUES ($1,$2,$3,TRUE,NOW()) RETURNING id`, m.Name, string(m.Role), m.PINHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateName
		}
		return 0, fmt.Errorf("staff: create: %w", err)
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Member, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, name, role, pin_hash, is_active, created_at FROM staff WHERE id=$1`, id))
}

func (r *Repository) GetByName(ctx context.Context, name string) (Member, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, name, role, pin_hash, is_active, created_at FROM staff WHERE name=$1 AND is_active`, name))
}

func (r *Repository) List(ctx context.Context) ([]Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, role, pin_hash, is_active, created_at FROM staff ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.PINHash, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *Repository) scanOne(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Name, &m.Role, &m.PINHash, &m.IsActive, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}
