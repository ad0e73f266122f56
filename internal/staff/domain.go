package staff

import (
	"context"
	"errors"
	"time"
)

// Role controls which endpoints a staff member may call.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

// Member is one staff account. PINs are stored as bcrypt hashes.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	PINHash   string    `json:"-"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrInvalidCredentials indicates a bad name or PIN.
	ErrInvalidCredentials = errors.New("staff: invalid name or pin")
	// ErrNotFound indicates an unknown staff member.
	ErrNotFound = errors.New("staff: member not found")
	// ErrTokenExpired indicates a missing or expired token.
	ErrTokenExpired = errors.New("staff: token expired")
)

type contextKey struct{}

// WithMember stores the authenticated staff member in the context.
func WithMember(ctx context.Context, m Member) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the authenticated staff member, if any.
func FromContext(ctx context.Context) (Member, bool) {
	m, ok := ctx.Value(contextKey{}).(Member)
	return m, ok
}

// IDFromContext returns the authenticated staff id, or zero.
func IDFromContext(ctx context.Context) int64 {
	m, _ := FromContext(ctx)
	return m.ID
}
