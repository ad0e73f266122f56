package staff

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const tokenPrefix = "staff_token:"

// RepositoryPort abstracts staff persistence.
type RepositoryPort interface {
	Create(ctx context.Context, m Member) (int64, error)
	Get(ctx context.Context, id int64) (Member, error)
	GetByName(ctx context.Context, name string) (Member, error)
	List(ctx context.Context) ([]Member, error)
}

// Service handles login and token resolution. Tokens live in redis with a
// TTL so an abandoned terminal logs itself out.
type Service struct {
	repo     RepositoryPort
	tokens   *redis.Client
	tokenTTL time.Duration
}

// NewService builds Service.
func NewService(repo RepositoryPort, tokens *redis.Client, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{repo: repo, tokens: tokens, tokenTTL: tokenTTL}
}

// Register creates a staff account with a bcrypt-hashed PIN.
func (s *Service) Register(ctx context.Context, name string, role Role, pin string) (Member, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(pin) < 4 {
		return Member{}, fmt.Errorf("%w: name and a 4+ digit pin are required", ErrInvalidCredentials)
	}
	if role != RoleAdmin && role != RoleCashier {
		role = RoleCashier
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return Member{}, fmt.Errorf("staff: hash pin: %w", err)
	}
	id, err := s.repo.Create(ctx, Member{Name: name, Role: role, PINHash: string(hash)})
	if err != nil {
		return Member{}, err
	}
	return s.repo.Get(ctx, id)
}

// Login verifies the PIN and issues a bearer token.
func (s *Service) Login(ctx context.Context, name, pin string) (string, Member, error) {
	member, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", Member{}, ErrInvalidCredentials
		}
		return "", Member{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PINHash), []byte(pin)); err != nil {
		return "", Member{}, ErrInvalidCredentials
	}
	token := uuid.NewString()
	if err := s.tokens.Set(ctx, tokenPrefix+token, strconv.FormatInt(member.ID, 10), s.tokenTTL).Err(); err != nil {
		return "", Member{}, fmt.Errorf("staff: store token: %w", err)
	}
	return token, member, nil
}

// Authenticate resolves a bearer token to its staff member and refreshes the
// token's TTL.
func (s *Service) Authenticate(ctx context.Context, token string) (Member, error) {
	if token == "" {
		return Member{}, ErrTokenExpired
	}
	idStr, err := s.tokens.Get(ctx, tokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Member{}, ErrTokenExpired
		}
		return Member{}, fmt.Errorf("staff: resolve token: %w", err)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return Member{}, ErrTokenExpired
	}
	member, err := s.repo.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	if !member.IsActive {
		return Member{}, ErrTokenExpired
	}
	_ = s.tokens.Expire(ctx, tokenPrefix+token, s.tokenTTL).Err()
	return member, nil
}

// Logout revokes a token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Del(ctx, tokenPrefix+token).Err()
}

// List returns all staff accounts.
func (s *Service) List(ctx context.Context) ([]Member, error) {
	return s.repo.List(ctx)
}
