package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const stagingPrefix = "transfer_staging:"

// StagingStore keeps staging sessions in redis so they survive UI reloads
// but expire when a terminal is abandoned mid-transfer.
type StagingStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStagingStore constructs the store.
func NewStagingStore(client *redis.Client, ttl time.Duration) *StagingStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &StagingStore{client: client, ttl: ttl}
}

// Create starts a new empty session.
func (s *StagingStore) Create(ctx context.Context) (Session, error) {
	sess := Session{ID: uuid.NewString(), Entries: []StagingEntry{}, UpdatedAt: time.Now()}
	if err := s.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get loads a session by id.
func (s *StagingStore) Get(ctx context.Context, id string) (Session, error) {
	data, err := s.client.Get(ctx, stagingPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("transfer: load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("transfer: decode session: %w", err)
	}
	return sess, nil
}

// Save persists the session and refreshes its TTL.
func (s *StagingStore) Save(ctx context.Context, sess Session) error {
	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("transfer: encode session: %w", err)
	}
	if err := s.client.Set(ctx, stagingPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("transfer: save session: %w", err)
	}
	return nil
}

// Delete removes the session.
func (s *StagingStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, stagingPrefix+id).Err()
}
