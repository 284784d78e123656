package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scholarchat/internal/cache"
	apperrors "scholarchat/internal/errors"
	"scholarchat/internal/model"
)

const (
	keyPrefix = "session:"

	// TTL is refreshed on every save, so active sessions slide forward and
	// abandoned ones expire with their conversations.
	sessionTTL = 24 * time.Hour
)

// Store defines session persistence operations.
type Store interface {
	Save(ctx context.Context, sess *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON in Redis. Centralizing the session (and
// the conversations inside it) means any instance behind a load balancer can
// serve any request.
type RedisStore struct {
	cache *cache.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(cache *cache.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

// Save writes the session and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *model.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.cache.Set(ctx, keyPrefix+sess.ID, payload, sessionTTL)
}

// Get loads a session by id, returning ErrSessionNotFound for unknown or
// expired ids.
func (s *RedisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.cache.Get(ctx, keyPrefix+id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, apperrors.ErrSessionNotFound
	}
	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session record.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, keyPrefix+id)
}
