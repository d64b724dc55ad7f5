package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"regbot/internal/entities"
)

const sessionKeyPrefix = "regbot:session:"

// RedisSessionStore keeps sessions in Redis so several bot instances can share them.
// Keys have no TTL; abandoned sessions stay until flushed.
type RedisSessionStore struct {
	client *RedisClient
}

func NewRedisSessionStore(client *RedisClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, userID)
}

func (r *RedisSessionStore) Get(ctx context.Context, userID int64) (*entities.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", userID, err)
	}

	var s entities.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s *entities.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", s.UserID, err)
	}
	if err := r.client.Set(ctx, sessionKey(s.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save session %d: %w", s.UserID, err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session %d: %w", userID, err)
	}
	return nil
}
