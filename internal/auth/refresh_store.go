package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRefreshRevoked = errors.New("refresh token revoked")

// RefreshStore keeps an allowlist of live refresh token ids in Redis.
// Rotation deletes the old id before a new pair is issued, so a stolen
// refresh token stops working the moment its owner uses it.
type RefreshStore struct {
	rdb *redis.Client
}

func NewRefreshStore(rdb *redis.Client) *RefreshStore {
	return &RefreshStore{rdb: rdb}
}

func refreshKey(userID int64, jti string) string {
	return fmt.Sprintf("refresh:%d:%s", userID, jti)
}

func (s *RefreshStore) Save(ctx context.Context, userID int64, jti string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, refreshKey(userID, jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// Rotate revokes the old token id and returns ErrRefreshRevoked when it was
// not in the allowlist.
func (s *RefreshStore) Rotate(ctx context.Context, userID int64, jti string) error {
	deleted, err := s.rdb.Del(ctx, refreshKey(userID, jti)).Result()
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if deleted == 0 {
		return ErrRefreshRevoked
	}
	return nil
}
