package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type (
	// RedisSessions keeps sessions in Redis so they are shared between
	// instances and survive restarts. Expiry is the key TTL.
	RedisSessions struct {
		client redis.UniversalClient
		prefix string
		ttl    time.Duration
	}
)

func NewRedisSessions(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisSessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if prefix == "" {
		prefix = "toolshelf:session"
	}
	return &RedisSessions{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisSessions) key(sessionID string) string {
	return fmt.Sprintf("%v:%v", r.prefix, sessionID)
}

func (r *RedisSessions) Create(ctx context.Context, accountID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	err = r.client.Set(ctx, r.key(id), strconv.FormatInt(accountID, 10), r.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("unable to store session, cause %w", err)
	}
	return id, nil
}

func (r *RedisSessions) Read(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrSessionNotFound
	}
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	} else if err != nil {
		return 0, fmt.Errorf("unable to read session, cause %w", err)
	}
	accountID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return accountID, nil
}

func (r *RedisSessions) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("unable to destroy session, cause %w", err)
	}
	return nil
}
