package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/fox-and-geese/game/service"
)

const sessionKeyPrefix = "session:"

// RedisPersistence stores each session as a JSON document under session:<id>
type RedisPersistence struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to addr and checks the connection
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if _, err := conn.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return conn, nil
}

// NewRedisPersistence wraps client. A zero ttl keeps sessions until deleted;
// otherwise every save refreshes the expiry.
func NewRedisPersistence(client *redis.Client, ttl time.Duration) *RedisPersistence {
	return &RedisPersistence{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (rp *RedisPersistence) Save(ctx context.Context, session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if !validID(session.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, session.ID)
	}

	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	if err := rp.client.Set(ctx, sessionKey(session.ID), data, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session in Redis: %w", err)
	}
	return nil
}

func (rp *RedisPersistence) Load(ctx context.Context, id string) (*service.Session, error) {
	val, err := rp.client.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	session, err := decodeSession([]byte(val))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return session, nil
}

func (rp *RedisPersistence) Delete(ctx context.Context, id string) error {
	n, err := rp.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll walks the session keys with SCAN
func (rp *RedisPersistence) ListAll(ctx context.Context) ([]string, error) {
	var ids []string
	iter := rp.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions in Redis: %w", err)
	}
	return ids, nil
}

func (rp *RedisPersistence) Exists(ctx context.Context, id string) bool {
	n, err := rp.client.Exists(ctx, sessionKey(id)).Result()
	return err == nil && n > 0
}
