package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "circle:session:"
	// WATCH conflicts tolerated per Update.
	redisUpdateRetries = 20
)

// RedisRepo stores each session as a JSON value with a sliding TTL.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Repo = (*RedisRepo)(nil)

func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

// ConnectRedis opens a client and pings it so a bad address fails at start-up.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	data, err := r.client.Get(ctx, redisKey(sessionID)).Bytes()
	if err == redis.Nil {
		return Session{}, errors.ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (r *RedisRepo) Upsert(ctx context.Context, sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Update runs fn inside WATCH/MULTI and retries when another writer changed
// the session first.
func (r *RedisRepo) Update(ctx context.Context, sessionID string, fn UpdateFunc) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	key := redisKey(sessionID)

	txf := func(tx *redis.Tx) error {
		var session Session
		exists := true
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			exists = false
		case err != nil:
			return fmt.Errorf("redis get session: %w", err)
		default:
			if err := json.Unmarshal(data, &session); err != nil {
				return fmt.Errorf("decode session: %w", err)
			}
		}

		keep := fn(&session, exists)
		var encoded []byte
		if keep {
			if encoded, err = json.Marshal(session); err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if !keep {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < redisUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update session: %w", err)
		}
		return nil
	}
	return fmt.Errorf("redis update session %s: too much contention", sessionID)
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if err := r.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
