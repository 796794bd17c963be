package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
)

const (
	sessionKeyPrefix = "tekhe:session:"
	loginTimeSuffix  = ":login_at"
)

type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
}

type sessionRepository struct {
	client *redis.Client
}

// NewSessionRepository stores one session per user under two keys: the
// identity blob and the login timestamp, both expiring with the session
// lifetime.
func NewSessionRepository(client *redis.Client) repository.SessionRepository {
	return &sessionRepository{client: client}
}

// NewClient connects the shared redis client used by the session store,
// the event broker and the readiness probe.
func NewClient(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *model.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKeyPrefix + session.UserID.String()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, payload, ttl)
	pipe.Set(ctx, key+loginTimeSuffix, session.LoginAt.Format(time.RFC3339), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+userID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	key := sessionKeyPrefix + userID.String()
	if err := r.client.Del(ctx, key, key+loginTimeSuffix).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// All scans every stored session. Used by the expiry sweeper only, so a
// SCAN-based walk is acceptable.
func (r *sessionRepository) All(ctx context.Context) ([]*model.Session, error) {
	var sessions []*model.Session
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if len(key) > len(loginTimeSuffix) && key[len(key)-len(loginTimeSuffix):] == loginTimeSuffix {
			continue
		}
		raw, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", key, err)
		}
		var session model.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			continue
		}
		sessions = append(sessions, &session)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("session scan failed: %w", err)
	}
	return sessions, nil
}
