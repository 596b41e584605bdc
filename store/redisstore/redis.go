// Package redisstore keeps auth screen user state in Redis, one hash per user.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-authscreen"
)

// DefaultKeyPrefix is prepended to every user hash key
const DefaultKeyPrefix = "authscreen:"

const (
	fieldUID         = "uid"
	fieldEmail       = "email"
	fieldDisplayName = "display_name"
	fieldLastAction  = "last_action"
	fieldOccurredAt  = "occurred_at"
)

// Config contains configuration options for the Redis user state
type Config struct {
	// Client is the Redis client instance
	Client *redis.Client

	// KeyPrefix is the prefix for all Redis keys
	// Default: DefaultKeyPrefix
	KeyPrefix string

	// TTL expires idle user records (optional). Zero keeps them forever.
	TTL time.Duration
}

// Store implements authscreen.UserState
type Store struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

var _ authscreen.UserState = (*Store)(nil)

// New creates a Redis backed user state
func New(config Config) (*Store, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultKeyPrefix
	}

	return &Store{
		client:    config.Client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

// Dispatch implements authscreen.UserState.
func (s *Store) Dispatch(ctx context.Context, action authscreen.UserAction) error {
	if action.User.UID == "" {
		return authscreen.ErrUserNotFound
	}

	key := s.buildKey(action.User.UID)

	occurredAt := action.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldUID, action.User.UID,
			fieldEmail, action.User.Email,
			fieldDisplayName, action.User.DisplayName,
			fieldLastAction, string(action.Type),
			fieldOccurredAt, occurredAt.UTC().Format(time.RFC3339Nano),
		)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store user %s: %w", key, err)
	}

	return nil
}

// Lookup implements authscreen.UserState.
func (s *Store) Lookup(ctx context.Context, uid string) (*authscreen.UserIdentity, error) {
	if uid == "" {
		return nil, authscreen.ErrUserNotFound
	}

	key := s.buildKey(uid)

	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", key, err)
	}

	if len(values) == 0 {
		return nil, authscreen.ErrUserNotFound
	}

	return &authscreen.UserIdentity{
		UID:         values[fieldUID],
		Email:       values[fieldEmail],
		DisplayName: values[fieldDisplayName],
	}, nil
}

// LastAction returns the last action dispatched for uid
func (s *Store) LastAction(ctx context.Context, uid string) (authscreen.UserActionType, error) {
	action, err := s.client.HGet(ctx, s.buildKey(uid), fieldLastAction).Result()
	if err == redis.Nil {
		return "", authscreen.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return authscreen.UserActionType(action), nil
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) buildKey(uid string) string {
	return s.keyPrefix + "user:" + uid
}
