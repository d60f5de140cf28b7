// Package redis keeps signed-out session ids in Redis so every API instance
// rejects them until the token would have expired anyway.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/deskfolio/deskfolio/shared/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "deskfolio:revoked:"

type RevocationStore struct {
	client *redis.Client
	now    func() time.Time
}

func New(ctx context.Context, cfg config.Redis) (*RevocationStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return &RevocationStore{client: client, now: time.Now}, nil
}

// Revoke marks tokenId as signed out until expiresAt. Already expired
// tokens need no entry.
func (s *RevocationStore) Revoke(ctx context.Context, tokenId string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, keyPrefix+tokenId, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+tokenId).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RevocationStore) Close() error {
	return s.client.Close()
}
