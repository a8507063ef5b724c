package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// TokenManager issues and verifies opaque bearer tokens backed by Redis.
type TokenManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, ttl time.Duration) *TokenManager {
	return &TokenManager{client: client, ttl: ttl}
}

// Issue stores the principal under a fresh token and returns it.
func (tm *TokenManager) Issue(ctx context.Context, principal Principal) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(principal)
	if err != nil {
		return "", err
	}
	if err := tm.client.Set(ctx, tm.key(token), payload, tm.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return token, nil
}

// Verify resolves a bearer token to its principal.
func (tm *TokenManager) Verify(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, httpx.ErrUnauthorized
	}
	payload, err := tm.client.Get(ctx, tm.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Principal{}, httpx.ErrUnauthorized
		}
		return Principal{}, fmt.Errorf("auth: load token: %w", err)
	}
	var principal Principal
	if err := json.Unmarshal(payload, &principal); err != nil {
		return Principal{}, httpx.ErrUnauthorized
	}
	return principal, nil
}

// Revoke invalidates a token immediately.
func (tm *TokenManager) Revoke(ctx context.Context, token string) error {
	if err := tm.client.Del(ctx, tm.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

func (tm *TokenManager) key(token string) string {
	return "token:" + token
}
