package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nvoloshin/userhub/internal/infrastructure/config"
)

// minRevocationTTL keeps an entry alive briefly even when the token has
// already expired, so in-flight requests carrying it still see the ban.
const minRevocationTTL = time.Minute

// revocationKeyPrefix namespaces revocation entries so the store can share
// a Redis database with other keyspaces.
const revocationKeyPrefix = "blacklist:"

// RevocationStore records tokens that must never validate again.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Blacklist is a Redis-backed revocation store. Entries are keyed on the
// prefixed token string and expire together with the token itself, so the
// set never grows beyond the population of live revoked tokens.
type Blacklist struct {
	client *redis.Client
}

// revocationKey builds the Redis key for a banned token.
func revocationKey(token string) string {
	return revocationKeyPrefix + token
}

// NewBlacklist connects a revocation store to Redis.
func NewBlacklist(cfg config.RedisConfig) *Blacklist {
	return &Blacklist{client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// NewBlacklistFromClient wraps an existing Redis client. Used by tests.
func NewBlacklistFromClient(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// Revoke bans a token until it would have expired anyway. Revoking an
// already-revoked token is a no-op, not an error.
func (b *Blacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}

	if err := b.client.Set(ctx, revocationKey(token), expiresAt.UTC().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBlacklistUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether a token has been banned.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := b.client.Get(ctx, revocationKey(token)).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: %w", ErrBlacklistUnavailable, err)
	}
	return true, nil
}

// Ping verifies the Redis connection is alive.
func (b *Blacklist) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBlacklistUnavailable, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (b *Blacklist) Close() error {
	return b.client.Close()
}
