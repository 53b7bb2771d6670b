// internal/common/auth/session.go
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"raiox-platform/internal/common/config"
	"raiox-platform/internal/common/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore is the single-user back-office session gate. Sessions are
// opaque random tokens kept in Redis with a server-side TTL; a session is
// either present (authenticated) or absent.
type SessionStore struct {
	rdb    *redis.Client
	cfg    config.AdminConfig
	prefix string
	ttl    time.Duration
}

func NewSessionStore(rdb *redis.Client, cfg config.AdminConfig) *SessionStore {
	return &SessionStore{
		rdb:    rdb,
		cfg:    cfg,
		prefix: cfg.SessionPrefix,
		ttl:    time.Duration(cfg.SessionTTL) * time.Second,
	}
}

// Login checks the credentials and mints a new session token. The compare
// is constant-time on both fields so failures don't leak which one was
// wrong.
func (s *SessionStore) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	if !userOK || !passOK {
		return "", errors.NewAuthenticationError("invalid credentials")
	}

	token := uuid.NewString()
	if err := s.rdb.Set(ctx, s.key(token), time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Validate reports whether the token belongs to a live session and slides
// its expiry forward.
func (s *SessionStore) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	exists, err := s.rdb.Expire(ctx, s.key(token), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return exists, nil
}

// Logout drops the session. Unknown tokens are not an error.
func (s *SessionStore) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(token string) string {
	return s.prefix + token
}
