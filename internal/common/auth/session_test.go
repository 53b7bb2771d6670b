// internal/common/auth/session_test.go
package auth

import (
	"context"
	"testing"
	"time"

	"raiox-platform/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewSessionStore(rdb, config.AdminConfig{
		Username:      "admin",
		Password:      "s3cret",
		SessionTTL:    60,
		SessionPrefix: "admin:session:",
	})
	return store, mr
}

func TestSessionStore_LoginAndValidate(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	token, err := store.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := store.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionStore_LoginRejectsBadCredentials(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "admin", password: "wrong"},
		{name: "wrong username", username: "root", password: "s3cret"},
		{name: "both empty", username: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := store.Login(ctx, tt.username, tt.password)
			assert.Error(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestSessionStore_ValidateUnknownToken(t *testing.T) {
	store, _ := setupStore(t)

	ok, err := store.Validate(context.Background(), "not-a-session")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStore_ValidateSlidesExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	token, err := store.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	// Session survives as long as it keeps being validated.
	mr.FastForward(45 * time.Second)
	ok, err := store.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(45 * time.Second)
	ok, err = store.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	// But dies once the TTL elapses without traffic.
	mr.FastForward(61 * time.Second)
	ok, err = store.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStore_Logout(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	token, err := store.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	require.NoError(t, store.Logout(ctx, token))

	ok, err := store.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	// Logging out twice is harmless.
	assert.NoError(t, store.Logout(ctx, token))
}
