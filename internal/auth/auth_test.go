package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

func newAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()
	store, err := sqlite.New(config.DBConfig{Path: filepath.Join(t.TempDir(), "auth.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator(t)

	user, err := a.Register(ctx, " Alice@Example.com ", "", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.DisplayName)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	got, err := a.Authenticate(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = a.Authenticate(ctx, "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator(t)

	_, err := a.Register(ctx, "bob@example.com", "Bob", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = a.Register(ctx, "not-an-email", "Bob", "long enough")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = a.Register(ctx, "bob@example.com", "Bob", "long enough")
	require.NoError(t, err)
	_, err = a.Register(ctx, "BOB@example.com", "Bob", "long enough")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestJWT(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	user := &models.User{ID: "u1", Email: "u1@example.com"}

	token, expires, err := m.Generate(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
	assert.Equal(t, "u1@example.com", claims.Email)

	_, err = NewJWTManager("other", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Generate(user)
	require.NoError(t, err)
	_, err = m.Validate(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
