package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
)

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "iicpas", time.Hour)
	id := uuid.New()

	token, err := m.Generate(id, []string{"student"})
	require.NoError(t, err)

	claims, err := m.AccessClaims(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, []string{"student"}, claims.Roles)
	assert.Equal(t, AccessTokenType, claims.TokenType)
}

func TestJWTManagerRejects(t *testing.T) {
	m := NewJWTManager("secret", "iicpas", time.Hour)
	token, err := m.Generate(uuid.New(), nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		manager *JWTManager
		token   string
	}{
		{"wrong secret", NewJWTManager("other", "iicpas", time.Hour), token},
		{"wrong issuer", NewJWTManager("secret", "someone", time.Hour), token},
		{"garbage", m, "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.AccessClaims(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTManagerExpired(t *testing.T) {
	m := NewJWTManager("secret", "iicpas", -time.Minute)
	token, err := m.Generate(uuid.New(), nil)
	require.NoError(t, err)

	_, err = m.AccessClaims(token)
	assert.ErrorIs(t, err, app_errors.ErrTokenExpired)
}

func TestJWTManagerUniqueTokenIDs(t *testing.T) {
	m := NewJWTManager("secret", "iicpas", time.Hour)
	id := uuid.New()

	first, err := m.Generate(id, []string{"admin"})
	require.NoError(t, err)
	second, err := m.Generate(id, []string{"admin"})
	require.NoError(t, err)

	a, err := m.AccessClaims(first)
	require.NoError(t, err)
	b, err := m.AccessClaims(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, id.String(), a.Subject)
}
