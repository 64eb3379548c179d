package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *JWTValidator {
	t.Helper()
	validator, err := NewJWTValidator(JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "vyb-history",
	})
	require.NoError(t, err)
	return validator
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	validator := newTestValidator(t)

	token, err := validator.GenerateToken("user-123", "user@example.com", []string{"editor"}, time.Hour)
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, []string{"editor"}, claims.Roles)
}

func TestJWTValidator_RejectsExpired(t *testing.T) {
	validator := newTestValidator(t)

	token, err := validator.GenerateToken("user-123", "", nil, -time.Minute)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidator_RejectsWrongSecret(t *testing.T) {
	validator := newTestValidator(t)
	other, err := NewJWTValidator(JWTConfig{SecretKey: "other-secret", Issuer: "vyb-history"})
	require.NoError(t, err)

	token, err := other.GenerateToken("user-123", "", nil, time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTValidator_RejectsWrongIssuer(t *testing.T) {
	validator := newTestValidator(t)
	other, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)

	token, err := other.GenerateToken("user-123", "", nil, time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestJWTValidator_RejectsGarbage(t *testing.T) {
	validator := newTestValidator(t)
	_, err := validator.ValidateToken("not.a.token")
	assert.Error(t, err)
}
