// Package services provides technical concerns shared by the handlers, like JWT token management
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid symmetric key configuration",
			useRSAKeys:  false,
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing secret key",
			useRSAKeys:  false,
			secretKey:   "",
			expectError: true,
		},
		{
			name:        "missing RSA keys",
			useRSAKeys:  true,
			secretKey:   "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				15*time.Minute,
				7*24*time.Hour,
				"test-issuer",
				"test-audience",
				tt.useRSAKeys,
				"",
				"",
				tt.secretKey,
			)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(123)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)
}

func TestValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
	})

	t.Run("valid refresh token", func(t *testing.T) {
		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("token from a different issuer", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute, 7*24*time.Hour,
			"some-other-issuer", "test-audience",
			false, "", "", "test-secret-key-for-jwt-signing-32-chars",
		)
		require.NoError(t, err)

		foreign, _, err := other.GenerateTokens(42)
		require.NoError(t, err)

		_, err = service.ValidateToken(foreign)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("token for a different audience", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute, 7*24*time.Hour,
			"test-issuer", "some-other-audience",
			false, "", "", "test-secret-key-for-jwt-signing-32-chars",
		)
		require.NoError(t, err)

		foreign, _, err := other.GenerateTokens(42)
		require.NoError(t, err)

		_, err = service.ValidateToken(foreign)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute, 7*24*time.Hour,
			"test-issuer", "test-audience",
			false, "", "", "a-completely-different-secret-key-here",
		)
		require.NoError(t, err)

		foreign, _, err := other.GenerateTokens(42)
		require.NoError(t, err)

		_, err = service.ValidateToken(foreign)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestExpiredToken(t *testing.T) {
	service, err := NewTokenService(
		-1*time.Minute, // already expired
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, "", "",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)

	accessToken, _, err := service.GenerateTokens(7)
	require.NoError(t, err)

	_, err = service.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(99)
	require.NoError(t, err)

	t.Run("refresh with refresh token", func(t *testing.T) {
		newAccess, newRefresh, err := service.RefreshToken(refreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)

		claims, err := service.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(99), claims.UserID)
	})

	t.Run("refresh with access token fails", func(t *testing.T) {
		_, _, err := service.RefreshToken(accessToken)
		assert.Error(t, err)
	})
}

func TestRevokeToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, _, err := service.GenerateTokens(5)
	require.NoError(t, err)

	_, err = service.ValidateToken(accessToken)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(accessToken))
	assert.True(t, service.IsTokenRevoked(accessToken))

	_, err = service.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revoking twice is a no-op
	assert.NoError(t, service.RevokeToken(accessToken))
}
