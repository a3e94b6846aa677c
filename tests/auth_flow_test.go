// Package tests contains integration tests for the auth flows
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/app/services"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/hanifmaulana/distrolink/repository"
	testingutil "github.com/hanifmaulana/distrolink/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) services.TokenService {
	t.Helper()
	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour, "test-issuer", "test-audience",
		false, "", "", "test-secret-key-which-is-long-enough",
	)
	require.NoError(t, err)
	return tokenService
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
}

func TestSignupFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		userRepo := repository.NewUserRepository(testDB.DB)
		sessionRepo := repository.NewUserSessionRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		signupFlow := businessflow.NewSignupFlow(userRepo, sessionRepo, auditRepo, newTestTokenService(t), testDB.DB)

		t.Run("SuccessfulRegistration", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Name:            "Hanif Maulana",
				Email:           "hanif@example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
			}

			result, err := signupFlow.Register(context.Background(), req, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, "Hanif Maulana", result.User.Name)
			assert.Equal(t, "hanif@example.com", result.User.Email)
			assert.True(t, result.User.IsActive)
			assert.NotEmpty(t, result.User.UUID)
			assert.NotEmpty(t, result.Session.SessionToken)
			assert.NotEmpty(t, result.Session.RefreshToken)
			assert.Equal(t, "Bearer", result.Session.TokenType)

			// Session row persisted and active
			session, err := sessionRepo.BySessionToken(context.Background(), result.Session.SessionToken)
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.True(t, session.IsValid())
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Name:            "Impostor",
				Email:           "hanif@example.com",
				Password:        "AnotherPass123!",
				ConfirmPassword: "AnotherPass123!",
			}

			result, err := signupFlow.Register(context.Background(), req, testMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		userRepo := repository.NewUserRepository(testDB.DB)
		sessionRepo := repository.NewUserSessionRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		loginFlow := businessflow.NewLoginFlow(userRepo, sessionRepo, auditRepo, newTestTokenService(t), testDB.DB)

		t.Run("SuccessfulLogin", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			result, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, user.ID, result.User.ID)
			assert.Equal(t, user.Email, result.User.Email)
			assert.NotEmpty(t, result.Session.SessionToken)

			// Last login timestamp is bumped
			updated, err := userRepo.ByID(context.Background(), user.ID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.NotNil(t, updated.LastLoginAt)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			result, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "WrongPass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownEmail", func(t *testing.T) {
			result, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    "nobody@example.com",
				Password: "TestPass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("LogoutDeactivatesSession", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			loginResult, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, testMetadata())
			require.NoError(t, err)

			_, err = loginFlow.Logout(context.Background(), loginResult.Session.SessionToken, testMetadata())
			require.NoError(t, err)

			session, err := sessionRepo.BySessionToken(context.Background(), loginResult.Session.SessionToken)
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.False(t, session.IsValid())
		})

		return nil
	})
	require.NoError(t, err)
}
