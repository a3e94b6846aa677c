// Package businessflow contains the core business logic and use cases for the link distribution workflows
package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/app/services"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
	"gorm.io/gorm"
)

// LoginFlow handles user authentication
type LoginFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates a user with email and password
func (lf *LoginFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var user *models.User
	var session *models.UserSession

	err := repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		var err error
		user, err = lf.userRepo.ByEmail(txCtx, req.Email)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if !utils.IsTrue(user.IsActive) {
			return ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			return ErrIncorrectPassword
		}

		session, err = createSession(txCtx, lf.sessionRepo, lf.tokenService, user.ID, metadata)
		if err != nil {
			return err
		}

		return lf.userRepo.UpdateLastLogin(txCtx, user.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		var userID *uint
		if user != nil {
			userID = &user.ID
		}
		_ = createAuditLog(ctx, lf.auditRepo, userID, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("User logged in successfully: %d", user.ID)
	_ = createAuditLog(ctx, lf.auditRepo, &user.ID, models.AuditActionLoginSuccessful, msg, true, nil, metadata)

	return &dto.LoginResponse{
		User:    ToAuthUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

// Logout deactivates the session that presented the given token
func (lf *LoginFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	var userID *uint

	err := repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		session, err := lf.sessionRepo.BySessionToken(txCtx, sessionToken)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}
		userID = &session.UserID

		return lf.sessionRepo.Deactivate(txCtx, session.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Logout failed: %s", err.Error())
		_ = createAuditLog(ctx, lf.auditRepo, userID, models.AuditActionLogout, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	_ = createAuditLog(ctx, lf.auditRepo, userID, models.AuditActionLogout, "User logged out", true, nil, metadata)

	return &dto.LogoutResponse{Message: "Logged out"}, nil
}
