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
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignupFlow handles account registration
type SignupFlow interface {
	Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Register creates a new owner account and opens its first session
func (s *SignupFlowImpl) Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error) {
	var user *models.User
	var session *models.UserSession

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.userRepo.ByEmail(txCtx, req.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user = &models.User{
			UUID:         uuid.New(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			IsActive:     utils.ToPtr(true),
			CreatedAt:    utils.UTCNow(),
			UpdatedAt:    utils.UTCNow(),
		}
		if err := s.userRepo.Save(txCtx, user); err != nil {
			return err
		}

		session, err = createSession(txCtx, s.sessionRepo, s.tokenService, user.ID, metadata)
		return err
	})

	if err != nil {
		errMsg := fmt.Sprintf("Registration failed: %s", err.Error())
		_ = createAuditLog(ctx, s.auditRepo, nil, models.AuditActionSignupCompleted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("REGISTRATION_FAILED", "Registration failed", err)
	}

	msg := fmt.Sprintf("Account registered successfully: %d", user.ID)
	_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionSignupCompleted, msg, true, nil, metadata)

	return &dto.RegisterResponse{
		User:    ToAuthUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

// createSession mints tokens and persists a new session row
func createSession(ctx context.Context, sessionRepo repository.UserSessionRepository, tokenService services.TokenService, userID uint, metadata *ClientMetadata) (*models.UserSession, error) {
	accessToken, refreshToken, err := tokenService.GenerateTokens(userID)
	if err != nil {
		return nil, err
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.UserSession{
		UserID:         userID,
		SessionToken:   accessToken,
		RefreshToken:   &refreshToken,
		IPAddress:      &ipAddress,
		UserAgent:      &userAgent,
		IsActive:       utils.ToPtr(true),
		CreatedAt:      utils.UTCNow(),
		LastAccessedAt: utils.UTCNow(),
		ExpiresAt:      utils.UTCNowAdd(utils.SessionTimeout),
	}

	if err := sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
