package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
	"gorm.io/gorm"
)

// ProfileFlow handles reading and updating the authenticated user's profile
type ProfileFlow interface {
	GetProfile(ctx context.Context, userID uint) (*dto.AuthUserDTO, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UpdateProfileResponse, error)
}

// ProfileFlowImpl implements the profile business flow
type ProfileFlowImpl struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
	db        *gorm.DB
}

// NewProfileFlow creates a new profile flow instance
func NewProfileFlow(
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ProfileFlow {
	return &ProfileFlowImpl{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		db:        db,
	}
}

// GetProfile returns the active user's profile
func (pf *ProfileFlowImpl) GetProfile(ctx context.Context, userID uint) (*dto.AuthUserDTO, error) {
	user, err := getUser(ctx, pf.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to load profile", err)
	}

	d := ToAuthUserDTO(user)
	return &d, nil
}

// UpdateProfile applies partial profile changes. Changing the password
// requires the current one.
func (pf *ProfileFlowImpl) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UpdateProfileResponse, error) {
	var user models.User

	err := repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		var err error
		user, err = getUser(txCtx, pf.userRepo, req.UserID)
		if err != nil {
			return err
		}

		if req.Email != nil && *req.Email != user.Email {
			existing, err := pf.userRepo.ByEmail(txCtx, *req.Email)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != user.ID {
				return ErrEmailAlreadyExists
			}
			user.Email = *req.Email
		}

		if req.Name != nil {
			user.Name = *req.Name
		}

		if req.Password != nil {
			if req.CurrentPassword == nil {
				return ErrCurrentPasswordNeeded
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*req.CurrentPassword)); err != nil {
				return ErrIncorrectPassword
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user.PasswordHash = string(hash)
		}

		user.UpdatedAt = utils.UTCNow()
		return pf.userRepo.Update(txCtx, &user)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Profile update failed: %s", err.Error())
		_ = createAuditLog(ctx, pf.auditRepo, &req.UserID, models.AuditActionProfileUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("UPDATE_PROFILE_FAILED", "Profile update failed", err)
	}

	_ = createAuditLog(ctx, pf.auditRepo, &user.ID, models.AuditActionProfileUpdated, "Profile updated", true, nil, metadata)

	return &dto.UpdateProfileResponse{User: ToAuthUserDTO(user)}, nil
}
