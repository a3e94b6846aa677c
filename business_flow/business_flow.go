// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
)

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User) dto.AuthUserDTO {
	d := dto.AuthUserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Name:      user.Name,
		Email:     user.Email,
		IsActive:  utils.IsTrue(user.IsActive),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		d.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	return d
}

// ToSessionDTO converts a session model to SessionDTO
func ToSessionDTO(session models.UserSession) dto.SessionDTO {
	refresh := ""
	if session.RefreshToken != nil {
		refresh = *session.RefreshToken
	}
	return dto.SessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: refresh,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToContactDTO converts a contact model to ContactDTO
func ToContactDTO(contact models.Contact) dto.ContactDTO {
	return dto.ContactDTO{
		ID:          contact.ID,
		Name:        contact.Name,
		PhoneNumber: contact.PhoneNumber,
		CreatedAt:   contact.CreatedAt.Format(time.RFC3339),
	}
}

// ToBatchDTO converts a batch model (with LinksCount populated) to BatchDTO
func ToBatchDTO(batch models.Batch) dto.BatchDTO {
	d := dto.BatchDTO{
		ID:         batch.ID,
		Label:      batch.Label,
		Capacity:   batch.Capacity,
		LinksCount: batch.LinksCount,
	}
	if batch.Contact != nil {
		c := ToContactDTO(*batch.Contact)
		d.Contact = &c
	}
	return d
}

// getUser loads an active user or returns the matching sentinel error
func getUser(ctx context.Context, repo repository.UserRepository, userID uint) (models.User, error) {
	user, err := repo.ByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, ErrUserNotFound
	}
	if !utils.IsTrue(user.IsActive) {
		return models.User{}, ErrAccountInactive
	}
	return *user, nil
}

// createAuditLog appends an audit row; audit failures never fail the caller
func createAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, userID *uint, action, description string, success bool, errorMessage *string, metadata *ClientMetadata) error {
	if auditRepo == nil {
		return nil
	}
	row := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  utils.ToPtr(description),
		Success:      utils.ToPtr(success),
		ErrorMessage: errorMessage,
		CreatedAt:    utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			row.IPAddress = utils.ToPtr(metadata.IPAddress)
		}
		if metadata.UserAgent != "" {
			row.UserAgent = utils.ToPtr(metadata.UserAgent)
		}
		if metadata.RequestID != "" {
			row.RequestID = utils.ToPtr(metadata.RequestID)
		}
	}
	return auditRepo.Save(ctx, row)
}
