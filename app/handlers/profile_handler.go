package handlers

import (
	"log"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ProfileHandlerInterface defines the contract for profile handlers
type ProfileHandlerInterface interface {
	GetProfile(c fiber.Ctx) error
	UpdateProfile(c fiber.Ctx) error
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileFlow businessflow.ProfileFlow
	validator   *validator.Validate
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileFlow businessflow.ProfileFlow) *ProfileHandler {
	return &ProfileHandler{
		profileFlow: profileFlow,
		validator:   validator.New(),
	}
}

// GetProfile returns the authenticated user's profile
func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.profileFlow.GetProfile(createRequestContext(c, "/api/v1/profile"), userID)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return ErrorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Get profile failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load profile", "GET_PROFILE_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Profile loaded", result)
}

// UpdateProfile applies partial profile changes
func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.profileFlow.UpdateProfile(createRequestContext(c, "/api/v1/profile"), &req, metadata)
	if err != nil {
		if businessflow.IsEmailAlreadyExists(err) {
			return ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsIncorrectPassword(err) {
			return ErrorResponse(c, fiber.StatusBadRequest, "Current password is incorrect", "INCORRECT_PASSWORD", nil)
		}
		if businessflow.IsCurrentPasswordNeeded(err) {
			return ErrorResponse(c, fiber.StatusBadRequest, "Current password is required to change password", "CURRENT_PASSWORD_REQUIRED", nil)
		}
		if businessflow.IsUserNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Update profile failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Profile update failed", "UPDATE_PROFILE_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Profile updated", result)
}
