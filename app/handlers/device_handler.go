package handlers

import (
	"log"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// DeviceHandlerInterface defines the contract for owner-facing device handlers
type DeviceHandlerInterface interface {
	MintRegistrationToken(c fiber.Ctx) error
	ListDevices(c fiber.Ctx) error
	DeleteDevice(c fiber.Ctx) error
}

// DeviceHandler handles owner-facing device management requests
type DeviceHandler struct {
	deviceFlow businessflow.DeviceFlow
	validator  *validator.Validate
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(deviceFlow businessflow.DeviceFlow) *DeviceHandler {
	return &DeviceHandler{
		deviceFlow: deviceFlow,
		validator:  validator.New(),
	}
}

// MintRegistrationToken creates a short-lived token a device can redeem
func (h *DeviceHandler) MintRegistrationToken(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.MintRegistrationTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.deviceFlow.MintRegistrationToken(createRequestContext(c, "/api/v1/devices/token"), &req, metadata)
	if err != nil {
		if businessflow.IsContactNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Contact not found", "CONTACT_NOT_FOUND", nil)
		}

		log.Println("Mint registration token failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mint registration token", "MINT_TOKEN_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusCreated, "Registration token minted", result)
}

// ListDevices returns the user's registered devices
func (h *DeviceHandler) ListDevices(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.deviceFlow.ListDevices(createRequestContext(c, "/api/v1/devices"), userID)
	if err != nil {
		log.Println("List devices failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list devices", "LIST_DEVICES_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Devices loaded", result)
}

// DeleteDevice removes a registered device
func (h *DeviceHandler) DeleteDevice(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	deviceID, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid device id", "INVALID_DEVICE_ID", nil)
	}

	if err := h.deviceFlow.DeleteDevice(createRequestContext(c, "/api/v1/devices/:id"), userID, deviceID); err != nil {
		if businessflow.IsDeviceNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Device not found", "DEVICE_NOT_FOUND", nil)
		}

		log.Println("Delete device failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete device", "DELETE_DEVICE_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Device deleted", nil)
}
