package handlers

import (
	"log"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// PwaHandlerInterface defines the contract for device-facing handlers
type PwaHandlerInterface interface {
	Claim(c fiber.Ctx) error
	Batches(c fiber.Ctx) error
	UpdateLinkStatus(c fiber.Ctx) error
	CompleteBatch(c fiber.Ctx) error
}

// PwaHandler handles requests coming from PWA devices. Claim is public
// (the registration token is the credential); everything else runs
// behind the device-token middleware.
type PwaHandler struct {
	deviceFlow businessflow.DeviceFlow
	validator  *validator.Validate
}

// NewPwaHandler creates a new PWA handler
func NewPwaHandler(deviceFlow businessflow.DeviceFlow) *PwaHandler {
	return &PwaHandler{
		deviceFlow: deviceFlow,
		validator:  validator.New(),
	}
}

// Claim redeems a registration token for a device credential
func (h *PwaHandler) Claim(c fiber.Ctx) error {
	var req dto.ClaimDeviceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.deviceFlow.Claim(createRequestContext(c, "/api/v1/pwa/claim"), &req, metadata)
	if err != nil {
		if businessflow.IsRegistrationTokenNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Registration token not found", "TOKEN_NOT_FOUND", nil)
		}
		if businessflow.IsRegistrationTokenExpired(err) {
			return ErrorResponse(c, fiber.StatusGone, "Registration token has expired", "TOKEN_EXPIRED", nil)
		}
		if businessflow.IsRegistrationTokenUsed(err) {
			return ErrorResponse(c, fiber.StatusConflict, "Registration token already used", "TOKEN_USED", nil)
		}

		log.Println("Device claim failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to claim device", "CLAIM_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Device claimed", result)
}

// Batches returns the batches assigned to the device's contact
func (h *PwaHandler) Batches(c fiber.Ctx) error {
	deviceID, ok := currentDeviceID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Device authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.deviceFlow.PwaBatches(createRequestContext(c, "/api/v1/pwa/batches"), deviceID)
	if err != nil {
		if businessflow.IsDeviceNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Device not found", "DEVICE_NOT_FOUND", nil)
		}
		if businessflow.IsDeviceContactNotAssigned(err) {
			return ErrorResponse(c, fiber.StatusConflict, "Device has no assigned contact", "NO_CONTACT_ASSIGNED", nil)
		}

		log.Println("PWA batches failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load batches", "PWA_BATCHES_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Batches loaded", result)
}

// UpdateLinkStatus records the device's processing outcome for one link
func (h *PwaHandler) UpdateLinkStatus(c fiber.Ctx) error {
	deviceID, ok := currentDeviceID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Device authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateLinkStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.DeviceID = deviceID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.deviceFlow.UpdateLinkStatus(createRequestContext(c, "/api/v1/pwa/links/status"), &req)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsLinkNotOwnedByDevice(err) {
			return ErrorResponse(c, fiber.StatusForbidden, "Link does not belong to this device", "LINK_NOT_OWNED", nil)
		}
		if businessflow.IsDeviceNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Device not found", "DEVICE_NOT_FOUND", nil)
		}

		log.Println("Update link status failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update link status", "UPDATE_LINK_STATUS_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, nil)
}

// CompleteBatch marks the device's batch as fully processed
func (h *PwaHandler) CompleteBatch(c fiber.Ctx) error {
	deviceID, ok := currentDeviceID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Device authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CompleteBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.DeviceID = deviceID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.deviceFlow.CompleteBatch(createRequestContext(c, "/api/v1/pwa/batches/complete"), &req)
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsDeviceNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Device not found", "DEVICE_NOT_FOUND", nil)
		}
		if businessflow.IsDeviceContactNotAssigned(err) {
			return ErrorResponse(c, fiber.StatusConflict, "Device has no assigned contact", "NO_CONTACT_ASSIGNED", nil)
		}

		log.Println("Complete batch failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to complete batch", "COMPLETE_BATCH_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, nil)
}
