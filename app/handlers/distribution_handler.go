package handlers

import (
	"log"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// DistributionHandlerInterface defines the contract for distribution handlers
type DistributionHandlerInterface interface {
	GetState(c fiber.Ctx) error
	ResizeBatches(c fiber.Ctx) error
	Distribute(c fiber.Ctx) error
	UpdateBatch(c fiber.Ctx) error
	ListBatchLinks(c fiber.Ctx) error
	MarkSent(c fiber.Ctx) error
}

// DistributionHandler handles distribution-related HTTP requests
type DistributionHandler struct {
	distributionFlow businessflow.DistributionFlow
	deliveryFlow     businessflow.DeliveryFlow
	validator        *validator.Validate
}

// NewDistributionHandler creates a new distribution handler
func NewDistributionHandler(distributionFlow businessflow.DistributionFlow, deliveryFlow businessflow.DeliveryFlow) *DistributionHandler {
	return &DistributionHandler{
		distributionFlow: distributionFlow,
		deliveryFlow:     deliveryFlow,
		validator:        validator.New(),
	}
}

// GetState returns the pool count, batches and contacts
func (h *DistributionHandler) GetState(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.distributionFlow.GetState(createRequestContext(c, "/api/v1/distribution/state"), userID)
	if err != nil {
		log.Println("Get distribution state failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load distribution state", "GET_STATE_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Distribution state loaded", result)
}

// ResizeBatches grows or shrinks the batch registry
func (h *DistributionHandler) ResizeBatches(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ResizeBatchesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.distributionFlow.ResizeBatches(createRequestContext(c, "/api/v1/distribution/setup-batches"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidBatchCount(err) {
			return ErrorResponse(c, fiber.StatusBadRequest, "Desired batch count is invalid", "INVALID_BATCH_COUNT", nil)
		}
		if businessflow.IsOwnerLockBusy(err) {
			return ErrorResponse(c, fiber.StatusLocked, "Another operation is in progress", "OWNER_BUSY", nil)
		}

		log.Println("Resize batches failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resize batches", "RESIZE_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Distribute runs one allocation pass over the pool
func (h *DistributionHandler) Distribute(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.distributionFlow.Distribute(createRequestContext(c, "/api/v1/distribution/distribute"), userID, metadata)
	if err != nil {
		if businessflow.IsOwnerLockBusy(err) {
			return ErrorResponse(c, fiber.StatusLocked, "Another operation is in progress", "OWNER_BUSY", nil)
		}

		log.Println("Distribute failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to distribute links", "DISTRIBUTE_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// UpdateBatch changes a batch's capacity and/or contact
func (h *DistributionHandler) UpdateBatch(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	batchID, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch id", "INVALID_BATCH_ID", nil)
	}

	var req dto.UpdateBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID
	req.BatchID = batchID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.distributionFlow.UpdateBatch(createRequestContext(c, "/api/v1/distribution/batch/:id"), &req, metadata)
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsContactNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Contact not found", "CONTACT_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidBatchCapacity(err) {
			return ErrorResponse(c, fiber.StatusBadRequest, "Capacity is invalid", "INVALID_CAPACITY", nil)
		}

		log.Println("Update batch failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update batch", "UPDATE_BATCH_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Batch updated", result)
}

// ListBatchLinks returns the links assigned to a batch
func (h *DistributionHandler) ListBatchLinks(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	batchID, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch id", "INVALID_BATCH_ID", nil)
	}

	result, err := h.distributionFlow.ListBatchLinks(createRequestContext(c, "/api/v1/distribution/batch/:id/links"), userID, batchID)
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}

		log.Println("List batch links failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list batch links", "LIST_BATCH_LINKS_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Batch links loaded", result)
}

// MarkSent finalizes a batch delivery
func (h *DistributionHandler) MarkSent(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.MarkSentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.deliveryFlow.MarkSent(createRequestContext(c, "/api/v1/distribution/log-sent"), &req, metadata)
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsOwnerLockBusy(err) {
			return ErrorResponse(c, fiber.StatusLocked, "Another operation is in progress", "OWNER_BUSY", nil)
		}

		log.Println("Mark sent failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record delivery", "MARK_SENT_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
