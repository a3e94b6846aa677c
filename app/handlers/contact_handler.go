package handlers

import (
	"log"
	"strconv"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ContactHandlerInterface defines the contract for contact handlers
type ContactHandlerInterface interface {
	ListContacts(c fiber.Ctx) error
	CreateContact(c fiber.Ctx) error
	UpdateContact(c fiber.Ctx) error
	DeleteContact(c fiber.Ctx) error
}

// ContactHandler handles contact-related HTTP requests
type ContactHandler struct {
	contactFlow businessflow.ContactFlow
	validator   *validator.Validate
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactFlow businessflow.ContactFlow) *ContactHandler {
	return &ContactHandler{
		contactFlow: contactFlow,
		validator:   validator.New(),
	}
}

// ListContacts returns all contacts of the authenticated user
func (h *ContactHandler) ListContacts(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.contactFlow.ListContacts(createRequestContext(c, "/api/v1/contacts"), userID)
	if err != nil {
		log.Println("List contacts failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list contacts", "LIST_CONTACTS_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Contacts loaded", result)
}

// CreateContact adds a contact for the authenticated user
func (h *ContactHandler) CreateContact(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateContactRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.contactFlow.CreateContact(createRequestContext(c, "/api/v1/contacts"), &req, metadata)
	if err != nil {
		if businessflow.IsPhoneAlreadyExists(err) {
			return ErrorResponse(c, fiber.StatusConflict, "Phone number already exists", "PHONE_EXISTS", nil)
		}

		log.Println("Create contact failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create contact", "CREATE_CONTACT_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusCreated, "Contact created", result)
}

// UpdateContact edits a contact the user owns
func (h *ContactHandler) UpdateContact(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	contactID, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid contact id", "INVALID_CONTACT_ID", nil)
	}

	var req dto.UpdateContactRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID
	req.ContactID = contactID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.contactFlow.UpdateContact(createRequestContext(c, "/api/v1/contacts/:id"), &req, metadata)
	if err != nil {
		if businessflow.IsContactNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Contact not found", "CONTACT_NOT_FOUND", nil)
		}
		if businessflow.IsPhoneAlreadyExists(err) {
			return ErrorResponse(c, fiber.StatusConflict, "Phone number already exists", "PHONE_EXISTS", nil)
		}

		log.Println("Update contact failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update contact", "UPDATE_CONTACT_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Contact updated", result)
}

// DeleteContact removes a contact the user owns
func (h *ContactHandler) DeleteContact(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	contactID, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid contact id", "INVALID_CONTACT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	if err := h.contactFlow.DeleteContact(createRequestContext(c, "/api/v1/contacts/:id"), userID, contactID, metadata); err != nil {
		if businessflow.IsContactNotFound(err) {
			return ErrorResponse(c, fiber.StatusNotFound, "Contact not found", "CONTACT_NOT_FOUND", nil)
		}

		log.Println("Delete contact failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete contact", "DELETE_CONTACT_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Contact deleted", nil)
}

// pathID parses a positive integer id path parameter
func pathID(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
