package handlers

import (
	"log"

	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/gofiber/fiber/v3"
)

// DashboardHandlerInterface defines the contract for dashboard handlers
type DashboardHandlerInterface interface {
	History(c fiber.Ctx) error
	ForceRestart(c fiber.Ctx) error
}

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardFlow businessflow.DashboardFlow
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardFlow businessflow.DashboardFlow) *DashboardHandler {
	return &DashboardHandler{dashboardFlow: dashboardFlow}
}

// History returns the recent delivery records
func (h *DashboardHandler) History(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.dashboardFlow.History(createRequestContext(c, "/api/v1/dashboard/history"), userID)
	if err != nil {
		log.Println("History failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load delivery history", "HISTORY_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "History loaded", result)
}

// ForceRestart wipes the user's distribution workspace
func (h *DashboardHandler) ForceRestart(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.dashboardFlow.ForceRestart(createRequestContext(c, "/api/v1/dashboard/force-restart"), userID, metadata)
	if err != nil {
		if businessflow.IsOwnerLockBusy(err) {
			return ErrorResponse(c, fiber.StatusLocked, "Another operation is in progress", "OWNER_BUSY", nil)
		}

		log.Println("Force restart failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset workspace", "FORCE_RESTART_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
