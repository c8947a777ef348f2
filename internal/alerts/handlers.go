package alerts

import (
	"folio-backend/internal/holdings"
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles alert handlers.
type Handlers struct {
	Service *Service
}

// CreateAlert POST /api/v1/alerts/create-alert
func (h *Handlers) CreateAlert(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateInput
	if err := c.BodyParser(&req); err != nil || req.HoldingID == "" {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	holdingID, err := uuid.Parse(req.HoldingID)
	if err != nil {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	alert, err := h.Service.Create(c.Context(), userID, holdingID, req.TargetPrice)
	if err != nil {
		switch err {
		case ErrInvalidTarget, ErrTargetEqualsPrice, ErrNoReferencePrice:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case holdings.ErrHoldingNotFound:
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Alert created", alert, nil)
}

// ViewAlerts GET /api/v1/alerts/view-alerts
func (h *Handlers) ViewAlerts(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.Service.List(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Alerts fetched successfully", data, nil)
}

type toggleAlertRequest struct {
	AlertID string `json:"alert_id"`
	Active  bool   `json:"active"`
}

// ToggleAlert PATCH /api/v1/alerts/toggle-alert
func (h *Handlers) ToggleAlert(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req toggleAlertRequest
	if err := c.BodyParser(&req); err != nil || req.AlertID == "" {
		return response.Error(c, "Invalid alert ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	alertID, err := uuid.Parse(req.AlertID)
	if err != nil {
		return response.Error(c, "Invalid alert ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.SetActive(c.Context(), userID, alertID, req.Active); err != nil {
		if err == ErrAlertNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Alert updated", nil, nil)
}

// RemoveAlert DELETE /api/v1/alerts/remove-alert/:alert_id
func (h *Handlers) RemoveAlert(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	alertID, err := uuid.Parse(c.Params("alert_id"))
	if err != nil {
		return response.Error(c, "Invalid alert ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), userID, alertID); err != nil {
		if err == ErrAlertNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Alert removed", nil, nil)
}
