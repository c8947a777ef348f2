package transactions

import (
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles transaction handlers.
type Handlers struct {
	Service *Service
}

// GetTransactions GET /api/v1/transactions/get-transactions?holding_id=
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var holdingID *uuid.UUID
	if raw := c.Query("holding_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		holdingID = &id
	}

	data, err := h.Service.List(c.Context(), userID, holdingID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Transactions fetched successfully", data, nil)
}
