package portfolio

import (
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles portfolio handlers.
type Handlers struct {
	Service *Service
}

// ViewSummary GET /api/v1/portfolio/view-summary
func (h *Handlers) ViewSummary(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.Service.Compute(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Portfolio summary fetched successfully", data, nil)
}
