package holdings

import (
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers bundles holdings handlers.
type Handlers struct {
	Service *Service
}

// CreateHolding POST /api/v1/holdings/create-holding
func (h *Handlers) CreateHolding(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.Create(c.Context(), userID, req)
	if err != nil {
		switch err {
		case ErrNameRequired, ErrSymbolRequired, ErrInvalidType:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Holding created", holding, nil)
}

// ViewHoldings GET /api/v1/holdings/view-holdings
func (h *Handlers) ViewHoldings(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.Service.List(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holdings fetched successfully", data, nil)
}

// ViewHolding GET /api/v1/holdings/view-holding/:holding_id
func (h *Handlers) ViewHolding(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.Get(c.Context(), userID, holdingID)
	if err != nil {
		if err == ErrHoldingNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holding fetched successfully", holding, nil)
}

// EditHolding PUT /api/v1/holdings/edit-holding/:holding_id
func (h *Handlers) EditHolding(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.Update(c.Context(), userID, holdingID, req)
	if err != nil {
		switch err {
		case ErrHoldingNotFound:
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case ErrNameRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Holding updated", holding, nil)
}

// RemoveHolding DELETE /api/v1/holdings/remove-holding/:holding_id
func (h *Handlers) RemoveHolding(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), userID, holdingID); err != nil {
		if err == ErrHoldingNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holding removed", nil, nil)
}

type tradeRequest struct {
	HoldingID string          `json:"holding_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Broker    string          `json:"broker"`
}

// Buy POST /api/v1/holdings/buy
func (h *Handlers) Buy(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req tradeRequest
	if err := c.BodyParser(&req); err != nil || req.HoldingID == "" {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	holdingID, err := uuid.Parse(req.HoldingID)
	if err != nil {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.Buy(c.Context(), userID, holdingID, req.Quantity, req.Price, req.Broker)
	if err != nil {
		if err == ErrHoldingNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Buy applied", holding, nil)
}

// Sell POST /api/v1/holdings/sell
func (h *Handlers) Sell(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req tradeRequest
	if err := c.BodyParser(&req); err != nil || req.HoldingID == "" {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	holdingID, err := uuid.Parse(req.HoldingID)
	if err != nil {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.Sell(c.Context(), userID, holdingID, req.Quantity, req.Broker)
	if err != nil {
		if err == ErrHoldingNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Sell applied", holding, nil)
}
