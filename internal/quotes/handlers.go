package quotes

import (
	"strconv"
	"time"

	"folio-backend/internal/holdings"
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers exposes quote-provider lookups for holdings the user owns.
type Handlers struct {
	Client   *Client
	Holdings *holdings.Service
}

// ViewQuote GET /api/v1/quotes/view-quote/:holding_id — live quote for one holding.
func (h *Handlers) ViewQuote(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Holdings.Get(c.Context(), userID, holdingID)
	if err != nil {
		if err == holdings.ErrHoldingNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	quote, err := h.Client.Lookup(c.Context(), holding.AssetType, holding.Symbol)
	if err != nil {
		return response.Error(c, "Quote provider unavailable", fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Quote fetched successfully", quote, nil)
}

// ViewCandles GET /api/v1/quotes/view-candles/:holding_id?resolution=D&from=&to=
// Defaults to daily candles over the last 30 days.
func (h *Handlers) ViewCandles(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid holding ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Holdings.Get(c.Context(), userID, holdingID)
	if err != nil {
		if err == holdings.ErrHoldingNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	resolution := c.Query("resolution", "D")
	now := time.Now().Unix()
	from := queryInt64(c, "from", now-30*24*3600)
	to := queryInt64(c, "to", now)

	candles, err := h.Client.CandleHistory(c.Context(), holding.AssetType, holding.Symbol, resolution, from, to)
	if err != nil {
		return response.Error(c, "Quote provider unavailable", fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Candles fetched successfully", candles, nil)
}

func queryInt64(c *fiber.Ctx, key string, def int64) int64 {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
