package health

import (
	"database/sql"

	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers serves the health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	DB             *gorm.DB
	QuoteURL       string
	HealthAdminKey string
}

func (h *Handlers) pinger() DBPinger {
	if h.DB == nil {
		return nil
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return nil
	}
	return sqlPinger{sqlDB}
}

type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping() error { return p.db.Ping() }

// Dashboard GET / — same payload as /health/json.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	return h.JSON(c)
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := CollectHealth(c.Context(), h.Rdb, h.pinger(), h.QuoteURL)
	return c.JSON(result)
}

// Reset GET /health/reset — clears traffic counters; guarded by admin key.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if h.HealthAdminKey == "" || c.Query("key") != h.HealthAdminKey {
		return response.Unauthorized(c, "Unauthorized")
	}
	if h.Rdb != nil {
		h.Rdb.Del(c.Context(),
			middleware.KeyReqTotal,
			middleware.KeyReqErrors,
			middleware.KeyResTime,
			middleware.KeyResCount,
			middleware.KeyStartTime,
			middleware.KeyLastReq,
		)
	}
	return response.Success(c, "Health counters reset", nil, nil)
}
