package notifications

import (
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles notification handlers.
type Handlers struct {
	Service *Service
}

// ViewNotifications GET /api/v1/notifications/view-notifications
func (h *Handlers) ViewNotifications(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.Service.List(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	unread, err := h.Service.UnreadCount(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Notifications fetched successfully", data, fiber.Map{"unread": unread})
}

type markReadRequest struct {
	NotificationID string `json:"notification_id"`
}

// MarkRead PATCH /api/v1/notifications/mark-read
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req markReadRequest
	if err := c.BodyParser(&req); err != nil || req.NotificationID == "" {
		return response.Error(c, "Invalid notification ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	notificationID, err := uuid.Parse(req.NotificationID)
	if err != nil {
		return response.Error(c, "Invalid notification ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.MarkRead(c.Context(), userID, notificationID); err != nil {
		if err == ErrNotificationNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Notification marked read", nil, nil)
}

// MarkAllRead PATCH /api/v1/notifications/mark-all-read
func (h *Handlers) MarkAllRead(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.MarkAllRead(c.Context(), userID); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "All notifications marked read", nil, nil)
}
