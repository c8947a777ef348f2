package notifications

import (
	"context"
	"errors"
	"time"

	"folio-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("Notification not found")

// dedupWindow: no more than one notification per (user, holding) pair within
// a rolling 24-hour window, even if the alert condition remains true.
const dedupWindow = 24 * time.Hour

// Service encapsulates notification operations.
type Service struct {
	DB *gorm.DB
}

// NotifyHolding records a holding-scoped notification unless one for the
// same (user, holding) pair exists inside the dedup window. Reports whether
// a notification was actually created.
func (s *Service) NotifyHolding(ctx context.Context, userID, holdingID uuid.UUID, message string) (bool, error) {
	since := time.Now().Add(-dedupWindow)
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND holding_id = ? AND created_at > ?", userID, holdingID, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	n := &models.Notification{
		UserID:    userID,
		HoldingID: &holdingID,
		Message:   message,
	}
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return false, err
	}
	return true, nil
}

// NotifyAccount records an account-event notification (no holding, no dedup).
func (s *Service) NotifyAccount(ctx context.Context, userID uuid.UUID, message string) error {
	n := &models.Notification{
		UserID:  userID,
		Message: message,
	}
	return s.DB.WithContext(ctx).Create(n).Error
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// UnreadCount returns the number of unread notifications for the user.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags all the user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
