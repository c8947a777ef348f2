package alerts

import (
	"context"

	"folio-backend/internal/holdings"
	"folio-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service encapsulates price-alert operations.
type Service struct {
	DB       *gorm.DB
	Holdings *holdings.Service
}

// CreateInput for a new alert. The initial price is captured from the
// holding at creation time, which fixes the crossing direction.
type CreateInput struct {
	HoldingID   string          `json:"holding_id"`
	TargetPrice decimal.Decimal `json:"target_price"`
}

// Create validates ownership and target, snapshots the holding's current
// price as the initial price and inserts the alert. A target equal to the
// initial price is rejected: it would make the direction undefined.
func (s *Service) Create(ctx context.Context, userID, holdingID uuid.UUID, target decimal.Decimal) (*models.PriceAlert, error) {
	if !target.IsPositive() {
		return nil, ErrInvalidTarget
	}
	holding, err := s.Holdings.Get(ctx, userID, holdingID)
	if err != nil {
		return nil, err
	}
	if !holding.CurrentPrice.IsPositive() {
		return nil, ErrNoReferencePrice
	}
	if target.Equal(holding.CurrentPrice) {
		return nil, ErrTargetEqualsPrice
	}

	a := &models.PriceAlert{
		UserID:       userID,
		HoldingID:    holdingID,
		InitialPrice: holding.CurrentPrice,
		TargetPrice:  target,
		Active:       true,
	}
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the user's alerts.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.PriceAlert, error) {
	var out []models.PriceAlert
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// SetActive toggles an alert on or off.
func (s *Service) SetActive(ctx context.Context, userID, alertID uuid.UUID, active bool) error {
	res := s.DB.WithContext(ctx).Model(&models.PriceAlert{}).
		Where("alert_id = ? AND user_id = ?", alertID, userID).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// Delete removes an alert.
func (s *Service) Delete(ctx context.Context, userID, alertID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("alert_id = ? AND user_id = ?", alertID, userID).
		Delete(&models.PriceAlert{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// ListActive returns all active alerts across users, for the evaluator.
func (s *Service) ListActive(ctx context.Context) ([]models.PriceAlert, error) {
	var out []models.PriceAlert
	err := s.DB.WithContext(ctx).
		Where("active = ?", true).
		Find(&out).Error
	return out, err
}

// Evaluate reports whether the alert fires at current: an upward alert at or
// above the target, a downward one at or below. Inactive alerts never fire.
func Evaluate(a *models.PriceAlert, current decimal.Decimal) bool {
	if !a.Active {
		return false
	}
	if a.Upward() {
		return current.GreaterThanOrEqual(a.TargetPrice)
	}
	return current.LessThanOrEqual(a.TargetPrice)
}
