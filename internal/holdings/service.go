package holdings

import (
	"context"
	"strings"

	"folio-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service encapsulates holdings operations. All queries are scoped to the
// owning user; no cross-user reads happen here.
type Service struct {
	DB *gorm.DB
}

// CreateInput for a new holding. Quantity/AveragePrice seed the initial
// position; both zero is a watch-only entry.
type CreateInput struct {
	Name         string           `json:"name"`
	Symbol       string           `json:"symbol"`
	AssetType    models.AssetType `json:"asset_type"`
	Quantity     decimal.Decimal  `json:"quantity"`
	AveragePrice decimal.Decimal  `json:"average_price"`
	Broker       string           `json:"broker"`
}

// Create inserts a holding for the user. The price starts estimated (set to
// the purchase average) until the first confirmed quote arrives.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*models.Holding, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	if !in.AssetType.Valid() {
		return nil, ErrInvalidType
	}

	qty := decimal.Zero
	avg := decimal.Zero
	if in.Quantity.IsPositive() && in.AveragePrice.IsPositive() {
		qty = in.Quantity
		avg = in.AveragePrice
	}

	h := &models.Holding{
		UserID:         userID,
		Name:           name,
		Symbol:         symbol,
		AssetType:      in.AssetType,
		Quantity:       qty,
		AveragePrice:   avg,
		CurrentPrice:   avg,
		PriceEstimated: true,
	}
	if qty.IsPositive() && in.Broker != "" {
		if err := h.SetLots([]models.BrokerLot{{Broker: in.Broker, Quantity: qty, AveragePrice: avg}}); err != nil {
			return nil, err
		}
	}
	if err := s.DB.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}

	if qty.IsPositive() {
		tx := &models.Transaction{
			UserID:    userID,
			HoldingID: h.HoldingID,
			Type:      models.TxBuy,
			Quantity:  qty,
			Price:     avg,
			Broker:    in.Broker,
		}
		if err := s.DB.WithContext(ctx).Create(tx).Error; err != nil {
			log.Warn().Err(err).Str("holding_id", h.HoldingID.String()).Msg("initial trade record failed")
		}
	}
	return h, nil
}

// List returns all holdings for the user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Holding, error) {
	var out []models.Holding
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// Get returns one holding owned by the user.
func (s *Service) Get(ctx context.Context, userID, holdingID uuid.UUID) (*models.Holding, error) {
	var h models.Holding
	err := s.DB.WithContext(ctx).
		Where("holding_id = ? AND user_id = ?", holdingID, userID).
		First(&h).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrHoldingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateInput for editable display fields.
type UpdateInput struct {
	Name            *string            `json:"name"`
	BrokerBreakdown []models.BrokerLot `json:"broker_breakdown"`
}

// Update edits display fields. A replaced broker breakdown that does not
// reconcile with the holding's own quantity/average is accepted but logged;
// reconciliation is advisory.
func (s *Service) Update(ctx context.Context, userID, holdingID uuid.UUID, in UpdateInput) (*models.Holding, error) {
	h, err := s.Get(ctx, userID, holdingID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		h.Name = name
	}
	if in.BrokerBreakdown != nil {
		if err := h.SetLots(in.BrokerBreakdown); err != nil {
			return nil, err
		}
		if !h.BrokerReconciles() {
			log.Warn().Str("holding_id", h.HoldingID.String()).Msg("broker breakdown does not reconcile with holding totals")
		}
	}
	if err := s.DB.WithContext(ctx).Save(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// Delete removes the holding and its alerts. Notifications stay: they are a
// historical record.
func (s *Service) Delete(ctx context.Context, userID, holdingID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("holding_id = ? AND user_id = ?", holdingID, userID).Delete(&models.Holding{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrHoldingNotFound
		}
		return tx.Where("holding_id = ? AND user_id = ?", holdingID, userID).Delete(&models.PriceAlert{}).Error
	})
}

// Buy applies deltaQty at price to the holding and its broker lot, and
// records the trade. Holding mutation and trade record commit together or
// not at all. Non-positive input is a silent no-op returning the holding
// unchanged.
func (s *Service) Buy(ctx context.Context, userID, holdingID uuid.UUID, deltaQty, price decimal.Decimal, broker string) (*models.Holding, error) {
	h, err := s.Get(ctx, userID, holdingID)
	if err != nil {
		return nil, err
	}
	if !deltaQty.IsPositive() || !price.IsPositive() {
		return h, nil
	}

	pos := ApplyBuy(Position{Quantity: h.Quantity, AveragePrice: h.AveragePrice}, deltaQty, price)
	h.Quantity = pos.Quantity
	h.AveragePrice = pos.AveragePrice
	if err := s.applyLotBuy(h, deltaQty, price, broker); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(h).Error; err != nil {
			return err
		}
		return tx.Create(&models.Transaction{
			UserID:    userID,
			HoldingID: h.HoldingID,
			Type:      models.TxBuy,
			Quantity:  deltaQty,
			Price:     price,
			Broker:    broker,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Sell reduces the position by deltaQty, clamping at zero; the average price
// is untouched. The trade record carries the effective (clamped) quantity.
func (s *Service) Sell(ctx context.Context, userID, holdingID uuid.UUID, deltaQty decimal.Decimal, broker string) (*models.Holding, error) {
	h, err := s.Get(ctx, userID, holdingID)
	if err != nil {
		return nil, err
	}
	if !deltaQty.IsPositive() {
		return h, nil
	}

	sold := deltaQty
	if sold.GreaterThan(h.Quantity) {
		sold = h.Quantity
	}
	pos := ApplySell(Position{Quantity: h.Quantity, AveragePrice: h.AveragePrice}, deltaQty)
	h.Quantity = pos.Quantity
	if err := s.applyLotSell(h, deltaQty, broker); err != nil {
		return nil, err
	}

	if sold.IsZero() {
		// Nothing held; no state change and no trade record.
		return h, nil
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(h).Error; err != nil {
			return err
		}
		return tx.Create(&models.Transaction{
			UserID:    userID,
			HoldingID: h.HoldingID,
			Type:      models.TxSell,
			Quantity:  sold,
			Price:     h.CurrentPrice,
			Broker:    broker,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// SetPrice stores a confirmed quote and clears the estimated flag. Used by
// the price refresher; ignores non-positive prices.
func (s *Service) SetPrice(ctx context.Context, holdingID uuid.UUID, price decimal.Decimal) error {
	if !price.IsPositive() {
		return nil
	}
	return s.DB.WithContext(ctx).Model(&models.Holding{}).
		Where("holding_id = ?", holdingID).
		Updates(map[string]interface{}{
			"current_price":   price,
			"price_estimated": false,
		}).Error
}

// ListRefreshable returns holdings across all users that the price refresher
// should poll: positive quantity and a non-empty symbol.
func (s *Service) ListRefreshable(ctx context.Context) ([]models.Holding, error) {
	var out []models.Holding
	err := s.DB.WithContext(ctx).
		Where("quantity > 0 AND symbol <> ''").
		Order("updated_at ASC").
		Find(&out).Error
	return out, err
}

func (s *Service) applyLotBuy(h *models.Holding, deltaQty, price decimal.Decimal, broker string) error {
	if broker == "" {
		return nil
	}
	lots, err := h.Lots()
	if err != nil {
		return err
	}
	found := false
	for i := range lots {
		if lots[i].Broker != broker {
			continue
		}
		pos := ApplyBuy(Position{Quantity: lots[i].Quantity, AveragePrice: lots[i].AveragePrice}, deltaQty, price)
		lots[i].Quantity = pos.Quantity
		lots[i].AveragePrice = pos.AveragePrice
		found = true
		break
	}
	if !found {
		lots = append(lots, models.BrokerLot{Broker: broker, Quantity: deltaQty, AveragePrice: price})
	}
	return h.SetLots(lots)
}

func (s *Service) applyLotSell(h *models.Holding, deltaQty decimal.Decimal, broker string) error {
	if broker == "" {
		return nil
	}
	lots, err := h.Lots()
	if err != nil {
		return err
	}
	for i := range lots {
		if lots[i].Broker != broker {
			continue
		}
		pos := ApplySell(Position{Quantity: lots[i].Quantity, AveragePrice: lots[i].AveragePrice}, deltaQty)
		lots[i].Quantity = pos.Quantity
		break
	}
	return h.SetLots(lots)
}
