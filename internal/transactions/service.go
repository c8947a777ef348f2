package transactions

import (
	"context"

	"folio-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service reads trade history. Rows are written by the holdings module in
// the same DB transaction as the position change.
type Service struct {
	DB *gorm.DB
}

// FormattedTx is a history row enriched with the holding's display fields.
type FormattedTx struct {
	TxID      uuid.UUID       `json:"tx_id"`
	HoldingID uuid.UUID       `json:"holding_id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Broker    string          `json:"broker,omitempty"`
	CreatedAt interface{}     `json:"created_at"`
}

// List returns the user's trades, newest first, optionally filtered to one
// holding. Trades for deleted holdings keep their row but lose the display
// fields.
func (s *Service) List(ctx context.Context, userID uuid.UUID, holdingID *uuid.UUID) ([]FormattedTx, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if holdingID != nil {
		q = q.Where("holding_id = ?", *holdingID)
	}
	var txs []models.Transaction
	if err := q.Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return []FormattedTx{}, nil
	}

	ids := map[uuid.UUID]bool{}
	for _, tx := range txs {
		ids[tx.HoldingID] = true
	}
	holdingIDs := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		holdingIDs = append(holdingIDs, id)
	}
	var held []models.Holding
	s.DB.WithContext(ctx).
		Where("holding_id IN ? AND user_id = ?", holdingIDs, userID).
		Select("holding_id, symbol, name").
		Find(&held)
	nameBySymbol := map[uuid.UUID]models.Holding{}
	for _, h := range held {
		nameBySymbol[h.HoldingID] = h
	}

	out := make([]FormattedTx, len(txs))
	for i, tx := range txs {
		ft := FormattedTx{
			TxID:      tx.TxID,
			HoldingID: tx.HoldingID,
			Type:      tx.Type,
			Quantity:  tx.Quantity,
			Price:     tx.Price,
			Broker:    tx.Broker,
			CreatedAt: tx.CreatedAt,
		}
		if h, ok := nameBySymbol[tx.HoldingID]; ok {
			ft.Symbol = h.Symbol
			ft.Name = h.Name
		}
		out[i] = ft
	}
	return out, nil
}
