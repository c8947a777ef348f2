package portfolio

import (
	"context"

	"folio-backend/internal/holdings"
	"folio-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service computes portfolio-level figures from the holdings table.
type Service struct {
	Holdings *holdings.Service
}

// HoldingSummary is one row of the portfolio view. Quantities are rounded to
// the asset type's display precision (8 places for crypto, 2 otherwise),
// money to 2.
type HoldingSummary struct {
	HoldingID      uuid.UUID        `json:"holding_id"`
	Name           string           `json:"name"`
	Symbol         string           `json:"symbol"`
	AssetType      models.AssetType `json:"asset_type"`
	Quantity       decimal.Decimal  `json:"quantity"`
	AveragePrice   decimal.Decimal  `json:"average_price"`
	CurrentPrice   decimal.Decimal  `json:"current_price"`
	PriceEstimated bool             `json:"price_estimated"`
	MarketValue    decimal.Decimal  `json:"market_value"`
	Cost           decimal.Decimal  `json:"cost"`
	Gain           decimal.Decimal  `json:"gain"`
	GainPercent    decimal.Decimal  `json:"gain_percent"`
}

// Summary is the whole-portfolio aggregate.
type Summary struct {
	Holdings         []HoldingSummary `json:"holdings"`
	TotalValue       decimal.Decimal  `json:"total_value"`
	TotalCost        decimal.Decimal  `json:"total_cost"`
	TotalGain        decimal.Decimal  `json:"total_gain"`
	TotalGainPercent decimal.Decimal  `json:"total_gain_percent"`
}

var hundred = decimal.NewFromInt(100)

// Compute builds the summary for the user's current holdings.
func (s *Service) Compute(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	held, err := s.Holdings.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		Holdings:   make([]HoldingSummary, 0, len(held)),
		TotalValue: decimal.Zero,
		TotalCost:  decimal.Zero,
	}
	for _, h := range held {
		value := h.Quantity.Mul(h.CurrentPrice)
		cost := h.Quantity.Mul(h.AveragePrice)
		gain := value.Sub(cost)
		gainPct := decimal.Zero
		if cost.IsPositive() {
			gainPct = gain.Div(cost).Mul(hundred)
		}

		out.Holdings = append(out.Holdings, HoldingSummary{
			HoldingID:      h.HoldingID,
			Name:           h.Name,
			Symbol:         h.Symbol,
			AssetType:      h.AssetType,
			Quantity:       h.Quantity.Round(h.AssetType.QuantityPlaces()),
			AveragePrice:   h.AveragePrice.Round(2),
			CurrentPrice:   h.CurrentPrice.Round(2),
			PriceEstimated: h.PriceEstimated,
			MarketValue:    value.Round(2),
			Cost:           cost.Round(2),
			Gain:           gain.Round(2),
			GainPercent:    gainPct.Round(2),
		})
		out.TotalValue = out.TotalValue.Add(value)
		out.TotalCost = out.TotalCost.Add(cost)
	}

	out.TotalGain = out.TotalValue.Sub(out.TotalCost)
	if out.TotalCost.IsPositive() {
		out.TotalGainPercent = out.TotalGain.Div(out.TotalCost).Mul(hundred).Round(2)
	}
	out.TotalValue = out.TotalValue.Round(2)
	out.TotalCost = out.TotalCost.Round(2)
	out.TotalGain = out.TotalGain.Round(2)
	return out, nil
}
