package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssetType selects quote routing (crypto uses the exchange pair convention)
// and display precision (8 decimal places for crypto quantities, 2 otherwise).
type AssetType string

const (
	AssetEquity AssetType = "equity"
	AssetCrypto AssetType = "crypto"
	AssetETF    AssetType = "etf"
	AssetBond   AssetType = "bond"
)

// Valid reports whether t is one of the supported asset types.
func (t AssetType) Valid() bool {
	switch t {
	case AssetEquity, AssetCrypto, AssetETF, AssetBond:
		return true
	}
	return false
}

// QuantityPlaces is the display precision for quantities of this asset type.
func (t AssetType) QuantityPlaces() int32 {
	if t == AssetCrypto {
		return 8
	}
	return 2
}

// BrokerLot is one entry of a holding's per-broker breakdown.
type BrokerLot struct {
	Broker       string          `json:"broker"`
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

// Holding is a position in one tradable instrument.
//
// Invariants: Quantity >= 0 always (sells clamp at zero); AveragePrice is
// changed only by buys; PriceEstimated is set on creation and cleared by the
// first confirmed quote.
type Holding struct {
	HoldingID       uuid.UUID       `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Name            string          `gorm:"column:name;not null" json:"name"`
	Symbol          string          `gorm:"column:symbol;not null" json:"symbol"`
	AssetType       AssetType       `gorm:"column:asset_type;not null" json:"asset_type"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:decimal(32,12);not null" json:"quantity"`
	AveragePrice    decimal.Decimal `gorm:"column:average_price;type:decimal(32,12);not null" json:"average_price"`
	CurrentPrice    decimal.Decimal `gorm:"column:current_price;type:decimal(32,12);not null" json:"current_price"`
	PriceEstimated  bool            `gorm:"column:price_estimated;not null;default:true" json:"price_estimated"`
	BrokerBreakdown datatypes.JSON  `gorm:"column:broker_breakdown" json:"broker_breakdown,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

// BeforeCreate sets the UUID when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}

// Lots decodes the broker breakdown column. A missing column is an empty list.
func (h *Holding) Lots() ([]BrokerLot, error) {
	if len(h.BrokerBreakdown) == 0 {
		return nil, nil
	}
	var lots []BrokerLot
	if err := json.Unmarshal(h.BrokerBreakdown, &lots); err != nil {
		return nil, err
	}
	return lots, nil
}

// SetLots encodes lots into the broker breakdown column. An empty list clears it.
func (h *Holding) SetLots(lots []BrokerLot) error {
	if len(lots) == 0 {
		h.BrokerBreakdown = nil
		return nil
	}
	b, err := json.Marshal(lots)
	if err != nil {
		return err
	}
	h.BrokerBreakdown = datatypes.JSON(b)
	return nil
}

// brokerReconcileTolerance absorbs rounding drift between the holding's own
// fields and the quantity-weighted aggregate of its lots.
var brokerReconcileTolerance = decimal.New(1, -6)

// BrokerReconciles reports whether the lot aggregate matches the holding's own
// quantity and average price. The check is advisory; writes never enforce it.
func (h *Holding) BrokerReconciles() bool {
	lots, err := h.Lots()
	if err != nil {
		return false
	}
	if len(lots) == 0 {
		return true
	}
	qty := decimal.Zero
	cost := decimal.Zero
	for _, lot := range lots {
		qty = qty.Add(lot.Quantity)
		cost = cost.Add(lot.Quantity.Mul(lot.AveragePrice))
	}
	if qty.Sub(h.Quantity).Abs().GreaterThan(brokerReconcileTolerance) {
		return false
	}
	if qty.IsZero() {
		return true
	}
	avg := cost.Div(qty)
	return avg.Sub(h.AveragePrice).Abs().LessThanOrEqual(brokerReconcileTolerance)
}
