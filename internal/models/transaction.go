package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TxBuy  = "buy"
	TxSell = "sell"
)

// Transaction records one executed buy or sell against a holding. Written in
// the same DB transaction as the holding mutation so history and position
// never diverge.
type Transaction struct {
	TxID      uuid.UUID       `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	HoldingID uuid.UUID       `gorm:"column:holding_id;type:uuid;not null;index" json:"holding_id"`
	Type      string          `gorm:"column:type;not null" json:"type"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:decimal(32,12);not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(32,12);not null" json:"price"`
	Broker    string          `gorm:"column:broker" json:"broker,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate sets the UUID when not set.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
