package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceAlert watches one holding. Direction is implicit: a target above the
// price at creation time fires on an upward crossing, a target below on a
// downward one. Equal target and initial price is rejected at creation.
type PriceAlert struct {
	AlertID      uuid.UUID       `gorm:"column:alert_id;type:uuid;primaryKey" json:"alert_id"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	HoldingID    uuid.UUID       `gorm:"column:holding_id;type:uuid;not null;index" json:"holding_id"`
	InitialPrice decimal.Decimal `gorm:"column:initial_price;type:decimal(32,12);not null" json:"initial_price"`
	TargetPrice  decimal.Decimal `gorm:"column:target_price;type:decimal(32,12);not null" json:"target_price"`
	Active       bool            `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (PriceAlert) TableName() string {
	return "price_alerts"
}

// BeforeCreate sets the UUID when not set.
func (a *PriceAlert) BeforeCreate(tx *gorm.DB) error {
	if a.AlertID == uuid.Nil {
		a.AlertID = uuid.New()
	}
	return nil
}

// Upward reports whether the alert watches for an upward crossing.
func (a *PriceAlert) Upward() bool {
	return a.TargetPrice.GreaterThan(a.InitialPrice)
}
