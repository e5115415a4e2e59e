package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income represents a single recorded inflow of money
type Income struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Description   string          `gorm:"not null" json:"description"`
	PaymentType   string          `json:"payment_type,omitempty"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	IncomeDate    time.Time       `gorm:"type:date;not null;index" json:"income_date"`
	IsFixed       bool            `gorm:"not null;default:false" json:"is_fixed"`
	IsReceived    bool            `gorm:"not null;default:false" json:"is_received"`
	CategoryID    *string         `gorm:"type:uuid" json:"category_id"`
	InstitutionID *string         `gorm:"type:uuid" json:"institution_id"`

	// Relationships
	Category    *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}
