package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a single recorded outflow of money
type Expense struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Description   string          `gorm:"not null" json:"description"`
	PaymentType   string          `json:"payment_type,omitempty"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	ExpenseDate   time.Time       `gorm:"type:date;not null;index" json:"expense_date"`
	PaymentDate   *time.Time      `gorm:"type:date" json:"payment_date"`
	IsPaid        bool            `gorm:"not null;default:false" json:"is_paid"`
	ExpenseTypeID *string         `gorm:"type:uuid" json:"expense_type_id"`
	InstitutionID *string         `gorm:"type:uuid" json:"institution_id"`

	// Relationships
	ExpenseType *ExpenseType `gorm:"foreignKey:ExpenseTypeID" json:"expense_type,omitempty"`
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}

// CategoryID returns the category resolved through the expense type, nil when
// the expense has no type or the type has no category.
func (e *Expense) CategoryID() *string {
	if e.ExpenseType == nil {
		return nil
	}
	return e.ExpenseType.CategoryID
}
