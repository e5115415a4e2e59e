package models

import "github.com/shopspring/decimal"

// Budget is a spending plan for one expense category in one calendar month.
// Exactly one of Percentage and LimitAmount is expected to be set; a nil
// CategoryID budgets uncategorized expenses.
type Budget struct {
	Base
	UserID      string           `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_owner_category_month" json:"user_id"`
	CategoryID  *string          `gorm:"type:uuid;uniqueIndex:idx_budgets_owner_category_month" json:"category_id"`
	Month       int              `gorm:"not null;uniqueIndex:idx_budgets_owner_category_month" json:"month"`
	Year        int              `gorm:"not null;uniqueIndex:idx_budgets_owner_category_month" json:"year"`
	Percentage  *decimal.Decimal `gorm:"type:numeric(5,2)" json:"percentage"`
	LimitAmount *decimal.Decimal `gorm:"type:numeric(14,2)" json:"limit_amount"`

	// Relationships
	Category      *Category            `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IncomeSources []BudgetIncomeSource `gorm:"foreignKey:BudgetID" json:"income_sources"`
}

// BudgetIncomeSource links a budget to one of the incomes its percentage
// limit is computed from.
type BudgetIncomeSource struct {
	Base
	UserID   string `gorm:"type:uuid;not null" json:"user_id"`
	BudgetID string `gorm:"type:uuid;not null;index" json:"budget_id"`
	IncomeID string `gorm:"type:uuid;not null;index" json:"income_id"`

	Income *Income `gorm:"foreignKey:IncomeID" json:"income,omitempty"`
}
