package models

// CategoryType tells whether a category groups expenses or incomes
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category groups expenses (through expense types) or incomes
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;uniqueIndex:idx_categories_owner_type_name" json:"user_id"`
	Type   CategoryType `gorm:"not null;uniqueIndex:idx_categories_owner_type_name" json:"type"`
	Name   string       `gorm:"not null;uniqueIndex:idx_categories_owner_type_name" json:"name"`
	Color  string       `json:"color,omitempty"`
	Icon   string       `json:"icon,omitempty"`
}
