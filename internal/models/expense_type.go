package models

// ExpenseType is a user-defined kind of expense, optionally filed under an
// expense category. An expense's category is resolved through its type.
type ExpenseType struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string  `gorm:"not null" json:"name"`
	CategoryID *string `gorm:"type:uuid" json:"category_id"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
