package models

// Institution is a bank or payment provider incomes and expenses can be tied to
type Institution struct {
	Base
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name    string `gorm:"not null" json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}
