package models

import "time"

// NotificationType identifies what a notification is about
type NotificationType string

const (
	NotificationIncomeOverdue  NotificationType = "income_overdue"
	NotificationIncomeUpcoming NotificationType = "income_upcoming"
	NotificationIncomeReceived NotificationType = "income_received"
	NotificationIncomeCreated  NotificationType = "income_created"
)

// Notification is an in-app message for a user
type Notification struct {
	Base
	UserID        string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type          NotificationType `gorm:"not null" json:"type"`
	Title         string           `gorm:"not null" json:"title"`
	Message       string           `gorm:"not null" json:"message"`
	ReferenceID   *string          `gorm:"type:uuid;index" json:"reference_id"`
	ReferenceType string           `json:"reference_type,omitempty"`
	IsRead        bool             `gorm:"not null;default:false" json:"is_read"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
}

// NotificationSettings holds a user's alert preferences
type NotificationSettings struct {
	Base
	UserID             string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	EmailNotifications bool   `gorm:"not null" json:"email_notifications"`
	PushNotifications  bool   `gorm:"not null" json:"push_notifications"`
	OverdueAlerts      bool   `gorm:"not null" json:"overdue_alerts"`
	UpcomingAlerts     bool   `gorm:"not null" json:"upcoming_alerts"`
	UpcomingDays       int    `gorm:"not null" json:"upcoming_days"`
}

// DefaultNotificationSettings returns the preferences a user starts with.
func DefaultNotificationSettings(userID string) *NotificationSettings {
	return &NotificationSettings{
		UserID:             userID,
		EmailNotifications: true,
		PushNotifications:  true,
		OverdueAlerts:      true,
		UpcomingAlerts:     true,
		UpcomingDays:       3,
	}
}
