package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/money"
)

const (
	maxUpcomingDays          = 30
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// Formatter renders money amounts in user-facing messages.
type Formatter struct {
	Currency string
	Locale   string
}

// Amount formats d in the configured currency and locale.
func (f Formatter) Amount(d decimal.Decimal) string {
	return money.Format(d, f.Currency, f.Locale)
}

type notificationService struct {
	db     *gorm.DB
	format Formatter
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB, format Formatter) NotificationServicer {
	return &notificationService{db: db, format: format}
}

// GetSettings returns the user's preferences, creating the defaults on first
// read.
func (s *notificationService) GetSettings(userID string) (*models.NotificationSettings, error) {
	settings := models.DefaultNotificationSettings(userID)
	err := s.db.Where("user_id = ?", userID).FirstOrCreate(settings).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}

func (s *notificationService) UpdateSettings(userID string, in NotificationSettingsInput) (*models.NotificationSettings, error) {
	if in.UpcomingDays < 1 || in.UpcomingDays > maxUpcomingDays {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "upcoming_days must be between 1 and 30")
	}

	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(settings).Updates(map[string]interface{}{
		"email_notifications": in.EmailNotifications,
		"push_notifications":  in.PushNotifications,
		"overdue_alerts":      in.OverdueAlerts,
		"upcoming_alerts":     in.UpcomingAlerts,
		"upcoming_days":       in.UpcomingDays,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}

// GetNotifications lists unexpired notifications, newest first.
func (s *notificationService) GetNotifications(userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	q := s.active(userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notifications, nil
}

func (s *notificationService) active(userID string) *gorm.DB {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now())
}

func (s *notificationService) UnreadCount(userID string) (int64, error) {
	var count int64
	if err := s.active(userID).Where("is_read = ?", false).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(userID, notificationID string) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification read and returns how many
// changed.
func (s *notificationService) MarkAllRead(userID string) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

func (s *notificationService) DeleteNotification(userID, notificationID string) error {
	result := s.db.Where("id = ? AND user_id = ?", notificationID, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// Notify stores a notification for its user.
func (s *notificationService) Notify(n *models.Notification) error {
	if n.UserID == "" || n.Type == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "notification needs a user and a type")
	}
	if err := s.db.Create(n).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ScanIncomeAlerts posts overdue and upcoming alerts for pending incomes.
// An income is overdue once its date is before today and upcoming when it is
// due within the owner's upcoming_days. Each income gets at most one alert
// of each kind.
func (s *notificationService) ScanIncomeAlerts(now time.Time) (*ScanResult, error) {
	today := dateOnly(now)
	horizon := today.AddDate(0, 0, maxUpcomingDays)

	var incomes []models.Income
	if err := s.db.Where("is_received = ? AND income_date <= ?", false, horizon).
		Order("income_date ASC").Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ScanResult{Scanned: len(incomes)}
	settingsByUser := make(map[string]*models.NotificationSettings)

	for i := range incomes {
		income := &incomes[i]
		settings, ok := settingsByUser[income.UserID]
		if !ok {
			var err error
			if settings, err = s.GetSettings(income.UserID); err != nil {
				return nil, err
			}
			settingsByUser[income.UserID] = settings
		}

		due := dateOnly(income.IncomeDate)
		switch {
		case due.Before(today) && settings.OverdueAlerts:
			created, err := s.alertOnce(income, models.NotificationIncomeOverdue, "Income overdue",
				fmt.Sprintf("%s of %s was due on %s", income.Description, s.format.Amount(income.Amount), due.Format(time.DateOnly)),
				nil)
			if err != nil {
				return nil, err
			}
			if created {
				result.Overdue++
			}
		case !due.Before(today) && settings.UpcomingAlerts && !due.After(today.AddDate(0, 0, settings.UpcomingDays)):
			expires := due.AddDate(0, 0, 1)
			created, err := s.alertOnce(income, models.NotificationIncomeUpcoming, "Income due soon",
				fmt.Sprintf("%s of %s is due on %s", income.Description, s.format.Amount(income.Amount), due.Format(time.DateOnly)),
				&expires)
			if err != nil {
				return nil, err
			}
			if created {
				result.Upcoming++
			}
		}
	}

	logger.Get().Infow("income alert scan finished",
		"scanned", result.Scanned,
		"overdue", result.Overdue,
		"upcoming", result.Upcoming,
	)
	return result, nil
}

func (s *notificationService) alertOnce(income *models.Income, notificationType models.NotificationType, title, message string, expiresAt *time.Time) (bool, error) {
	var existing models.Notification
	err := s.db.Unscoped().Where("user_id = ? AND type = ? AND reference_id = ?", income.UserID, notificationType, income.ID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ref := income.ID
	if err := s.Notify(&models.Notification{
		UserID:        income.UserID,
		Type:          notificationType,
		Title:         title,
		Message:       message,
		ReferenceID:   &ref,
		ReferenceType: "income",
		ExpiresAt:     expiresAt,
	}); err != nil {
		return false, err
	}
	return true, nil
}
