package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

type incomeService struct {
	db       *gorm.DB
	notifier NotificationServicer
	format   Formatter
}

// NewIncomeService creates a new IncomeServicer. Creating and receiving an
// income posts a notification through notifier.
func NewIncomeService(db *gorm.DB, notifier NotificationServicer, format Formatter) IncomeServicer {
	return &incomeService{db: db, notifier: notifier, format: format}
}

func (s *incomeService) validate(userID string, in *IncomeInput) error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if in.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if in.IncomeDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "income date is required")
	}
	in.IncomeDate = dateOnly(in.IncomeDate)
	in.CategoryID = nonEmpty(in.CategoryID)
	in.InstitutionID = nonEmpty(in.InstitutionID)

	if in.CategoryID != nil {
		var category models.Category
		err := s.db.Where("id = ? AND user_id = ?", *in.CategoryID, userID).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.Type != models.CategoryTypeIncome {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "category must be an income category")
		}
	}
	if in.InstitutionID != nil {
		if _, err := requireInstitution(s.db, userID, *in.InstitutionID); err != nil {
			return err
		}
	}
	return nil
}

func (s *incomeService) CreateIncome(userID string, in IncomeInput) (*models.Income, error) {
	if err := s.validate(userID, &in); err != nil {
		return nil, err
	}

	income := &models.Income{
		UserID:        userID,
		Description:   in.Description,
		PaymentType:   in.PaymentType,
		Amount:        in.Amount,
		IncomeDate:    in.IncomeDate,
		IsFixed:       in.IsFixed,
		IsReceived:    in.IsReceived,
		CategoryID:    in.CategoryID,
		InstitutionID: in.InstitutionID,
	}
	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(income, models.NotificationIncomeCreated, "Income added",
		fmt.Sprintf("%s of %s expected on %s", income.Description, s.format.Amount(income.Amount), income.IncomeDate.Format(time.DateOnly)))

	return s.GetIncomeByID(userID, income.ID)
}

// GetUserIncomes lists incomes newest first.
func (s *incomeService) GetUserIncomes(userID string, page pagination.PageRequest, filter IncomeFilter) (*pagination.PageResponse[models.Income], error) {
	page.Defaults()

	base := s.filtered(userID, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var incomes []models.Income
	if err := base.Preload("Category").Preload("Institution").
		Order("income_date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(incomes, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *incomeService) filtered(userID string, filter IncomeFilter) *gorm.DB {
	q := s.db.Model(&models.Income{}).Where("user_id = ?", userID)
	switch filter.Status {
	case IncomeStatusReceived:
		q = q.Where("is_received = ?", true)
	case IncomeStatusPending:
		q = q.Where("is_received = ?", false)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.InstitutionID != nil {
		q = q.Where("institution_id = ?", *filter.InstitutionID)
	}
	if filter.IsFixed != nil {
		q = q.Where("is_fixed = ?", *filter.IsFixed)
	}
	if filter.FromDate != nil {
		q = q.Where("income_date >= ?", dateOnly(*filter.FromDate))
	}
	if filter.ToDate != nil {
		q = q.Where("income_date <= ?", dateOnly(*filter.ToDate))
	}
	return q
}

func (s *incomeService) GetIncomeByID(userID, incomeID string) (*models.Income, error) {
	var income models.Income
	err := s.db.Preload("Category").Preload("Institution").
		Where("id = ? AND user_id = ?", incomeID, userID).First(&income).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}

// UpdateIncome replaces every writable field of an income.
func (s *incomeService) UpdateIncome(userID, incomeID string, in IncomeInput) (*models.Income, error) {
	income, err := s.GetIncomeByID(userID, incomeID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(userID, &in); err != nil {
		return nil, err
	}

	if err := s.db.Model(income).Updates(map[string]interface{}{
		"description":    in.Description,
		"payment_type":   in.PaymentType,
		"amount":         in.Amount,
		"income_date":    in.IncomeDate,
		"is_fixed":       in.IsFixed,
		"is_received":    in.IsReceived,
		"category_id":    in.CategoryID,
		"institution_id": in.InstitutionID,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetIncomeByID(userID, incomeID)
}

// DeleteIncome removes an income and detaches it from every budget that used
// it as a source.
func (s *incomeService) DeleteIncome(userID, incomeID string) error {
	income, err := s.GetIncomeByID(userID, incomeID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("income_id = ? AND user_id = ?", incomeID, userID).
			Delete(&models.BudgetIncomeSource{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(income).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// MarkReceived flags a pending income as received and notifies the owner.
// Receiving an already received income changes nothing.
func (s *incomeService) MarkReceived(userID, incomeID string) (*models.Income, error) {
	income, err := s.GetIncomeByID(userID, incomeID)
	if err != nil {
		return nil, err
	}
	if income.IsReceived {
		return income, nil
	}

	if err := s.db.Model(income).Update("is_received", true).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(income, models.NotificationIncomeReceived, "Income received",
		fmt.Sprintf("%s of %s was received", income.Description, s.format.Amount(income.Amount)))

	return income, nil
}

// GetSummary totals the user's incomes dated within [from, to]. Nil bounds
// are open.
func (s *incomeService) GetSummary(userID string, from, to *time.Time) (*IncomeSummary, error) {
	var incomes []models.Income
	if err := s.filtered(userID, IncomeFilter{FromDate: from, ToDate: to}).
		Select("amount", "is_received").Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &IncomeSummary{Total: decimal.Zero, Received: decimal.Zero, Pending: decimal.Zero, Count: len(incomes)}
	for _, in := range incomes {
		summary.Total = summary.Total.Add(in.Amount)
		if in.IsReceived {
			summary.Received = summary.Received.Add(in.Amount)
		} else {
			summary.Pending = summary.Pending.Add(in.Amount)
		}
	}
	return summary, nil
}

func (s *incomeService) notify(income *models.Income, notificationType models.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	ref := income.ID
	err := s.notifier.Notify(&models.Notification{
		UserID:        income.UserID,
		Type:          notificationType,
		Title:         title,
		Message:       message,
		ReferenceID:   &ref,
		ReferenceType: "income",
	})
	if err != nil {
		logger.Get().Warnw("failed to post income notification",
			"error", err,
			"income_id", income.ID,
			"type", notificationType,
		)
	}
}
