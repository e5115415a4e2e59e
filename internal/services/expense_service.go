package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

type expenseService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db, now: time.Now}
}

func (s *expenseService) validate(userID string, in *ExpenseInput) error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if in.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if in.ExpenseDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "expense date is required")
	}
	in.ExpenseDate = dateOnly(in.ExpenseDate)
	in.ExpenseTypeID = nonEmpty(in.ExpenseTypeID)
	in.InstitutionID = nonEmpty(in.InstitutionID)

	if in.PaymentDate != nil {
		d := dateOnly(*in.PaymentDate)
		in.PaymentDate = &d
	}
	if in.IsPaid && in.PaymentDate == nil {
		d := dateOnly(s.now())
		in.PaymentDate = &d
	}
	if !in.IsPaid {
		in.PaymentDate = nil
	}

	if in.ExpenseTypeID != nil {
		var count int64
		if err := s.db.Model(&models.ExpenseType{}).
			Where("id = ? AND user_id = ?", *in.ExpenseTypeID, userID).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrExpenseTypeNotFound
		}
	}
	if in.InstitutionID != nil {
		if _, err := requireInstitution(s.db, userID, *in.InstitutionID); err != nil {
			return err
		}
	}
	return nil
}

func (s *expenseService) CreateExpense(userID string, in ExpenseInput) (*models.Expense, error) {
	if err := s.validate(userID, &in); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		UserID:        userID,
		Description:   in.Description,
		PaymentType:   in.PaymentType,
		Amount:        in.Amount,
		ExpenseDate:   in.ExpenseDate,
		PaymentDate:   in.PaymentDate,
		IsPaid:        in.IsPaid,
		ExpenseTypeID: in.ExpenseTypeID,
		InstitutionID: in.InstitutionID,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetExpenseByID(userID, expense.ID)
}

// GetUserExpenses lists expenses newest first with their type, category and
// institution.
func (s *expenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if filter.IsPaid != nil {
		base = base.Where("is_paid = ?", *filter.IsPaid)
	}
	if filter.ExpenseTypeID != nil {
		base = base.Where("expense_type_id = ?", *filter.ExpenseTypeID)
	}
	if filter.CategoryID != nil {
		base = base.Where("expense_type_id IN (?)",
			s.db.Model(&models.ExpenseType{}).Select("id").
				Where("user_id = ? AND category_id = ?", userID, *filter.CategoryID))
	}
	if filter.FromDate != nil {
		base = base.Where("expense_date >= ?", dateOnly(*filter.FromDate))
	}
	if filter.ToDate != nil {
		base = base.Where("expense_date <= ?", dateOnly(*filter.ToDate))
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Preload("ExpenseType.Category").Preload("Institution").
		Order("expense_date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.Preload("ExpenseType.Category").Preload("Institution").
		Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense replaces every writable field of an expense.
func (s *expenseService) UpdateExpense(userID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(userID, &in); err != nil {
		return nil, err
	}

	if err := s.db.Model(expense).Updates(map[string]interface{}{
		"description":     in.Description,
		"payment_type":    in.PaymentType,
		"amount":          in.Amount,
		"expense_date":    in.ExpenseDate,
		"payment_date":    in.PaymentDate,
		"is_paid":         in.IsPaid,
		"expense_type_id": in.ExpenseTypeID,
		"institution_id":  in.InstitutionID,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetExpenseByID(userID, expenseID)
}

func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MarkPaid flags an expense as paid on paymentDate, today when nil.
func (s *expenseService) MarkPaid(userID, expenseID string, paymentDate *time.Time) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	paid := dateOnly(s.now())
	if paymentDate != nil {
		paid = dateOnly(*paymentDate)
	}
	if err := s.db.Model(expense).Updates(map[string]interface{}{
		"is_paid":      true,
		"payment_date": paid,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetExpenseByID(userID, expenseID)
}
