package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	engine "fintrack/internal/budget"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

var hundred = decimal.NewFromInt(100)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// validate checks an input against the user's data and returns the
// de-duplicated income ids.
func (s *budgetService) validate(userID string, in *BudgetInput) ([]string, error) {
	if err := validateMonthYear(in.Month, in.Year); err != nil {
		return nil, err
	}
	if (in.Percentage == nil) == (in.LimitAmount == nil) {
		return nil, apperrors.ErrInvalidBudgetLimit
	}
	if in.Percentage != nil && (in.Percentage.IsNegative() || in.Percentage.GreaterThan(hundred)) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidBudgetLimit, "percentage must be between 0 and 100")
	}
	if in.LimitAmount != nil && in.LimitAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidBudgetLimit, "limit amount must not be negative")
	}

	in.CategoryID = nonEmpty(in.CategoryID)
	if in.CategoryID != nil {
		if err := requireExpenseCategory(s.db, userID, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(in.IncomeIDs))
	incomeIDs := make([]string, 0, len(in.IncomeIDs))
	for _, id := range in.IncomeIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		incomeIDs = append(incomeIDs, id)
	}
	if len(incomeIDs) > 0 {
		var count int64
		if err := s.db.Model(&models.Income{}).
			Where("user_id = ? AND id IN ?", userID, incomeIDs).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if int(count) != len(incomeIDs) {
			return nil, apperrors.ErrIncomeNotFound
		}
	}
	return incomeIDs, nil
}

// ensureUnique enforces one budget per (owner, category, month, year). The
// unique index does not cover uncategorized budgets, since NULLs never
// collide.
func (s *budgetService) ensureUnique(tx *gorm.DB, userID string, in BudgetInput, excludeID string) error {
	q := tx.Model(&models.Budget{}).Where("user_id = ? AND month = ? AND year = ?", userID, in.Month, in.Year)
	if in.CategoryID == nil {
		q = q.Where("category_id IS NULL")
	} else {
		q = q.Where("category_id = ?", *in.CategoryID)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrBudgetConflict
	}
	return nil
}

func sourcesFor(userID, budgetID string, incomeIDs []string) []models.BudgetIncomeSource {
	sources := make([]models.BudgetIncomeSource, 0, len(incomeIDs))
	for _, id := range incomeIDs {
		sources = append(sources, models.BudgetIncomeSource{UserID: userID, BudgetID: budgetID, IncomeID: id})
	}
	return sources
}

func translateWriteError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrBudgetConflict
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// CreateBudget creates a budget and its income sources in one transaction.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*models.Budget, error) {
	incomeIDs, err := s.validate(userID, &in)
	if err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Month:       in.Month,
		Year:        in.Year,
		Percentage:  in.Percentage,
		LimitAmount: in.LimitAmount,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUnique(tx, userID, in, ""); err != nil {
			return err
		}
		if err := tx.Omit("IncomeSources", "Category").Create(budget).Error; err != nil {
			return err
		}
		if sources := sourcesFor(userID, budget.ID, incomeIDs); len(sources) > 0 {
			if err := tx.Create(&sources).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateWriteError(err)
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// GetBudgets lists the user's budgets for a month, or every budget when month
// and year are zero, with category and income sources loaded.
func (s *budgetService) GetBudgets(userID string, month, year int) ([]models.Budget, error) {
	q := s.withRelations(s.db).Where("user_id = ?", userID)
	if month != 0 || year != 0 {
		if err := validateMonthYear(month, year); err != nil {
			return nil, err
		}
		q = q.Where("month = ? AND year = ?", month, year)
	}

	var budgets []models.Budget
	if err := q.Order("year DESC, month DESC, created_at ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

func (s *budgetService) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("IncomeSources", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("IncomeSources.Income")
}

// GetBudgetByID retrieves a budget by ID for a specific user
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.withRelations(s.db).Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget replaces a budget's fields and income sources in one
// transaction.
func (s *budgetService) UpdateBudget(userID, budgetID string, in BudgetInput) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	incomeIDs, err := s.validate(userID, &in)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUnique(tx, userID, in, budgetID); err != nil {
			return err
		}
		if err := tx.Model(&models.Budget{}).Where("id = ?", budget.ID).Updates(map[string]interface{}{
			"category_id":  in.CategoryID,
			"month":        in.Month,
			"year":         in.Year,
			"percentage":   in.Percentage,
			"limit_amount": in.LimitAmount,
		}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("budget_id = ?", budget.ID).Delete(&models.BudgetIncomeSource{}).Error; err != nil {
			return err
		}
		if sources := sourcesFor(userID, budget.ID, incomeIDs); len(sources) > 0 {
			if err := tx.Create(&sources).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateWriteError(err)
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget removes a budget and its income sources in one transaction.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("budget_id = ?", budget.ID).Delete(&models.BudgetIncomeSource{}).Error; err != nil {
			return err
		}
		// Hard delete so the (owner, category, month) slot can be reused.
		return tx.Unscoped().Delete(&models.Budget{}, "id = ?", budget.ID).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// EvaluateBudgets computes spending, limits and status of the user's budgets
// for a month, plus the totals row.
func (s *budgetService) EvaluateBudgets(ctx context.Context, userID string, month, year int) (*BudgetEvaluation, error) {
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var budgets []models.Budget
	if err := s.withRelations(db).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	start, end := monthRange(month, year)
	var expenses []models.Expense
	if err := db.Preload("ExpenseType").
		Where("user_id = ? AND expense_date >= ? AND expense_date < ?", userID, start, end).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return evaluate(month, year, budgets, expenses), nil
}

// evaluate runs the budget engine over loaded records and zips the results
// back onto the budgets.
func evaluate(month, year int, budgets []models.Budget, expenses []models.Expense) *BudgetEvaluation {
	results := engine.Evaluate(month, year, toEngineBudgets(budgets), toEngineExpenses(expenses))

	stats := make([]BudgetWithStats, len(results))
	for i, r := range results {
		stats[i] = BudgetWithStats{
			Budget:          budgets[i],
			IncomeTotal:     r.IncomeTotal,
			LimitCalculated: r.LimitCalculated,
			Spent:           r.Spent,
			Balance:         r.Balance,
			Status:          r.Status,
		}
	}

	return &BudgetEvaluation{
		Month:   month,
		Year:    year,
		Budgets: stats,
		Totals:  engine.Aggregate(results),
	}
}

func toEngineBudgets(budgets []models.Budget) []engine.Budget {
	out := make([]engine.Budget, len(budgets))
	for i, b := range budgets {
		sources := make([]engine.IncomeSource, len(b.IncomeSources))
		for j, src := range b.IncomeSources {
			sources[j] = engine.IncomeSource{IncomeID: src.IncomeID}
			if src.Income != nil {
				sources[j].Income = &engine.Income{ID: src.Income.ID, Amount: src.Income.Amount}
			}
		}
		out[i] = engine.Budget{
			ID:            b.ID,
			CategoryID:    b.CategoryID,
			Month:         b.Month,
			Year:          b.Year,
			Percentage:    b.Percentage,
			LimitAmount:   b.LimitAmount,
			IncomeSources: sources,
		}
	}
	return out
}

func toEngineExpenses(expenses []models.Expense) []engine.Expense {
	out := make([]engine.Expense, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		out[i] = engine.Expense{
			ID:         e.ID,
			Amount:     e.Amount,
			Date:       e.ExpenseDate,
			CategoryID: e.CategoryID(),
		}
	}
	return out
}
