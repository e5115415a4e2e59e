package services

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	engine "fintrack/internal/budget"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
)

const uncategorizedName = "Uncategorized"

type dashboardService struct {
	db      *gorm.DB
	budgets BudgetServicer
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB, budgets BudgetServicer) DashboardServicer {
	return &dashboardService{db: db, budgets: budgets}
}

// GetSummary loads the month's incomes, expenses and budget evaluation
// concurrently and folds them into the dashboard figures.
func (s *dashboardService) GetSummary(ctx context.Context, userID string, month, year int) (*DashboardSummary, error) {
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}
	start, end := monthRange(month, year)

	var (
		incomes    []models.Income
		expenses   []models.Expense
		evaluation *BudgetEvaluation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Preload("Category").
			Where("user_id = ? AND income_date >= ? AND income_date < ?", userID, start, end).
			Find(&incomes).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Preload("ExpenseType.Category").
			Where("user_id = ? AND expense_date >= ? AND expense_date < ?", userID, start, end).
			Find(&expenses).Error
	})
	g.Go(func() error {
		var err error
		evaluation, err = s.budgets.EvaluateBudgets(gctx, userID, month, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translateDashboardError(err)
	}

	summary := &DashboardSummary{
		Month:        month,
		Year:         year,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		BudgetTotals: evaluation.Totals,
	}

	incomeGroups := newCategoryTotals()
	for _, in := range incomes {
		summary.TotalIncome = summary.TotalIncome.Add(in.Amount)
		incomeGroups.add(in.Category, in.Amount)
	}

	expenseGroups := newCategoryTotals()
	for i := range expenses {
		e := &expenses[i]
		summary.TotalExpense = summary.TotalExpense.Add(e.Amount)
		var category *models.Category
		if e.ExpenseType != nil {
			category = e.ExpenseType.Category
		}
		expenseGroups.add(category, e.Amount)
	}

	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	summary.SavingsRate = money.Round(money.Ratio(summary.Balance, summary.TotalIncome))
	summary.IncomeByCategory = incomeGroups.sorted()
	summary.ExpenseByCategory = expenseGroups.sorted()

	summary.BudgetProgress = make([]BudgetProgress, 0, len(evaluation.Budgets))
	for _, b := range evaluation.Budgets {
		name := uncategorizedName
		if b.Category != nil {
			name = b.Category.Name
		}
		summary.BudgetProgress = append(summary.BudgetProgress, BudgetProgress{
			BudgetID:        b.ID,
			CategoryID:      b.CategoryID,
			CategoryName:    name,
			LimitCalculated: b.LimitCalculated,
			Spent:           b.Spent,
			Progress:        engine.Progress(engine.Result{LimitCalculated: b.LimitCalculated, Spent: b.Spent}),
			Status:          b.Status,
		})
	}

	return summary, nil
}

func translateDashboardError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// categoryTotals groups amounts by category, keeping the order categories
// were first seen for ties.
type categoryTotals struct {
	order  []string
	groups map[string]*CategoryAmount
}

func newCategoryTotals() *categoryTotals {
	return &categoryTotals{groups: make(map[string]*CategoryAmount)}
}

func (t *categoryTotals) add(category *models.Category, amount decimal.Decimal) {
	key := ""
	if category != nil {
		key = category.ID
	}
	g, ok := t.groups[key]
	if !ok {
		g = &CategoryAmount{Name: uncategorizedName, Amount: decimal.Zero}
		if category != nil {
			id := category.ID
			g.CategoryID = &id
			g.Name = category.Name
			g.Color = category.Color
		}
		t.groups[key] = g
		t.order = append(t.order, key)
	}
	g.Amount = g.Amount.Add(amount)
}

// sorted returns the groups by descending amount.
func (t *categoryTotals) sorted() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, *t.groups[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}
