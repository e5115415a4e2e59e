package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	engine "fintrack/internal/budget"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, fullName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateProfile(userID, fullName string) (*models.User, error)
	ChangePassword(userID, currentPassword, newPassword string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// ExpenseTypeServicer defines the contract for expense type business logic.
// In UpdateExpenseType a nil categoryID keeps the current category and an
// empty one clears it.
type ExpenseTypeServicer interface {
	CreateExpenseType(userID, name string, categoryID *string) (*models.ExpenseType, error)
	GetUserExpenseTypes(userID string) ([]models.ExpenseType, error)
	GetExpenseTypeByID(userID, expenseTypeID string) (*models.ExpenseType, error)
	UpdateExpenseType(userID, expenseTypeID, name string, categoryID *string) (*models.ExpenseType, error)
	DeleteExpenseType(userID, expenseTypeID string) error
}

// InstitutionServicer defines the contract for institution business logic.
type InstitutionServicer interface {
	CreateInstitution(userID, name, logoURL string) (*models.Institution, error)
	GetUserInstitutions(userID string) ([]models.Institution, error)
	DeleteInstitution(userID, institutionID string) error
}

// IncomeInput carries the writable fields of an income.
type IncomeInput struct {
	Description   string
	PaymentType   string
	Amount        decimal.Decimal
	IncomeDate    time.Time
	IsFixed       bool
	IsReceived    bool
	CategoryID    *string
	InstitutionID *string
}

// Income status filter values.
const (
	IncomeStatusAll      = "all"
	IncomeStatusReceived = "received"
	IncomeStatusPending  = "pending"
)

// IncomeFilter holds optional filter parameters for listing incomes.
type IncomeFilter struct {
	Status        string
	CategoryID    *string
	InstitutionID *string
	IsFixed       *bool
	FromDate      *time.Time
	ToDate        *time.Time
}

// IncomeSummary totals incomes over a date range.
type IncomeSummary struct {
	Total    decimal.Decimal `json:"total"`
	Received decimal.Decimal `json:"received"`
	Pending  decimal.Decimal `json:"pending"`
	Count    int             `json:"count"`
}

// IncomeServicer defines the contract for income business logic.
type IncomeServicer interface {
	CreateIncome(userID string, in IncomeInput) (*models.Income, error)
	GetUserIncomes(userID string, page pagination.PageRequest, filter IncomeFilter) (*pagination.PageResponse[models.Income], error)
	GetIncomeByID(userID, incomeID string) (*models.Income, error)
	UpdateIncome(userID, incomeID string, in IncomeInput) (*models.Income, error)
	DeleteIncome(userID, incomeID string) error
	MarkReceived(userID, incomeID string) (*models.Income, error)
	GetSummary(userID string, from, to *time.Time) (*IncomeSummary, error)
}

// ExpenseInput carries the writable fields of an expense.
type ExpenseInput struct {
	Description   string
	PaymentType   string
	Amount        decimal.Decimal
	ExpenseDate   time.Time
	PaymentDate   *time.Time
	IsPaid        bool
	ExpenseTypeID *string
	InstitutionID *string
}

// ExpenseFilter holds optional filter parameters for listing expenses.
// CategoryID matches through the expense type.
type ExpenseFilter struct {
	IsPaid        *bool
	ExpenseTypeID *string
	CategoryID    *string
	FromDate      *time.Time
	ToDate        *time.Time
}

// ExpenseServicer defines the contract for expense business logic.
type ExpenseServicer interface {
	CreateExpense(userID string, in ExpenseInput) (*models.Expense, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, in ExpenseInput) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	MarkPaid(userID, expenseID string, paymentDate *time.Time) (*models.Expense, error)
}

// BudgetInput carries the writable fields of a budget. Exactly one of
// Percentage and LimitAmount must be set.
type BudgetInput struct {
	CategoryID  *string
	Month       int
	Year        int
	Percentage  *decimal.Decimal
	LimitAmount *decimal.Decimal
	IncomeIDs   []string
}

// BudgetWithStats is a budget annotated with its evaluated figures for one
// month.
type BudgetWithStats struct {
	models.Budget
	IncomeTotal     decimal.Decimal `json:"income_total"`
	LimitCalculated decimal.Decimal `json:"limit_calculated"`
	Spent           decimal.Decimal `json:"spent"`
	Balance         decimal.Decimal `json:"balance"`
	Status          engine.Status   `json:"status"`
}

// BudgetEvaluation is the evaluated budget list of a month with its totals row.
type BudgetEvaluation struct {
	Month   int               `json:"month"`
	Year    int               `json:"year"`
	Budgets []BudgetWithStats `json:"budgets"`
	Totals  engine.Totals     `json:"totals"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in BudgetInput) (*models.Budget, error)
	GetBudgets(userID string, month, year int) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, in BudgetInput) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	EvaluateBudgets(ctx context.Context, userID string, month, year int) (*BudgetEvaluation, error)
}

// CategoryAmount is a per-category total on the dashboard. CategoryID is nil
// for uncategorized records.
type CategoryAmount struct {
	CategoryID *string         `json:"category_id"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// BudgetProgress is one budget's spending as a share of its limit.
type BudgetProgress struct {
	BudgetID        string          `json:"budget_id"`
	CategoryID      *string         `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	LimitCalculated decimal.Decimal `json:"limit_calculated"`
	Spent           decimal.Decimal `json:"spent"`
	Progress        decimal.Decimal `json:"progress"`
	Status          engine.Status   `json:"status"`
}

// DashboardSummary is the monthly overview of a user's finances.
type DashboardSummary struct {
	Month             int              `json:"month"`
	Year              int              `json:"year"`
	TotalIncome       decimal.Decimal  `json:"total_income"`
	TotalExpense      decimal.Decimal  `json:"total_expense"`
	Balance           decimal.Decimal  `json:"balance"`
	SavingsRate       decimal.Decimal  `json:"savings_rate"`
	IncomeByCategory  []CategoryAmount `json:"income_by_category"`
	ExpenseByCategory []CategoryAmount `json:"expense_by_category"`
	BudgetProgress    []BudgetProgress `json:"budget_progress"`
	BudgetTotals      engine.Totals    `json:"budget_totals"`
}

// DashboardServicer defines the contract for the monthly dashboard.
type DashboardServicer interface {
	GetSummary(ctx context.Context, userID string, month, year int) (*DashboardSummary, error)
}

// NotificationSettingsInput carries the writable notification preferences.
type NotificationSettingsInput struct {
	EmailNotifications bool
	PushNotifications  bool
	OverdueAlerts      bool
	UpcomingAlerts     bool
	UpcomingDays       int
}

// ScanResult reports what an income alert scan produced.
type ScanResult struct {
	Scanned  int `json:"scanned"`
	Overdue  int `json:"overdue"`
	Upcoming int `json:"upcoming"`
}

// NotificationServicer defines the contract for in-app notifications.
type NotificationServicer interface {
	GetSettings(userID string) (*models.NotificationSettings, error)
	UpdateSettings(userID string, in NotificationSettingsInput) (*models.NotificationSettings, error)
	GetNotifications(userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	UnreadCount(userID string) (int64, error)
	MarkRead(userID, notificationID string) error
	MarkAllRead(userID string) (int64, error)
	DeleteNotification(userID, notificationID string) error
	Notify(n *models.Notification) error
	ScanIncomeAlerts(now time.Time) (*ScanResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
