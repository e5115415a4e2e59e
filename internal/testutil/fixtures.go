package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Amount parses a decimal literal, failing the test on malformed input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid amount %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		FullName: "Test User",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
		Color:  "#336699",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpenseType creates an expense type, optionally filed under a
// category.
func CreateTestExpenseType(t *testing.T, db *gorm.DB, userID string, categoryID *string) *models.ExpenseType {
	t.Helper()

	et := &models.ExpenseType{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Expense Type %d", nextID()),
		CategoryID: categoryID,
	}
	if err := db.Create(et).Error; err != nil {
		t.Fatalf("failed to create test expense type: %v", err)
	}
	return et
}

// CreateTestInstitution creates an institution.
func CreateTestInstitution(t *testing.T, db *gorm.DB, userID string) *models.Institution {
	t.Helper()

	inst := &models.Institution{
		UserID: userID,
		Name:   fmt.Sprintf("Test Bank %d", nextID()),
	}
	if err := db.Create(inst).Error; err != nil {
		t.Fatalf("failed to create test institution: %v", err)
	}
	return inst
}

// CreateTestIncome creates a pending income of the given amount on date.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID, amount string, date time.Time) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID:      userID,
		Description: fmt.Sprintf("Test Income %d", nextID()),
		Amount:      Amount(t, amount),
		IncomeDate:  date,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestExpense creates an unpaid expense of the given amount on date.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, expenseTypeID *string, amount string, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:        userID,
		Description:   fmt.Sprintf("Test Expense %d", nextID()),
		Amount:        Amount(t, amount),
		ExpenseDate:   date,
		ExpenseTypeID: expenseTypeID,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestBudget creates a fixed-amount budget for the given category and
// month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, categoryID *string, month, year int, limit string) *models.Budget {
	t.Helper()

	l := Amount(t, limit)
	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  categoryID,
		Month:       month,
		Year:        year,
		LimitAmount: &l,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestNotification creates an unread notification.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID string, notificationType models.NotificationType) *models.Notification {
	t.Helper()

	n := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   fmt.Sprintf("Test Notification %d", nextID()),
		Message: "test",
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}
