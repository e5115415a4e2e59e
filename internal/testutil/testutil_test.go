package testutil_test

import (
	"testing"
	"time"

	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{
		"users", "categories", "expense_types", "institutions", "incomes", "expenses",
		"budgets", "budget_income_sources", "notifications", "notification_settings", "audit_logs",
	} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected empty second database, got %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	et := testutil.CreateTestExpenseType(t, db, user.ID, &category.ID)
	expense := testutil.CreateTestExpense(t, db, user.ID, &et.ID, "12.50", testutil.Date(2025, time.March, 3))
	if !expense.Amount.Equal(testutil.Amount(t, "12.5")) {
		t.Errorf("expected amount 12.50, got %s", expense.Amount)
	}

	income := testutil.CreateTestIncome(t, db, user.ID, "3000", testutil.Date(2025, time.March, 1))
	if income.IsReceived {
		t.Error("fixture incomes start pending")
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, &category.ID, 3, 2025, "400")
	if budget.LimitAmount == nil || !budget.LimitAmount.Equal(testutil.Amount(t, "400")) {
		t.Errorf("expected limit 400, got %v", budget.LimitAmount)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBudgetNotFound, "custom message")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}

func TestAssertAmount(t *testing.T) {
	testutil.AssertAmount(t, "1500", testutil.Amount(t, "1500.00"), "limit")
}
