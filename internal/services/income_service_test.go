package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

var testFormat = Formatter{Currency: "USD", Locale: "en"}

func TestCreateIncome(t *testing.T) {
	t.Run("valid_posts_notification", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifications := NewNotificationService(db, testFormat)
		svc := NewIncomeService(db, notifications, testFormat)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
		bank := testutil.CreateTestInstitution(t, db, user.ID)

		local := time.Date(2025, time.March, 5, 22, 30, 0, 0, time.FixedZone("UTC-3", -3*3600))
		income, err := svc.CreateIncome(user.ID, IncomeInput{
			Description:   " Salary ",
			Amount:        testutil.Amount(t, "4000"),
			IncomeDate:    local,
			IsFixed:       true,
			CategoryID:    &cat.ID,
			InstitutionID: &bank.ID,
		})
		testutil.AssertNoError(t, err)
		if income.Description != "Salary" {
			t.Errorf("expected trimmed description, got %q", income.Description)
		}
		if !income.IncomeDate.Equal(testutil.Date(2025, time.March, 5)) {
			t.Errorf("expected calendar date kept, got %s", income.IncomeDate)
		}
		if income.Category == nil || income.Institution == nil {
			t.Error("expected relations to be loaded")
		}

		list, err := notifications.GetNotifications(user.ID, true, 0)
		testutil.AssertNoError(t, err)
		if len(list) != 1 || list[0].Type != models.NotificationIncomeCreated {
			t.Fatalf("expected one income_created notification, got %+v", list)
		}
		if list[0].ReferenceID == nil || *list[0].ReferenceID != income.ID {
			t.Error("expected notification to reference the income")
		}
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeService(db, nil, testFormat)
		user := testutil.CreateTestUser(t, db)
		expenseCat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		date := testutil.Date(2025, time.March, 1)

		cases := []struct {
			name string
			in   IncomeInput
			code string
		}{
			{"no_description", IncomeInput{Amount: testutil.Amount(t, "1"), IncomeDate: date}, "INVALID_INPUT"},
			{"negative_amount", IncomeInput{Description: "x", Amount: testutil.Amount(t, "-1"), IncomeDate: date}, "INVALID_INPUT"},
			{"no_date", IncomeInput{Description: "x", Amount: testutil.Amount(t, "1")}, "INVALID_INPUT"},
			{"expense_category", IncomeInput{Description: "x", Amount: testutil.Amount(t, "1"), IncomeDate: date, CategoryID: &expenseCat.ID}, "INVALID_INPUT"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.CreateIncome(user.ID, tc.in)
				testutil.AssertAppError(t, err, tc.code)
			})
		}
	})
}

func TestGetUserIncomes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewIncomeService(db, nil, testFormat)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	jan := testutil.CreateTestIncome(t, db, user.ID, "100", testutil.Date(2025, time.January, 10))
	feb := testutil.CreateTestIncome(t, db, user.ID, "200", testutil.Date(2025, time.February, 10))
	testutil.CreateTestIncome(t, db, user.ID, "300", testutil.Date(2025, time.March, 10))
	testutil.CreateTestIncome(t, db, other.ID, "999", testutil.Date(2025, time.February, 10))
	db.Model(jan).Update("is_received", true)
	db.Model(feb).Update("is_fixed", true)

	page := pagination.PageRequest{Page: 1, PageSize: 20}
	from := testutil.Date(2025, time.February, 1)
	to := testutil.Date(2025, time.March, 31)
	fixed := true

	tests := []struct {
		name   string
		filter IncomeFilter
		want   int64
	}{
		{"all", IncomeFilter{Status: IncomeStatusAll}, 3},
		{"received", IncomeFilter{Status: IncomeStatusReceived}, 1},
		{"pending", IncomeFilter{Status: IncomeStatusPending}, 2},
		{"date_range", IncomeFilter{FromDate: &from, ToDate: &to}, 2},
		{"fixed", IncomeFilter{IsFixed: &fixed}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetUserIncomes(user.ID, page, tt.filter)
			testutil.AssertNoError(t, err)
			if result.TotalItems != tt.want {
				t.Errorf("expected %d incomes, got %d", tt.want, result.TotalItems)
			}
		})
	}

	t.Run("newest_first", func(t *testing.T) {
		result, err := svc.GetUserIncomes(user.ID, page, IncomeFilter{})
		testutil.AssertNoError(t, err)
		if result.Data[0].IncomeDate.Month() != time.March {
			t.Errorf("expected March first, got %s", result.Data[0].IncomeDate)
		}
	})
}

func TestUpdateAndDeleteIncome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewIncomeService(db, nil, testFormat)
	budgets := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)
	income := testutil.CreateTestIncome(t, db, user.ID, "1000", testutil.Date(2025, time.May, 1))

	updated, err := svc.UpdateIncome(user.ID, income.ID, IncomeInput{
		Description: "Freelance",
		Amount:      testutil.Amount(t, "1250.50"),
		IncomeDate:  testutil.Date(2025, time.May, 2),
	})
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, "1250.50", updated.Amount, "amount")
	if updated.Description != "Freelance" {
		t.Errorf("expected Freelance, got %s", updated.Description)
	}

	b, err := budgets.CreateBudget(user.ID, BudgetInput{
		Month: 5, Year: 2025, Percentage: decPtr(t, "10"), IncomeIDs: []string{income.ID},
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteIncome(user.ID, income.ID))
	_, err = svc.GetIncomeByID(user.ID, income.ID)
	testutil.AssertAppError(t, err, "INCOME_NOT_FOUND")

	reloaded, err := budgets.GetBudgetByID(user.ID, b.ID)
	testutil.AssertNoError(t, err)
	if len(reloaded.IncomeSources) != 0 {
		t.Errorf("expected budget to lose the deleted income source, got %d", len(reloaded.IncomeSources))
	}
}

func TestMarkReceived(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	notifications := NewNotificationService(db, testFormat)
	svc := NewIncomeService(db, notifications, testFormat)
	user := testutil.CreateTestUser(t, db)
	income := testutil.CreateTestIncome(t, db, user.ID, "250", testutil.Date(2025, time.May, 1))

	got, err := svc.MarkReceived(user.ID, income.ID)
	testutil.AssertNoError(t, err)
	if !got.IsReceived {
		t.Error("expected income to be received")
	}

	_, err = svc.MarkReceived(user.ID, income.ID)
	testutil.AssertNoError(t, err)

	count, err := notifications.UnreadCount(user.ID)
	testutil.AssertNoError(t, err)
	if count != 1 {
		t.Errorf("expected exactly one received notification, got %d", count)
	}

	other := testutil.CreateTestUser(t, db)
	_, err = svc.MarkReceived(other.ID, income.ID)
	testutil.AssertAppError(t, err, "INCOME_NOT_FOUND")
}

func TestIncomeSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewIncomeService(db, nil, testFormat)
	user := testutil.CreateTestUser(t, db)

	received := testutil.CreateTestIncome(t, db, user.ID, "1000.25", testutil.Date(2025, time.July, 1))
	db.Model(received).Update("is_received", true)
	testutil.CreateTestIncome(t, db, user.ID, "500", testutil.Date(2025, time.July, 20))
	testutil.CreateTestIncome(t, db, user.ID, "800", testutil.Date(2025, time.August, 1))

	from := testutil.Date(2025, time.July, 1)
	to := testutil.Date(2025, time.July, 31)
	summary, err := svc.GetSummary(user.ID, &from, &to)
	testutil.AssertNoError(t, err)

	if summary.Count != 2 {
		t.Errorf("expected 2 incomes, got %d", summary.Count)
	}
	testutil.AssertAmount(t, "1500.25", summary.Total, "total")
	testutil.AssertAmount(t, "1000.25", summary.Received, "received")
	testutil.AssertAmount(t, "500", summary.Pending, "pending")

	all, err := svc.GetSummary(user.ID, nil, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, "2300.25", all.Total, "open range total")
}
