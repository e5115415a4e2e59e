package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestExpenseTypeService(t *testing.T) {
	t.Run("create_with_expense_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseTypeService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		et, err := svc.CreateExpenseType(user.ID, "Supermarket", &cat.ID)
		testutil.AssertNoError(t, err)
		if et.Category == nil || et.Category.ID != cat.ID {
			t.Errorf("expected category to be loaded, got %+v", et.Category)
		}
	})

	t.Run("create_without_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseTypeService(db)
		user := testutil.CreateTestUser(t, db)

		empty := ""
		et, err := svc.CreateExpenseType(user.ID, "Misc", &empty)
		testutil.AssertNoError(t, err)
		if et.CategoryID != nil {
			t.Errorf("expected no category, got %v", *et.CategoryID)
		}
	})

	t.Run("rejects_income_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseTypeService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

		_, err := svc.CreateExpenseType(user.ID, "Wrong", &cat.ID)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects_foreign_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseTypeService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

		_, err := svc.CreateExpenseType(user.ID, "Borrowed", &cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("update_and_clear_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseTypeService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		et := testutil.CreateTestExpenseType(t, db, user.ID, nil)

		updated, err := svc.UpdateExpenseType(user.ID, et.ID, "Fuel", &cat.ID)
		testutil.AssertNoError(t, err)
		if updated.Name != "Fuel" || updated.CategoryID == nil || *updated.CategoryID != cat.ID {
			t.Errorf("unexpected expense type after update: %+v", updated)
		}

		none := ""
		updated, err = svc.UpdateExpenseType(user.ID, et.ID, "", &none)
		testutil.AssertNoError(t, err)
		if updated.CategoryID != nil || updated.Name != "Fuel" {
			t.Errorf("expected cleared category and kept name, got %+v", updated)
		}
	})

	t.Run("list_is_owner_scoped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseTypeService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestExpenseType(t, db, user.ID, nil)
		testutil.CreateTestExpenseType(t, db, other.ID, nil)

		types, err := svc.GetUserExpenseTypes(user.ID)
		testutil.AssertNoError(t, err)
		if len(types) != 1 {
			t.Errorf("expected 1 expense type, got %d", len(types))
		}
	})

	t.Run("delete_in_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseTypeService(db)
		user := testutil.CreateTestUser(t, db)
		et := testutil.CreateTestExpenseType(t, db, user.ID, nil)
		testutil.CreateTestExpense(t, db, user.ID, &et.ID, "10", testutil.Date(2025, time.May, 1))

		testutil.AssertAppError(t, svc.DeleteExpenseType(user.ID, et.ID), "EXPENSE_TYPE_IN_USE")

		unused := testutil.CreateTestExpenseType(t, db, user.ID, nil)
		testutil.AssertNoError(t, svc.DeleteExpenseType(user.ID, unused.ID))
		_, err := svc.GetExpenseTypeByID(user.ID, unused.ID)
		testutil.AssertAppError(t, err, "EXPENSE_TYPE_NOT_FOUND")
	})
}

func TestInstitutionService_CreateListDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewInstitutionService(db)
	user := testutil.CreateTestUser(t, db)

	_, err := svc.CreateInstitution(user.ID, " ", "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	bank, err := svc.CreateInstitution(user.ID, "Nubank", "https://example.com/logo.png")
	testutil.AssertNoError(t, err)
	used := testutil.CreateTestInstitution(t, db, user.ID)
	income := testutil.CreateTestIncome(t, db, user.ID, "50", testutil.Date(2025, time.May, 1))
	db.Model(income).Update("institution_id", used.ID)

	list, err := svc.GetUserInstitutions(user.ID)
	testutil.AssertNoError(t, err)
	if len(list) != 2 {
		t.Fatalf("expected 2 institutions, got %d", len(list))
	}

	testutil.AssertAppError(t, svc.DeleteInstitution(user.ID, used.ID), "INSTITUTION_IN_USE")
	testutil.AssertNoError(t, svc.DeleteInstitution(user.ID, bank.ID))
	testutil.AssertAppError(t, svc.DeleteInstitution(user.ID, bank.ID), "INSTITUTION_NOT_FOUND")
}
