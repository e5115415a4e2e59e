package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestLedgerFlow_IncomesAndExpenses(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "ledger@test.com", "password123")

	bank := app.create(t, token, "/api/v1/institutions", "institution", `{"name":"Nubank"}`)
	salaryID := app.create(t, token, "/api/v1/incomes", "income", fmt.Sprintf(
		`{"description":"Salary","amount":"4200.50","income_date":"2025-03-05","is_fixed":true,"institution_id":%q}`, bank))
	app.create(t, token, "/api/v1/incomes", "income", `{"description":"Freelance","amount":"800","income_date":"2025-03-20","is_received":true}`)

	t.Run("summary splits received and pending", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/incomes/summary?from=2025-03-01&to=2025-03-31", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		summary := parseJSON(t, rec)["summary"].(map[string]interface{})
		if summary["total"] != "5000.5" || summary["received"] != "800" || summary["pending"] != "4200.5" {
			t.Errorf("unexpected summary %v", summary)
		}
	})

	t.Run("receive an income", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/incomes/"+salaryID+"/receive", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["income"].(map[string]interface{})["is_received"] != true {
			t.Error("expected the income to be received")
		}

		rec = app.request("GET", "/api/v1/incomes?status=pending", "", token)
		if items := parseJSON(t, rec)["data"].([]interface{}); len(items) != 0 {
			t.Errorf("expected no pending incomes, got %d", len(items))
		}
	})

	t.Run("the institution cannot be deleted while in use", func(t *testing.T) {
		rec := app.request("DELETE", "/api/v1/institutions/"+bank, "", token)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("pay an expense", func(t *testing.T) {
		rent := app.create(t, token, "/api/v1/expense-types", "expense_type", `{"name":"Rent"}`)
		expenseID := app.create(t, token, "/api/v1/expenses", "expense", fmt.Sprintf(
			`{"description":"March rent","amount":"1800","expense_date":"2025-03-10","expense_type_id":%q}`, rent))

		rec := app.request("GET", "/api/v1/expenses?is_paid=false", "", token)
		if items := parseJSON(t, rec)["data"].([]interface{}); len(items) != 1 {
			t.Fatalf("expected 1 unpaid expense, got %d", len(items))
		}

		rec = app.request("POST", "/api/v1/expenses/"+expenseID+"/pay", `{"payment_date":"2025-03-09"}`, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		expense := parseJSON(t, rec)["expense"].(map[string]interface{})
		if expense["is_paid"] != true || expense["payment_date"] == nil {
			t.Errorf("expected a paid expense with a payment date, got %v", expense)
		}

		rec = app.request("DELETE", "/api/v1/expense-types/"+rent, "", token)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 deleting a used expense type, got %d", rec.Code)
		}
	})

	t.Run("negative amounts are rejected", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/expenses", `{"description":"Refund","amount":"-5","expense_date":"2025-03-10"}`, token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestLedgerFlow_Dashboard(t *testing.T) {
	app := setupApp(t)
	f := setupBudgetFixture(t, app)
	app.create(t, f.token, "/api/v1/budgets", "budget", fmt.Sprintf(
		`{"category_id":%q,"month":6,"year":2025,"limit_amount":"1000"}`, f.groceriesID))

	rec := app.request("GET", "/api/v1/dashboard?month=6&year=2025", "", f.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)
	if summary["total_income"] != "5000" || summary["total_expense"] != "1590" || summary["balance"] != "3410" {
		t.Errorf("unexpected totals %v", summary)
	}
	if summary["savings_rate"] != "68.2" {
		t.Errorf("expected 68.2 savings rate, got %v", summary["savings_rate"])
	}

	expenses := summary["expense_by_category"].([]interface{})
	if len(expenses) != 3 {
		t.Fatalf("expected 3 expense groups, got %d", len(expenses))
	}
	if top := expenses[0].(map[string]interface{}); top["name"] != "Groceries" || top["amount"] != "1300" {
		t.Errorf("expected groceries first, got %v", top)
	}

	progress := summary["budget_progress"].([]interface{})
	if len(progress) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(progress))
	}
	if p := progress[0].(map[string]interface{}); p["progress"] != "130" || p["status"] != "exceeded" {
		t.Errorf("unexpected progress %v", p)
	}
}
