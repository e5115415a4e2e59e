package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// budgetFixture is a user with a June 2025 salary, two expense categories and
// spending in each.
type budgetFixture struct {
	token       string
	groceriesID string
	leisureID   string
	salaryID    string
}

func setupBudgetFixture(t *testing.T, app *testApp) budgetFixture {
	t.Helper()
	token, _, _ := app.registerUser(t, "budget@test.com", "password123")

	f := budgetFixture{token: token}
	f.groceriesID = app.create(t, token, "/api/v1/categories", "category", `{"name":"Groceries","type":"expense"}`)
	f.leisureID = app.create(t, token, "/api/v1/categories", "category", `{"name":"Leisure","type":"expense"}`)
	salaryCategory := app.create(t, token, "/api/v1/categories", "category", `{"name":"Salary","type":"income"}`)

	f.salaryID = app.create(t, token, "/api/v1/incomes", "income", fmt.Sprintf(
		`{"description":"June salary","amount":"5000","income_date":"2025-06-05","is_received":true,"category_id":%q}`, salaryCategory))

	market := app.create(t, token, "/api/v1/expense-types", "expense_type", fmt.Sprintf(`{"name":"Market","category_id":%q}`, f.groceriesID))
	cinema := app.create(t, token, "/api/v1/expense-types", "expense_type", fmt.Sprintf(`{"name":"Cinema","category_id":%q}`, f.leisureID))
	loose := app.create(t, token, "/api/v1/expense-types", "expense_type", `{"name":"Misc"}`)

	for _, e := range []struct{ desc, amount, date, typeID string }{
		{"Weekly market", "800", "2025-06-07", market},
		{"Monthly market", "500", "2025-06-20", market},
		{"Last month market", "999", "2025-05-30", market},
		{"Cinema", "250", "2025-06-14", cinema},
	} {
		app.create(t, token, "/api/v1/expenses", "expense", fmt.Sprintf(
			`{"description":%q,"amount":%q,"expense_date":%q,"expense_type_id":%q}`, e.desc, e.amount, e.date, e.typeID))
	}
	app.create(t, token, "/api/v1/expenses", "expense", fmt.Sprintf(
		`{"description":"Gift","amount":"40","expense_date":"2025-06-10","expense_type_id":%q}`, loose))

	return f
}

func TestBudgetFlow_Evaluation(t *testing.T) {
	app := setupApp(t)
	f := setupBudgetFixture(t, app)

	// 30% of the salary for groceries, a fixed 200 for leisure, 100 for uncategorized
	app.create(t, f.token, "/api/v1/budgets", "budget", fmt.Sprintf(
		`{"category_id":%q,"month":6,"year":2025,"percentage":"30","income_ids":[%q]}`, f.groceriesID, f.salaryID))
	app.create(t, f.token, "/api/v1/budgets", "budget", fmt.Sprintf(
		`{"category_id":%q,"month":6,"year":2025,"limit_amount":"200"}`, f.leisureID))
	app.create(t, f.token, "/api/v1/budgets", "budget", `{"month":6,"year":2025,"limit_amount":"100"}`)

	rec := app.request("GET", "/api/v1/budgets/evaluation?month=6&year=2025", "", f.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	budgets := result["budgets"].([]interface{})
	if len(budgets) != 3 {
		t.Fatalf("expected 3 budgets, got %d", len(budgets))
	}

	byCategory := make(map[string]map[string]interface{})
	for _, raw := range budgets {
		b := raw.(map[string]interface{})
		key, _ := b["category_id"].(string)
		byCategory[key] = b
	}

	groceries := byCategory[f.groceriesID]
	if groceries["limit_calculated"] != "1500" || groceries["spent"] != "1300" || groceries["status"] != "attention" {
		t.Errorf("unexpected groceries evaluation %v", groceries)
	}
	if groceries["income_total"] != "5000" || groceries["balance"] != "200" {
		t.Errorf("unexpected groceries income or balance %v", groceries)
	}

	leisure := byCategory[f.leisureID]
	if leisure["spent"] != "250" || leisure["balance"] != "-50" || leisure["status"] != "exceeded" {
		t.Errorf("unexpected leisure evaluation %v", leisure)
	}

	uncategorized := byCategory[""]
	if uncategorized["spent"] != "40" || uncategorized["status"] != "on-track" {
		t.Errorf("unexpected uncategorized evaluation %v", uncategorized)
	}

	totals := result["totals"].(map[string]interface{})
	if totals["limit_calculated"] != "1800" || totals["spent"] != "1590" || totals["balance"] != "210" {
		t.Errorf("unexpected totals %v", totals)
	}
	if totals["percentage"] != "30" {
		t.Errorf("expected 30%% allocated, got %v", totals["percentage"])
	}
}

func TestBudgetFlow_Rules(t *testing.T) {
	app := setupApp(t)
	f := setupBudgetFixture(t, app)

	body := fmt.Sprintf(`{"category_id":%q,"month":6,"year":2025,"limit_amount":"600"}`, f.groceriesID)
	budgetID := app.create(t, f.token, "/api/v1/budgets", "budget", body)

	t.Run("one budget per category and month", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/budgets", body, f.token)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		if code := errorCode(t, rec); code != "BUDGET_CONFLICT" {
			t.Errorf("expected BUDGET_CONFLICT, got %s", code)
		}
	})

	t.Run("a percentage and an amount together are rejected", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/budgets", fmt.Sprintf(
			`{"category_id":%q,"month":7,"year":2025,"percentage":"10","limit_amount":"100"}`, f.groceriesID), f.token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("income categories cannot be budgeted", func(t *testing.T) {
		salaryCategory := app.create(t, f.token, "/api/v1/categories", "category", `{"name":"Bonus","type":"income"}`)
		rec := app.request("POST", "/api/v1/budgets", fmt.Sprintf(
			`{"category_id":%q,"month":6,"year":2025,"limit_amount":"100"}`, salaryCategory), f.token)
		if rec.Code < 400 || rec.Code >= 500 {
			t.Fatalf("expected a client error, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("the budget is invisible to other users", func(t *testing.T) {
		other, _, _ := app.registerUser(t, "other@test.com", "password123")
		rec := app.request("GET", "/api/v1/budgets/"+budgetID, "", other)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("update then delete", func(t *testing.T) {
		rec := app.request("PUT", "/api/v1/budgets/"+budgetID, fmt.Sprintf(
			`{"category_id":%q,"month":6,"year":2025,"percentage":"25","income_ids":[%q]}`, f.groceriesID, f.salaryID), f.token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", "/api/v1/budgets/evaluation?month=6&year=2025", "", f.token)
		budgets := parseJSON(t, rec)["budgets"].([]interface{})
		if got := budgets[0].(map[string]interface{})["limit_calculated"]; got != "1250" {
			t.Errorf("expected 1250 after switching to 25%%, got %v", got)
		}

		rec = app.request("DELETE", "/api/v1/budgets/"+budgetID, "", f.token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		rec = app.request("POST", "/api/v1/budgets", body, f.token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected the slot to be free after delete, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid month", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/budgets/evaluation?month=13&year=2025", "", f.token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
