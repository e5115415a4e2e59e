package budget

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/money"
)

// Totals is the summary row across evaluated budgets.
type Totals struct {
	LimitCalculated decimal.Decimal `json:"limit_calculated"`
	Spent           decimal.Decimal `json:"spent"`
	Balance         decimal.Decimal `json:"balance"`
	Percentage      decimal.Decimal `json:"percentage"`
}

// Aggregate sums limits, spending and balances. The aggregate percentage adds
// each budget's own percentage, or the share of its income that a fixed
// amount represents; budgets with neither contribute nothing.
func Aggregate(results []Result) Totals {
	t := Totals{
		LimitCalculated: decimal.Zero,
		Spent:           decimal.Zero,
		Balance:         decimal.Zero,
		Percentage:      decimal.Zero,
	}
	for _, r := range results {
		t.LimitCalculated = t.LimitCalculated.Add(r.LimitCalculated)
		t.Spent = t.Spent.Add(r.Spent)
		t.Balance = t.Balance.Add(r.Balance)
		t.Percentage = t.Percentage.Add(sharePercentage(r))
	}
	t.Percentage = money.Round(t.Percentage)
	return t
}

func sharePercentage(r Result) decimal.Decimal {
	switch r.Budget.Kind() {
	case LimitPercentage:
		return *r.Budget.Percentage
	case LimitFixed:
		return money.Ratio(*r.Budget.LimitAmount, r.IncomeTotal)
	default:
		return decimal.Zero
	}
}
