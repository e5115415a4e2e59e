// Package budget evaluates monthly category budgets against actual spending.
//
// The engine is pure: callers load owner-scoped records, convert them into the
// plain types below and call Evaluate. Nothing here performs I/O, keeps state
// between calls or mutates its inputs, and missing relations never cause an
// error; they simply count as zero.
package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/money"
)

// Status classifies a budget's spending relative to its effective limit.
type Status string

const (
	StatusNoSpending Status = "no-spending"
	StatusExceeded   Status = "exceeded"
	StatusAttention  Status = "attention"
	StatusOnTrack    Status = "on-track"
)

// attentionRatio is the share of the limit above which spending needs attention.
func attentionRatio() decimal.Decimal {
	return decimal.New(8, -1)
}

// LimitKind tells which of a budget's two limit fields drives its ceiling.
type LimitKind int

const (
	LimitNone LimitKind = iota
	LimitPercentage
	LimitFixed
)

// Income is the part of an income record the engine needs.
type Income struct {
	ID     string
	Amount decimal.Decimal
}

// IncomeSource links a budget to one income. Income is nil when the
// referenced record could not be resolved.
type IncomeSource struct {
	IncomeID string
	Income   *Income
}

// Budget is a per-category monthly spending plan. A nil CategoryID means
// uncategorized. Percentage and LimitAmount are mutually exclusive by
// convention; when both are set the percentage wins if there is income.
type Budget struct {
	ID            string
	CategoryID    *string
	Month         int
	Year          int
	Percentage    *decimal.Decimal
	LimitAmount   *decimal.Decimal
	IncomeSources []IncomeSource
}

// Kind reports which limit field is set, preferring the percentage.
func (b Budget) Kind() LimitKind {
	switch {
	case b.Percentage != nil:
		return LimitPercentage
	case b.LimitAmount != nil:
		return LimitFixed
	default:
		return LimitNone
	}
}

// Expense is a single outflow. CategoryID is the category resolved through the
// expense type, nil when the expense has none.
type Expense struct {
	ID         string
	Amount     decimal.Decimal
	Date       time.Time
	CategoryID *string
}

// Result is a budget annotated with its computed figures.
type Result struct {
	Budget          Budget
	IncomeTotal     decimal.Decimal
	LimitCalculated decimal.Decimal
	Spent           decimal.Decimal
	Balance         decimal.Decimal
	Status          Status
}

// Evaluate computes one Result per budget for the given calendar month, in
// input order.
func Evaluate(month, year int, budgets []Budget, expenses []Expense) []Result {
	results := make([]Result, len(budgets))
	for i, b := range budgets {
		incomeTotal := IncomeBase(b)
		limit := EffectiveLimit(b, incomeTotal)
		spent := Spent(b.CategoryID, month, year, expenses)

		results[i] = Result{
			Budget:          b,
			IncomeTotal:     incomeTotal,
			LimitCalculated: limit,
			Spent:           spent,
			Balance:         limit.Sub(spent),
			Status:          Classify(spent, limit),
		}
	}
	return results
}

// IncomeBase sums the amounts of the budget's resolved income sources.
func IncomeBase(b Budget) decimal.Decimal {
	total := decimal.Zero
	for _, src := range b.IncomeSources {
		if src.Income == nil {
			continue
		}
		total = total.Add(src.Income.Amount)
	}
	return total
}

// EffectiveLimit resolves a budget's spending ceiling. A percentage applies
// only when there is income to take it from; otherwise the fixed amount is
// used, and a budget with neither has a zero limit. The percentage product is
// kept exact so status and balance never see a rounded ceiling.
func EffectiveLimit(b Budget, incomeTotal decimal.Decimal) decimal.Decimal {
	if b.Percentage != nil && incomeTotal.IsPositive() {
		return money.PercentOf(*b.Percentage, incomeTotal)
	}
	if b.LimitAmount != nil {
		return *b.LimitAmount
	}
	return decimal.Zero
}

// Spent sums expenses of the given category dated in (month, year). Dates are
// compared by their calendar components in their own location.
func Spent(categoryID *string, month, year int, expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if !sameCategory(categoryID, e.CategoryID) {
			continue
		}
		if e.Date.Year() != year || int(e.Date.Month()) != month {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

// Classify assigns a status to spending against a limit. Any spending against
// a zero limit is exceeded.
func Classify(spent, limit decimal.Decimal) Status {
	switch {
	case spent.IsZero():
		return StatusNoSpending
	case spent.GreaterThan(limit):
		return StatusExceeded
	case spent.GreaterThan(limit.Mul(attentionRatio())):
		return StatusAttention
	default:
		return StatusOnTrack
	}
}

// Progress returns spending as a percentage of the limit, zero when the limit
// is zero.
func Progress(r Result) decimal.Decimal {
	if !r.LimitCalculated.IsPositive() {
		return decimal.Zero
	}
	return money.Round(money.Ratio(r.Spent, r.LimitCalculated))
}

func sameCategory(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
