// Package money provides the decimal helpers shared by budget math and
// user-facing messages: cent rounding, percentages and currency formatting.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Places is the number of fractional digits kept for currency amounts.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds an amount to whole cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Sum adds all amounts. An empty input sums to zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// PercentOf returns pct percent of base, e.g. PercentOf(20, 4000) = 800.
func PercentOf(pct, base decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred).Mul(base)
}

// Ratio returns part as a percentage of whole. A zero whole yields zero
// instead of dividing by zero.
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Format renders amount in the given ISO 4217 currency using the number
// conventions of lang (a BCP 47 tag such as "pt-BR"). Unknown codes or tags
// fall back to USD and English.
func Format(amount decimal.Decimal, code, lang string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	value, _ := Round(amount).Float64()
	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(unit.Amount(value)))
}
