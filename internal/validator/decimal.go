package validator

import (
	"reflect"

	"github.com/shopspring/decimal"
)

// decimalValue lets numeric rules such as gt=0 or lte=100 apply to
// decimal.Decimal fields by validating them as float64.
func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}
