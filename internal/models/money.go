package models

import "github.com/shopspring/decimal"

// MaxMoney is the largest value a NUMERIC(18,2) balance or amount column holds.
var MaxMoney = decimal.RequireFromString("9999999999999999.99")

// Money renders a decimal as a JSON number with two decimal places.
type Money struct {
	decimal.Decimal
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}
