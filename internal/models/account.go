package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID            int64           `json:"accountId"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	CustomerID    int64           `json:"customerId"`
	AccountTypeID int             `json:"accountTypeId"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// MarshalJSON emits the balance as a JSON number with two decimal places.
func (a Account) MarshalJSON() ([]byte, error) {
	type plain Account
	return json.Marshal(struct {
		plain
		Balance Money `json:"balance"`
	}{plain(a), Money{a.Balance}})
}

// Credit and Debit return the new balance without checking sufficiency;
// callers decide whether a debit is allowed.
func (a *Account) Credit(amount decimal.Decimal) decimal.Decimal {
	a.Balance = a.Balance.Add(amount)
	return a.Balance
}

func (a *Account) Debit(amount decimal.Decimal) decimal.Decimal {
	a.Balance = a.Balance.Sub(amount)
	return a.Balance
}

func (a *Account) Covers(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Holds reports whether crediting amount keeps the balance within MaxMoney.
func (a *Account) Holds(amount decimal.Decimal) bool {
	return a.Balance.Add(amount).LessThanOrEqual(MaxMoney)
}

type AccountType struct {
	ID   int    `json:"accountTypeId"`
	Name string `json:"accountTypeName"`
}
