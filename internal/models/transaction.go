package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the transaction type id stored in the transaction_types lookup table.
type Kind int

const (
	KindWithdraw      Kind = 1
	KindDeposit       Kind = 2
	KindTransfer      Kind = 3
	KindLoanRepayment Kind = 4
)

type TransactionType struct {
	ID   Kind   `json:"transactionTypeId"`
	Name string `json:"transactionTypeName"`
}

// Transaction is a ledger entry. Rows are only ever inserted.
type Transaction struct {
	ID                   int64           `json:"-"`
	SourceAccountID      *int64          `json:"-"`
	DestinationAccountID *int64          `json:"-"`
	Kind                 Kind            `json:"-"`
	Amount               decimal.Decimal `json:"-"`
	CustomerID           *int64          `json:"-"`
	EmployeeID           *int64          `json:"-"`
	TransactionDate      time.Time       `json:"-"`

	// resolved on read
	SourceAccountNumber      *string `json:"-"`
	DestinationAccountNumber *string `json:"-"`
	KindName                 string  `json:"-"`
}

// TransactionRequest is the input of the transaction processor.
type TransactionRequest struct {
	TransactionTypeID        Kind            `json:"transactionTypeId" validate:"required"`
	SourceAccountNumber      string          `json:"sourceAccountNumber" validate:"required,max=32"`
	DestinationAccountNumber *string         `json:"destinationAccountNumber,omitempty" validate:"omitempty,max=32"`
	Amount                   decimal.Decimal `json:"amount"`
	CustomerID               int64           `json:"customerId" validate:"required,gt=0"`
	EmployeeID               *int64          `json:"-"`
}

// Destination returns the trimmed destination account number or "".
func (r TransactionRequest) Destination() string {
	if r.DestinationAccountNumber == nil {
		return ""
	}
	return strings.TrimSpace(*r.DestinationAccountNumber)
}

type TransactionResponse struct {
	TransactionID            int64           `json:"transactionId"`
	SourceAccountNumber      *string         `json:"sourceAccountNumber"`
	DestinationAccountNumber *string         `json:"destinationAccountNumber"`
	Amount                   Money           `json:"amount"`
	TransactionType          string          `json:"transactionType"`
	TransactionDate          time.Time       `json:"transactionDate"`
}

func (t Transaction) Response() TransactionResponse {
	return TransactionResponse{
		TransactionID:            t.ID,
		SourceAccountNumber:      t.SourceAccountNumber,
		DestinationAccountNumber: t.DestinationAccountNumber,
		Amount:                   Money{t.Amount},
		TransactionType:          t.KindName,
		TransactionDate:          t.TransactionDate,
	}
}

// TransactionFilter is a conjunctive filter over the ledger. Zero values match everything.
type TransactionFilter struct {
	CustomerID *int64
	Kind       *Kind
	From       *time.Time // inclusive
	To         *time.Time // inclusive
}

// Match applies the filter in memory.
func (f TransactionFilter) Match(t Transaction) bool {
	if f.CustomerID != nil && (t.CustomerID == nil || *t.CustomerID != *f.CustomerID) {
		return false
	}
	if f.Kind != nil && t.Kind != *f.Kind {
		return false
	}
	if f.From != nil && t.TransactionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && t.TransactionDate.After(*f.To) {
		return false
	}
	return true
}
