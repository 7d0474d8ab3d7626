package services

import (
	"fmt"

	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/shopspring/decimal"
)

// Rule describes how one transaction kind moves money. Adding a kind is a
// new table entry plus a transaction_types row.
type Rule struct {
	Kind                models.Kind
	Name                string
	RequiresDestination bool
	DebitSource         bool
	CreditSource        bool
	CreditDestination   bool
}

type Rules map[models.Kind]Rule

func DefaultRules() Rules {
	return Rules{
		models.KindWithdraw:      {Kind: models.KindWithdraw, Name: "Withdraw", DebitSource: true},
		models.KindDeposit:       {Kind: models.KindDeposit, Name: "Deposit", CreditSource: true},
		models.KindTransfer:      {Kind: models.KindTransfer, Name: "Transfer", RequiresDestination: true, DebitSource: true, CreditDestination: true},
		models.KindLoanRepayment: {Kind: models.KindLoanRepayment, Name: "LoanRepayment", DebitSource: true},
	}
}

func (r Rules) Lookup(k models.Kind) (Rule, error) {
	rule, ok := r[k]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %d", ErrUnknownTransactionType, k)
	}
	return rule, nil
}

// Apply mutates src and dst in place and returns the accounts whose balance
// changed. Nothing is mutated when an error is returned.
func (r Rule) Apply(src, dst *models.Account, amount decimal.Decimal) ([]*models.Account, error) {
	if (r.RequiresDestination || r.CreditDestination) && dst == nil {
		return nil, ErrMissingDestination
	}
	if r.CreditDestination && dst != nil && dst.ID == src.ID {
		return nil, ErrSameAccount
	}
	if r.DebitSource && !src.Covers(amount) {
		return nil, fmt.Errorf("%w: account %s", ErrInsufficientBalance, src.AccountNumber)
	}
	if r.CreditSource && !src.Holds(amount) {
		return nil, fmt.Errorf("%w: account %s", ErrBalanceLimit, src.AccountNumber)
	}
	if r.CreditDestination && !dst.Holds(amount) {
		return nil, fmt.Errorf("%w: account %s", ErrBalanceLimit, dst.AccountNumber)
	}

	var touched []*models.Account
	switch {
	case r.DebitSource:
		src.Debit(amount)
		touched = append(touched, src)
	case r.CreditSource:
		src.Credit(amount)
		touched = append(touched, src)
	}
	if r.CreditDestination {
		dst.Credit(amount)
		touched = append(touched, dst)
	}
	return touched, nil
}

// RecordsDestination reports whether the ledger entry keeps the destination account.
func (r Rule) RecordsDestination() bool { return r.CreditDestination }
