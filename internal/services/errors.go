package services

import (
	"errors"
	"fmt"

	"github.com/baharkarakas/maverick-bank/internal/api/validate"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
)

var (
	ErrInvalidRequest          = errors.New("invalid request")
	ErrAccountNotFound         = errors.New("account not found")
	ErrAccountNotOwned         = errors.New("source account does not belong to customer")
	ErrUnknownTransactionType  = errors.New("unknown transaction type")
	ErrMissingDestination      = errors.New("destination account required")
	ErrSameAccount             = errors.New("source and destination must differ")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrNoTransactionsFound     = errors.New("no transactions found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrCustomerHasTransactions = errors.New("customer has transactions")
	ErrUsernameTaken           = errors.New("username already taken")
	ErrAccountNumberTaken      = errors.New("account number already taken")
	ErrAccountTypeNotFound     = errors.New("account type not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrConflict                = errors.New("concurrent update, retry")
)

// ErrBalanceLimit is a client error: the credit would overflow the account.
var ErrBalanceLimit = fmt.Errorf("%w: balance limit exceeded", ErrInvalidRequest)

// ValidationError carries per-field problems of a rejected request.
type ValidationError struct {
	Fields validate.Errs
}

func (e *ValidationError) Error() string { return "invalid request: " + e.Fields.Error() }

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

func invalid(err error) error {
	if err == nil {
		return nil
	}
	var fields validate.Errs
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}

// storageErr maps the store's conflict and range sentinels; everything else stays an internal error.
func storageErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repo.ErrOutOfRange):
		return fmt.Errorf("%w: %w", ErrBalanceLimit, err)
	}
	return err
}

// reason is the metrics label for a failed transaction.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrBalanceLimit):
		return "balance_limit"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, ErrAccountNotOwned):
		return "account_not_owned"
	case errors.Is(err, ErrUnknownTransactionType):
		return "unknown_type"
	case errors.Is(err, ErrMissingDestination):
		return "missing_destination"
	case errors.Is(err, ErrSameAccount):
		return "same_account"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrConflict):
		return "conflict"
	}
	return "internal"
}

// clientErr reports whether err is the caller's fault rather than the system's.
func clientErr(err error) bool {
	return reason(err) != "internal" && reason(err) != "conflict"
}
