package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a transaction could not be serialized
	// against a concurrent one after all retries.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrOutOfRange is returned when a money value does not fit its column.
	ErrOutOfRange = errors.New("value out of range")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

type Customers interface {
	Create(ctx context.Context, c models.Customer) (models.Customer, error)
	GetByID(ctx context.Context, id int64) (models.Customer, error)
	GetByUserID(ctx context.Context, userID int64) (models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// Accounts reads made through a transaction-bound Accounts lock the
// returned rows until the transaction ends.
type Accounts interface {
	Create(ctx context.Context, a models.Account) (models.Account, error)
	GetByNumber(ctx context.Context, number string) (models.Account, error)
	GetByID(ctx context.Context, id int64) (models.Account, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Account, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	DeleteByCustomer(ctx context.Context, customerID int64) (int64, error)
}

// Transactions is the ledger. Entries are never updated or deleted.
type Transactions interface {
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	GetByID(ctx context.Context, id int64) (models.Transaction, error)
	List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)
	CountByCustomer(ctx context.Context, customerID int64) (int64, error)
}

type Lookups interface {
	TransactionTypes(ctx context.Context) ([]models.TransactionType, error)
	AccountTypes(ctx context.Context) ([]models.AccountType, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

type Repositories struct {
	Users        Users
	Customers    Customers
	Accounts     Accounts
	Transactions Transactions
	Lookups      Lookups
	AuditLogs    AuditLogs
}

// Store hands out repositories, either bound to the connection pool or to
// a single atomic transaction.
type Store interface {
	Repos() Repositories
	// WithTx runs fn inside one transaction. fn may be invoked more than once
	// when the backend retries a serialization failure, so it must not keep
	// side effects outside the repositories it is given.
	WithTx(ctx context.Context, fn func(Repositories) error) error
}
