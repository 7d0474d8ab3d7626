// Package memory is an in-process implementation of repository.Store.
// A transaction works on a private copy of the whole state, which replaces
// the live state only when the transaction function returns nil.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
)

type state struct {
	seq          map[string]int64
	users        map[int64]models.User
	customers    map[int64]models.Customer
	accounts     map[int64]models.Account
	transactions []models.Transaction
	txTypes      []models.TransactionType
	accountTypes []models.AccountType
	audit        []models.AuditLog
}

func (s *state) clone() *state {
	return &state{
		seq:          maps.Clone(s.seq),
		users:        maps.Clone(s.users),
		customers:    maps.Clone(s.customers),
		accounts:     maps.Clone(s.accounts),
		transactions: slices.Clone(s.transactions),
		txTypes:      slices.Clone(s.txTypes),
		accountTypes: slices.Clone(s.accountTypes),
		audit:        slices.Clone(s.audit),
	}
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

type Store struct {
	mu sync.RWMutex
	st *state

	failMu sync.Mutex
	fail   map[string]error
}

// New returns a store seeded with the same lookup rows as the SQL migrations.
func New() *Store {
	return &Store{
		st: &state{
			seq:       map[string]int64{},
			users:     map[int64]models.User{},
			customers: map[int64]models.Customer{},
			accounts:  map[int64]models.Account{},
			txTypes: []models.TransactionType{
				{ID: models.KindWithdraw, Name: "Withdraw"},
				{ID: models.KindDeposit, Name: "Deposit"},
				{ID: models.KindTransfer, Name: "Transfer"},
				{ID: models.KindLoanRepayment, Name: "LoanRepayment"},
			},
			accountTypes: []models.AccountType{
				{ID: 1, Name: "Savings"},
				{ID: 2, Name: "Current"},
			},
		},
		fail: map[string]error{},
	}
}

// FailOn makes every later call of op (e.g. "accounts.UpdateBalance")
// return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.fail[op]
}

func (s *Store) Repos() repo.Repositories {
	return (&view{store: s, live: true}).repos()
}

func (s *Store) WithTx(ctx context.Context, fn func(repo.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	if err := fn((&view{store: s, st: snap}).repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = snap
	return nil
}

// AuditLogs returns a copy of the audit entries written so far.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.audit)
}

// view is the state a set of repositories operates on: the live state
// guarded by the store mutex, or a transaction snapshot owned by WithTx.
type view struct {
	store *Store
	live  bool
	st    *state
}

func (v *view) read(op string) (*state, func(), error) {
	if err := v.store.failure(op); err != nil {
		return nil, nil, err
	}
	if !v.live {
		return v.st, func() {}, nil
	}
	v.store.mu.RLock()
	return v.store.st, v.store.mu.RUnlock, nil
}

func (v *view) write(op string) (*state, func(), error) {
	if err := v.store.failure(op); err != nil {
		return nil, nil, err
	}
	if !v.live {
		return v.st, func() {}, nil
	}
	v.store.mu.Lock()
	return v.store.st, v.store.mu.Unlock, nil
}

func (v *view) repos() repo.Repositories {
	return repo.Repositories{
		Users:        &usersRepo{v},
		Customers:    &customersRepo{v},
		Accounts:     &accountsRepo{v},
		Transactions: &transactionsRepo{v},
		Lookups:      &lookupsRepo{v},
		AuditLogs:    &auditLogsRepo{v},
	}
}
