package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/baharkarakas/maverick-bank/internal/api/validate"
	"github.com/baharkarakas/maverick-bank/internal/auth"
	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
	"github.com/shopspring/decimal"
)

// CustomerService owns the customer aggregate: its user, profile and accounts.
type CustomerService struct {
	store repo.Store
	log   *slog.Logger
}

func NewCustomerService(store repo.Store, log *slog.Logger) *CustomerService {
	if log == nil {
		log = slog.Default()
	}
	return &CustomerService{store: store, log: log}
}

// Register creates the user, the customer profile and a first account with a
// zero balance in one transaction.
func (s *CustomerService) Register(ctx context.Context, req models.RegisterCustomerRequest) (models.RegisterCustomerResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	req.Email = strings.TrimSpace(req.Email)
	if err := invalid(validate.Struct(req)); err != nil {
		return models.RegisterCustomerResult{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.RegisterCustomerResult{}, err
	}

	var out models.RegisterCustomerResult
	err = s.store.WithTx(ctx, func(r repo.Repositories) error {
		types, err := r.Lookups.AccountTypes(ctx)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(types, func(t models.AccountType) bool { return t.ID == req.AccountTypeID }) {
			return fmt.Errorf("%w: %d", ErrAccountTypeNotFound, req.AccountTypeID)
		}

		u, err := r.Users.Create(ctx, models.User{Username: req.Username, PasswordHash: hash, Role: models.RoleCustomer})
		if errors.Is(err, repo.ErrDuplicate) {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, req.Username)
		}
		if err != nil {
			return err
		}
		c, err := r.Customers.Create(ctx, models.Customer{
			UserID:      u.ID,
			FullName:    strings.TrimSpace(req.FullName),
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
		})
		if err != nil {
			return err
		}
		a, err := r.Accounts.Create(ctx, models.Account{
			AccountNumber: req.AccountNumber,
			Balance:       decimal.Zero,
			CustomerID:    c.ID,
			AccountTypeID: req.AccountTypeID,
		})
		if errors.Is(err, repo.ErrDuplicate) {
			return fmt.Errorf("%w: %s", ErrAccountNumberTaken, req.AccountNumber)
		}
		if err != nil {
			return err
		}
		out = models.RegisterCustomerResult{Customer: c, Account: a}
		return nil
	})
	if err != nil {
		return models.RegisterCustomerResult{}, storageErr(err)
	}
	s.log.Info("customer registered", "customer_id", out.Customer.ID, "account", out.Account.AccountNumber)
	return out, nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (models.Customer, error) {
	c, err := s.store.Repos().Customers.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Customer{}, fmt.Errorf("%w: %d", ErrCustomerNotFound, id)
	}
	return c, err
}

func (s *CustomerService) Accounts(ctx context.Context, id int64) ([]models.Account, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Repos().Accounts.ListByCustomer(ctx, id)
}

func (s *CustomerService) Account(ctx context.Context, number string) (models.Account, error) {
	a, err := s.store.Repos().Accounts.GetByNumber(ctx, strings.TrimSpace(number))
	if errors.Is(err, repo.ErrNotFound) {
		return models.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, number)
	}
	return a, err
}

// Delete removes the customer aggregate: accounts, then the profile, then the
// user. Customers with ledger history are kept because ledger entries are
// never deleted.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	var accounts int64
	err := s.store.WithTx(ctx, func(r repo.Repositories) error {
		c, err := r.Customers.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrCustomerNotFound, id)
		}
		if err != nil {
			return err
		}
		n, err := r.Transactions.CountByCustomer(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %d entries", ErrCustomerHasTransactions, n)
		}
		if accounts, err = r.Accounts.DeleteByCustomer(ctx, id); err != nil {
			return err
		}
		if err := r.Customers.Delete(ctx, id); err != nil {
			return err
		}
		return r.Users.Delete(ctx, c.UserID)
	})
	if err != nil {
		return storageErr(err)
	}
	s.log.Info("customer deleted", "customer_id", id, "accounts", accounts)
	return nil
}
