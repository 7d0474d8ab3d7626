package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
)

const recentLimit = 3

// TransactionQueryService answers read-only questions over the ledger.
// Every call goes to the store.
type TransactionQueryService struct {
	r           repo.Transactions
	strictEmpty bool
}

type QueryOption func(*TransactionQueryService)

// WithStrictEmpty makes customer-scoped lists fail with ErrNoTransactionsFound
// instead of returning an empty slice.
func WithStrictEmpty(on bool) QueryOption {
	return func(s *TransactionQueryService) { s.strictEmpty = on }
}

func NewTransactionQueryService(r repo.Transactions, opts ...QueryOption) *TransactionQueryService {
	s := &TransactionQueryService{r: r}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *TransactionQueryService) ListAll(ctx context.Context) ([]models.Transaction, error) {
	return s.r.List(ctx, models.TransactionFilter{})
}

func (s *TransactionQueryService) GetByID(ctx context.Context, id int64) (models.Transaction, error) {
	t, err := s.r.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Transaction{}, fmt.Errorf("%w: %d", ErrTransactionNotFound, id)
	}
	return t, err
}

func (s *TransactionQueryService) ListByCustomer(ctx context.Context, customerID int64) ([]models.Transaction, error) {
	return s.list(ctx, models.TransactionFilter{CustomerID: &customerID})
}

// ListByCustomerFiltered applies the optional kind and inclusive date bounds conjunctively.
func (s *TransactionQueryService) ListByCustomerFiltered(ctx context.Context, customerID int64, kind *models.Kind, from, to *time.Time) ([]models.Transaction, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: fromDate is after toDate", ErrInvalidRequest)
	}
	return s.list(ctx, models.TransactionFilter{CustomerID: &customerID, Kind: kind, From: from, To: to})
}

// ListRecentByCustomer returns the newest entries first, at most three.
func (s *TransactionQueryService) ListRecentByCustomer(ctx context.Context, customerID int64) ([]models.Transaction, error) {
	out, err := s.list(ctx, models.TransactionFilter{CustomerID: &customerID})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		if c := b.TransactionDate.Compare(a.TransactionDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(out) > recentLimit {
		out = out[:recentLimit]
	}
	return out, nil
}

func (s *TransactionQueryService) list(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	out, err := s.r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		if s.strictEmpty {
			return nil, fmt.Errorf("%w: customer %d", ErrNoTransactionsFound, *f.CustomerID)
		}
		return []models.Transaction{}, nil
	}
	return out, nil
}
