package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/baharkarakas/maverick-bank/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// stepClock returns a clock that advances one minute per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Minute)
		return cur
	}
}

// seedCustomer creates a customer owning accounts with the given balances
// and returns the customer id.
func seedCustomer(t *testing.T, st *memory.Store, username string, balances map[string]string) int64 {
	t.Helper()
	ctx := context.Background()
	r := st.Repos()
	u, err := r.Users.Create(ctx, models.User{Username: username, PasswordHash: "x", Role: models.RoleCustomer})
	require.NoError(t, err)
	c, err := r.Customers.Create(ctx, models.Customer{UserID: u.ID, FullName: username, Email: username + "@example.com"})
	require.NoError(t, err)
	for number, bal := range balances {
		_, err := r.Accounts.Create(ctx, models.Account{AccountNumber: number, Balance: dec(bal), CustomerID: c.ID, AccountTypeID: 1})
		require.NoError(t, err)
	}
	return c.ID
}

func balance(t *testing.T, st *memory.Store, number string) decimal.Decimal {
	t.Helper()
	a, err := st.Repos().Accounts.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return a.Balance
}

func ledger(t *testing.T, st *memory.Store) []models.Transaction {
	t.Helper()
	out, err := st.Repos().Transactions.List(context.Background(), models.TransactionFilter{})
	require.NoError(t, err)
	return out
}
