package services

import (
	"context"
	"testing"
	"time"

	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/baharkarakas/maverick-bank/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedLedger commits five entries for alice, one minute apart starting at
// t0+1m, and one for bob.
func seedLedger(t *testing.T) (*memory.Store, int64, int64) {
	t.Helper()
	p, st, alice := newProcessor(t)
	bob := seedCustomer(t, st, "bob", map[string]string{"BOB001": "100"})
	ctx := context.Background()

	reqs := []models.TransactionRequest{
		request(models.KindDeposit, "ACC001", nil, "10", alice),
		request(models.KindWithdraw, "ACC001", nil, "20", alice),
		request(models.KindTransfer, "ACC001", ptr("ACC002"), "30", alice),
		request(models.KindDeposit, "ACC002", nil, "40", alice),
		request(models.KindLoanRepayment, "ACC002", nil, "50", alice),
		request(models.KindDeposit, "BOB001", nil, "60", bob),
	}
	for _, r := range reqs {
		_, err := p.Execute(ctx, r)
		require.NoError(t, err)
	}
	return st, alice, bob
}

func amounts(ts []models.Transaction) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Amount.String())
	}
	return out
}

func TestQuery_ListAllAndGetByID(t *testing.T) {
	st, _, _ := seedLedger(t)
	q := NewTransactionQueryService(st.Repos().Transactions)
	ctx := context.Background()

	all, err := q.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20", "30", "40", "50", "60"}, amounts(all))

	first, err := q.GetByID(ctx, all[2].ID)
	require.NoError(t, err)
	again, err := q.GetByID(ctx, all[2].ID)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, "Transfer", first.KindName)
	require.NotNil(t, first.DestinationAccountNumber)
	assert.Equal(t, "ACC002", *first.DestinationAccountNumber)

	_, err = q.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestQuery_ListByCustomer(t *testing.T) {
	st, alice, bob := seedLedger(t)
	q := NewTransactionQueryService(st.Repos().Transactions)
	ctx := context.Background()

	got, err := q.ListByCustomer(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20", "30", "40", "50"}, amounts(got))

	got, err = q.ListByCustomer(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"60"}, amounts(got))
}

func TestQuery_ListByCustomerFiltered(t *testing.T) {
	st, alice, _ := seedLedger(t)
	q := NewTransactionQueryService(st.Repos().Transactions)
	ctx := context.Background()
	at := func(m int) *time.Time { return ptr(t0.Add(time.Duration(m) * time.Minute)) }

	tests := []struct {
		name     string
		kind     *models.Kind
		from, to *time.Time
		want     []string
	}{
		{"no filter", nil, nil, nil, []string{"10", "20", "30", "40", "50"}},
		{"kind", ptr(models.KindDeposit), nil, nil, []string{"10", "40"}},
		{"from inclusive", nil, at(4), nil, []string{"40", "50"}},
		{"to inclusive", nil, nil, at(2), []string{"10", "20"}},
		{"range", nil, at(2), at(4), []string{"20", "30", "40"}},
		{"kind and range", ptr(models.KindDeposit), at(2), at(5), []string{"40"}},
		{"nothing matches", ptr(models.KindTransfer), at(4), nil, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := q.ListByCustomerFiltered(ctx, alice, tc.kind, tc.from, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.want, amounts(got))
		})
	}

	_, err := q.ListByCustomerFiltered(ctx, alice, nil, at(5), at(1))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestQuery_ListRecentByCustomer(t *testing.T) {
	st, alice, bob := seedLedger(t)
	q := NewTransactionQueryService(st.Repos().Transactions)
	ctx := context.Background()

	recent, err := q.ListRecentByCustomer(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"50", "40", "30"}, amounts(recent))
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].TransactionDate.After(recent[i-1].TransactionDate))
	}

	all, err := q.ListByCustomer(ctx, alice)
	require.NoError(t, err)
	for _, r := range recent {
		assert.Contains(t, all, r)
	}

	recent, err = q.ListRecentByCustomer(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestQuery_EmptyResults(t *testing.T) {
	st, _, _ := seedLedger(t)
	carol := seedCustomer(t, st, "carol", map[string]string{"CAR001": "0"})
	ctx := context.Background()

	t.Run("lenient", func(t *testing.T) {
		q := NewTransactionQueryService(st.Repos().Transactions)
		got, err := q.ListByCustomer(ctx, carol)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		got, err = q.ListRecentByCustomer(ctx, carol)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("strict", func(t *testing.T) {
		q := NewTransactionQueryService(st.Repos().Transactions, WithStrictEmpty(true))
		_, err := q.ListByCustomer(ctx, carol)
		assert.ErrorIs(t, err, ErrNoTransactionsFound)
		_, err = q.ListByCustomerFiltered(ctx, carol, ptr(models.KindDeposit), nil, nil)
		assert.ErrorIs(t, err, ErrNoTransactionsFound)
		_, err = q.ListRecentByCustomer(ctx, carol)
		assert.ErrorIs(t, err, ErrNoTransactionsFound)
	})
}
