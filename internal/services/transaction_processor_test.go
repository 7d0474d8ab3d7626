package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baharkarakas/maverick-bank/internal/logger"
	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
	"github.com/baharkarakas/maverick-bank/internal/repository/memory"
	"github.com/baharkarakas/maverick-bank/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newProcessor(t *testing.T, opts ...ProcessorOption) (*TransactionProcessor, *memory.Store, int64) {
	t.Helper()
	st := memory.New()
	cid := seedCustomer(t, st, "alice", map[string]string{"ACC001": "1000", "ACC002": "500"})
	opts = append([]ProcessorOption{WithLogger(quiet), WithClock(stepClock(t0))}, opts...)
	return NewTransactionProcessor(st, opts...), st, cid
}

func request(kind models.Kind, src string, dst *string, amount string, cid int64) models.TransactionRequest {
	return models.TransactionRequest{
		TransactionTypeID:        kind,
		SourceAccountNumber:      src,
		DestinationAccountNumber: dst,
		Amount:                   dec(amount),
		CustomerID:               cid,
	}
}

func TestExecute_Deposit(t *testing.T) {
	p, st, cid := newProcessor(t)

	res, err := p.Execute(context.Background(), request(models.KindDeposit, "ACC001", nil, "500", cid))
	require.NoError(t, err)

	assert.True(t, dec("1500").Equal(balance(t, st, "ACC001")))
	rows := ledger(t, st)
	require.Len(t, rows, 1)
	assert.Equal(t, models.KindDeposit, rows[0].Kind)
	assert.Nil(t, rows[0].DestinationAccountID)
	assert.True(t, dec("500").Equal(rows[0].Amount))

	assert.Equal(t, rows[0].ID, res.TransactionID)
	assert.Equal(t, "Deposit", res.TransactionType)
	require.NotNil(t, res.SourceAccountNumber)
	assert.Equal(t, "ACC001", *res.SourceAccountNumber)
	assert.Nil(t, res.DestinationAccountNumber)
	assert.Equal(t, t0.Add(time.Minute), res.TransactionDate)
}

func TestExecute_WithdrawInsufficientBalance(t *testing.T) {
	p, st, cid := newProcessor(t)

	_, err := p.Execute(context.Background(), request(models.KindWithdraw, "ACC001", nil, "1200", cid))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.True(t, dec("1000").Equal(balance(t, st, "ACC001")))
	assert.Empty(t, ledger(t, st))
}

func TestExecute_CreditBeyondBalanceLimit(t *testing.T) {
	p, st, cid := newProcessor(t)

	_, err := p.Execute(context.Background(), request(models.KindDeposit, "ACC001", nil, "100000000000000000000", cid))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Fields[0].Field)

	_, err = p.Execute(context.Background(), request(models.KindDeposit, "ACC001", nil, models.MaxMoney.String(), cid))
	assert.ErrorIs(t, err, ErrBalanceLimit)

	assert.True(t, dec("1000").Equal(balance(t, st, "ACC001")))
	assert.Empty(t, ledger(t, st))
}

func TestExecute_StorageOverflowIsClientError(t *testing.T) {
	p, st, cid := newProcessor(t)
	st.FailOn("accounts.UpdateBalance", repo.ErrOutOfRange)

	_, err := p.Execute(context.Background(), request(models.KindDeposit, "ACC001", nil, "10", cid))
	assert.ErrorIs(t, err, ErrBalanceLimit)
	assert.True(t, clientErr(err))
	assert.Empty(t, ledger(t, st))
}

func TestExecute_Transfer(t *testing.T) {
	p, st, cid := newProcessor(t)

	res, err := p.Execute(context.Background(), request(models.KindTransfer, "ACC001", ptr("ACC002"), "300", cid))
	require.NoError(t, err)

	assert.True(t, dec("700").Equal(balance(t, st, "ACC001")))
	assert.True(t, dec("800").Equal(balance(t, st, "ACC002")))
	rows := ledger(t, st)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].SourceAccountID)
	assert.NotNil(t, rows[0].DestinationAccountID)
	require.NotNil(t, res.DestinationAccountNumber)
	assert.Equal(t, "ACC002", *res.DestinationAccountNumber)
	assert.Equal(t, "Transfer", res.TransactionType)
}

func TestExecute_TransferConservesTotal(t *testing.T) {
	for _, amount := range []string{"0.01", "1", "499.99", "1000"} {
		t.Run(amount, func(t *testing.T) {
			p, st, cid := newProcessor(t)
			before := balance(t, st, "ACC001").Add(balance(t, st, "ACC002"))

			_, err := p.Execute(context.Background(), request(models.KindTransfer, "ACC001", ptr("ACC002"), amount, cid))
			require.NoError(t, err)

			after := balance(t, st, "ACC001").Add(balance(t, st, "ACC002"))
			assert.True(t, before.Equal(after))
			assert.True(t, dec("1000").Sub(dec(amount)).Equal(balance(t, st, "ACC001")))
		})
	}
}

func TestExecute_LoanRepayment(t *testing.T) {
	p, st, cid := newProcessor(t)

	res, err := p.Execute(context.Background(), request(models.KindLoanRepayment, "ACC001", nil, "250.25", cid))
	require.NoError(t, err)
	assert.Equal(t, "LoanRepayment", res.TransactionType)
	assert.True(t, dec("749.75").Equal(balance(t, st, "ACC001")))
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     func(cid int64) models.TransactionRequest
		wantErr error
	}{
		{"unknown type", func(cid int64) models.TransactionRequest {
			return request(99, "ACC001", nil, "10", cid)
		}, ErrUnknownTransactionType},
		{"unknown source", func(cid int64) models.TransactionRequest {
			return request(models.KindWithdraw, "NOPE", nil, "10", cid)
		}, ErrAccountNotFound},
		{"unknown destination", func(cid int64) models.TransactionRequest {
			return request(models.KindTransfer, "ACC001", ptr("NOPE"), "10", cid)
		}, ErrAccountNotFound},
		{"missing destination", func(cid int64) models.TransactionRequest {
			return request(models.KindTransfer, "ACC001", nil, "10", cid)
		}, ErrMissingDestination},
		{"blank destination", func(cid int64) models.TransactionRequest {
			return request(models.KindTransfer, "ACC001", ptr("  "), "10", cid)
		}, ErrMissingDestination},
		{"same account", func(cid int64) models.TransactionRequest {
			return request(models.KindTransfer, "ACC001", ptr("ACC001"), "10", cid)
		}, ErrSameAccount},
		{"unknown customer", func(cid int64) models.TransactionRequest {
			return request(models.KindDeposit, "ACC001", nil, "10", cid+100)
		}, ErrCustomerNotFound},
		{"zero amount", func(cid int64) models.TransactionRequest {
			return request(models.KindDeposit, "ACC001", nil, "0", cid)
		}, ErrInvalidRequest},
		{"negative amount", func(cid int64) models.TransactionRequest {
			return request(models.KindDeposit, "ACC001", nil, "-5", cid)
		}, ErrInvalidRequest},
		{"sub-cent amount", func(cid int64) models.TransactionRequest {
			return request(models.KindDeposit, "ACC001", nil, "1.005", cid)
		}, ErrInvalidRequest},
		{"missing type", func(cid int64) models.TransactionRequest {
			return request(0, "ACC001", nil, "10", cid)
		}, ErrInvalidRequest},
		{"missing source", func(cid int64) models.TransactionRequest {
			return request(models.KindDeposit, " ", nil, "10", cid)
		}, ErrInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, st, cid := newProcessor(t)

			_, err := p.Execute(context.Background(), tc.req(cid))
			assert.ErrorIs(t, err, tc.wantErr)

			assert.True(t, dec("1000").Equal(balance(t, st, "ACC001")))
			assert.True(t, dec("500").Equal(balance(t, st, "ACC002")))
			assert.Empty(t, ledger(t, st))
		})
	}
}

func TestExecute_ValidationErrorCarriesFields(t *testing.T) {
	p, _, cid := newProcessor(t)

	_, err := p.Execute(context.Background(), request(models.KindDeposit, "", nil, "0", cid))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Msg
	}
	assert.Equal(t, "required", fields["sourceAccountNumber"])
	assert.Equal(t, "must be > 0", fields["amount"])
}

func TestExecute_SourceMustBelongToCustomer(t *testing.T) {
	p, st, _ := newProcessor(t)
	bob := seedCustomer(t, st, "bob", map[string]string{"BOB001": "10"})

	_, err := p.Execute(context.Background(), request(models.KindWithdraw, "ACC001", nil, "10", bob))
	assert.ErrorIs(t, err, ErrAccountNotOwned)

	// crediting another customer's account is a normal transfer
	_, err = p.Execute(context.Background(), request(models.KindTransfer, "BOB001", ptr("ACC002"), "10", bob))
	require.NoError(t, err)
	assert.True(t, dec("510").Equal(balance(t, st, "ACC002")))
}

func TestExecute_RecordsActingEmployee(t *testing.T) {
	p, st, cid := newProcessor(t)
	req := request(models.KindDeposit, "ACC001", nil, "1", cid)
	req.EmployeeID = ptr(int64(42))

	_, err := p.Execute(context.Background(), req)
	require.NoError(t, err)
	rows := ledger(t, st)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].EmployeeID)
	assert.Equal(t, int64(42), *rows[0].EmployeeID)
	require.NotNil(t, rows[0].CustomerID)
	assert.Equal(t, cid, *rows[0].CustomerID)
}

func TestExecute_StorageFailureLeavesNoPartialState(t *testing.T) {
	for _, op := range []string{"transactions.Create", "accounts.UpdateBalance", "transactions.GetByID"} {
		t.Run(op, func(t *testing.T) {
			p, st, cid := newProcessor(t)
			boom := errors.New("disk gone")
			st.FailOn(op, boom)

			_, err := p.Execute(context.Background(), request(models.KindTransfer, "ACC001", ptr("ACC002"), "300", cid))
			assert.ErrorIs(t, err, boom)

			st.FailOn(op, nil)
			assert.True(t, dec("1000").Equal(balance(t, st, "ACC001")))
			assert.True(t, dec("500").Equal(balance(t, st, "ACC002")))
			assert.Empty(t, ledger(t, st))
		})
	}
}

func TestExecute_StoreConflictIsRetryable(t *testing.T) {
	p, st, cid := newProcessor(t)
	st.FailOn("accounts.GetByNumber", repo.ErrConflict)

	_, err := p.Execute(context.Background(), request(models.KindDeposit, "ACC001", nil, "1", cid))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestExecute_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	const n = 20
	p, st, cid := newProcessor(t)

	var (
		wg sync.WaitGroup
		ok atomic.Int64
	)
	// 20 x 100 against 1000: exactly 10 can succeed
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Execute(context.Background(), request(models.KindWithdraw, "ACC001", nil, "100", cid))
			if err == nil {
				ok.Add(1)
				return
			}
			assert.ErrorIs(t, err, ErrInsufficientBalance)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), ok.Load())
	assert.True(t, balance(t, st, "ACC001").IsZero())
	assert.Len(t, ledger(t, st), 10)
}

func TestExecute_ConcurrentOppositeTransfers(t *testing.T) {
	p, st, cid := newProcessor(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = p.Execute(context.Background(), request(models.KindTransfer, "ACC001", ptr("ACC002"), "7", cid))
		}()
		go func() {
			defer wg.Done()
			_, _ = p.Execute(context.Background(), request(models.KindTransfer, "ACC002", ptr("ACC001"), "3", cid))
		}()
	}
	wg.Wait()

	total := balance(t, st, "ACC001").Add(balance(t, st, "ACC002"))
	assert.True(t, dec("1500").Equal(total))
	assert.Len(t, ledger(t, st), 100)
}

func TestExecute_CustomRuleTable(t *testing.T) {
	const fee models.Kind = 5
	rules := DefaultRules()
	rules[fee] = Rule{Kind: fee, Name: "Fee", DebitSource: true}
	p, st, cid := newProcessor(t, WithRules(rules))

	_, err := p.Execute(context.Background(), request(fee, "ACC001", nil, "2.50", cid))
	require.NoError(t, err)
	assert.True(t, dec("997.50").Equal(balance(t, st, "ACC001")))
}

func TestExecute_WritesAuditAfterCommit(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		p, st, cid := newProcessor(t)
		ctx := logger.WithRequestID(context.Background(), "req-1")

		res, err := p.Execute(ctx, request(models.KindDeposit, "ACC001", nil, "5", cid))
		require.NoError(t, err)

		logs := st.AuditLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, "transaction", logs[0].EntityType)
		assert.Equal(t, "committed", logs[0].Action)
		require.NotNil(t, logs[0].EntityID)
		assert.Equal(t, "1", *logs[0].EntityID)
		assert.Equal(t, int64(1), res.TransactionID)
		assert.Equal(t, "req-1", logs[0].Details["request_id"])
		assert.Equal(t, "Deposit", logs[0].Details["kind"])
	})

	t.Run("worker pool", func(t *testing.T) {
		wp := worker.NewPool(2)
		p, st, cid := newProcessor(t, WithAuditPool(wp))

		for i := 0; i < 5; i++ {
			_, err := p.Execute(context.Background(), request(models.KindDeposit, "ACC001", nil, "1", cid))
			require.NoError(t, err)
		}
		_, err := p.Execute(context.Background(), request(models.KindWithdraw, "ACC001", nil, "5000", cid))
		require.Error(t, err)
		wp.Stop()

		logs := st.AuditLogs()
		assert.Len(t, logs, 5)
		for _, l := range logs {
			assert.NotEmpty(t, l.Details["request_id"])
		}
	})

	t.Run("audit failure does not undo commit", func(t *testing.T) {
		p, st, cid := newProcessor(t)
		st.FailOn("audit_logs.Create", errors.New("audit down"))

		_, err := p.Execute(context.Background(), request(models.KindDeposit, "ACC001", nil, "5", cid))
		require.NoError(t, err)
		assert.True(t, dec("1005").Equal(balance(t, st, "ACC001")))
		assert.Empty(t, st.AuditLogs())
	})
}
