package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/baharkarakas/maverick-bank/internal/api/validate"
	"github.com/baharkarakas/maverick-bank/internal/locks"
	"github.com/baharkarakas/maverick-bank/internal/logger"
	"github.com/baharkarakas/maverick-bank/internal/metrics"
	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
	"github.com/baharkarakas/maverick-bank/internal/worker"
	"github.com/google/uuid"
)

// TransactionProcessor validates a transaction request, applies the balance
// rule of its kind and commits the ledger entry together with the new
// balances. Requests touching the same account numbers are serialised
// in-process; the store transaction guards against everything else.
type TransactionProcessor struct {
	store repo.Store
	rules Rules
	locks locks.Keyed
	now   func() time.Time
	wp    *worker.Pool
	log   *slog.Logger
}

// ProcessorOption configures a TransactionProcessor.
type ProcessorOption func(*TransactionProcessor)

// WithRules replaces the default kind table.
func WithRules(r Rules) ProcessorOption { return func(p *TransactionProcessor) { p.rules = r } }

// WithClock sets the source of ledger timestamps.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *TransactionProcessor) { p.now = now }
}

// WithAuditPool moves audit writes off the request path. Without a pool they
// are written inline after commit.
func WithAuditPool(wp *worker.Pool) ProcessorOption {
	return func(p *TransactionProcessor) { p.wp = wp }
}

// WithLogger sets the base logger; request-scoped fields are added per call.
func WithLogger(l *slog.Logger) ProcessorOption { return func(p *TransactionProcessor) { p.log = l } }

func NewTransactionProcessor(store repo.Store, opts ...ProcessorOption) *TransactionProcessor {
	p := &TransactionProcessor{
		store: store,
		rules: DefaultRules(),
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *TransactionProcessor) Execute(ctx context.Context, req models.TransactionRequest) (models.TransactionResponse, error) {
	log := logger.FromContext(ctx, p.log).With("customer_id", req.CustomerID, "kind", int(req.TransactionTypeID))

	req.SourceAccountNumber = strings.TrimSpace(req.SourceAccountNumber)
	if err := invalid(validate.Merge(validate.Struct(req), validate.Money("amount", req.Amount))); err != nil {
		return models.TransactionResponse{}, p.fail(log, err)
	}
	dstNumber := req.Destination()

	log.Debug("transaction started")
	unlock := p.locks.Lock(req.SourceAccountNumber, dstNumber)
	defer unlock()

	var (
		committed models.Transaction
		rule      Rule
	)
	err := p.store.WithTx(ctx, func(r repo.Repositories) error {
		src, err := r.Accounts.GetByNumber(ctx, req.SourceAccountNumber)
		if err != nil {
			return accountErr(err, req.SourceAccountNumber)
		}
		var dst *models.Account
		if dstNumber != "" {
			a, err := r.Accounts.GetByNumber(ctx, dstNumber)
			if err != nil {
				return accountErr(err, dstNumber)
			}
			dst = &a
		}
		if rule, err = p.rules.Lookup(req.TransactionTypeID); err != nil {
			return err
		}
		if _, err := r.Customers.GetByID(ctx, req.CustomerID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("%w: %d", ErrCustomerNotFound, req.CustomerID)
			}
			return err
		}
		if src.CustomerID != req.CustomerID {
			return fmt.Errorf("%w: %s", ErrAccountNotOwned, src.AccountNumber)
		}

		touched, err := rule.Apply(&src, dst, req.Amount)
		if err != nil {
			return err
		}

		entry := models.Transaction{
			SourceAccountID: &src.ID,
			Kind:            rule.Kind,
			Amount:          req.Amount,
			CustomerID:      &req.CustomerID,
			EmployeeID:      req.EmployeeID,
			TransactionDate: p.now().UTC().Truncate(time.Microsecond),
		}
		if rule.RecordsDestination() {
			entry.DestinationAccountID = &dst.ID
		}
		created, err := r.Transactions.Create(ctx, entry)
		if err != nil {
			return err
		}
		for _, a := range touched {
			if err := r.Accounts.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
				return err
			}
			log.Debug("balance updated", "account", a.AccountNumber, "amount", req.Amount.String(), "balance", a.Balance.String())
		}
		committed, err = r.Transactions.GetByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return models.TransactionResponse{}, p.fail(log, storageErr(err))
	}

	metrics.TransactionsTotal.WithLabelValues(rule.Name).Inc()
	log.Info("transaction committed", "transaction_id", committed.ID, "amount", committed.Amount.String())
	p.audit(ctx, committed)
	return committed.Response(), nil
}

func accountErr(err error, number string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, number)
	}
	return err
}

func (p *TransactionProcessor) fail(log *slog.Logger, err error) error {
	metrics.TransactionsFailed.WithLabelValues(reason(err)).Inc()
	if clientErr(err) {
		log.Warn("transaction rejected", "err", err)
	} else {
		log.Error("transaction failed", "err", err)
	}
	return err
}

func (p *TransactionProcessor) audit(ctx context.Context, t models.Transaction) {
	correlation := logger.RequestID(ctx)
	if correlation == "" {
		correlation = uuid.NewString()
	}
	id := strconv.FormatInt(t.ID, 10)
	entry := models.AuditLog{
		EntityType: "transaction",
		EntityID:   &id,
		Action:     "committed",
		Details: map[string]any{
			"kind":        t.KindName,
			"amount":      t.Amount.String(),
			"customer_id": derefID(t.CustomerID),
			"request_id":  correlation,
		},
	}
	actx := context.WithoutCancel(ctx)
	write := func() {
		if err := p.store.Repos().AuditLogs.Create(actx, entry); err != nil {
			p.log.Error("audit write failed", "transaction_id", t.ID, "err", err)
		}
	}
	if p.wp == nil || !p.wp.Submit(write) {
		write()
	}
}

func derefID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
