package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/shopspring/decimal"
)

type transactionsRepo struct{ q DBTX }

const selectTransactions = `
SELECT t.id, t.source_account_id, t.destination_account_id, t.transaction_type_id,
       t.amount::text, t.customer_id, t.employee_id, t.transaction_date,
       sa.account_number, da.account_number, tt.name
  FROM transactions t
  JOIN transaction_types tt ON tt.id = t.transaction_type_id
  LEFT JOIN accounts sa ON sa.id = t.source_account_id
  LEFT JOIN accounts da ON da.id = t.destination_account_id`

func scanTransaction(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var (
		t      models.Transaction
		kind   int
		amount string
	)
	err := row.Scan(
		&t.ID, &t.SourceAccountID, &t.DestinationAccountID, &kind,
		&amount, &t.CustomerID, &t.EmployeeID, &t.TransactionDate,
		&t.SourceAccountNumber, &t.DestinationAccountNumber, &t.KindName,
	)
	if err != nil {
		return models.Transaction{}, mapErr(err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, err
	}
	t.Kind = models.Kind(kind)
	t.Amount = d
	return t, nil
}

// Create inserts a ledger entry and returns it with its assigned id.
// Display names are not resolved here; use GetByID for that.
func (r *transactionsRepo) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	const q = `
INSERT INTO transactions (
  source_account_id, destination_account_id, transaction_type_id,
  amount, customer_id, employee_id, transaction_date
) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
RETURNING id`
	err := r.q.QueryRow(ctx, q,
		t.SourceAccountID, t.DestinationAccountID, int(t.Kind),
		t.Amount.String(), t.CustomerID, t.EmployeeID, t.TransactionDate,
	).Scan(&t.ID)
	if err != nil {
		return models.Transaction{}, mapErr(err)
	}
	return t, nil
}

func (r *transactionsRepo) GetByID(ctx context.Context, id int64) (models.Transaction, error) {
	row := r.q.QueryRow(ctx, selectTransactions+`
 WHERE t.id=$1`, id)
	return scanTransaction(row)
}

func (r *transactionsRepo) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if f.CustomerID != nil {
		add("t.customer_id = ?", *f.CustomerID)
	}
	if f.Kind != nil {
		add("t.transaction_type_id = ?", int(*f.Kind))
	}
	if f.From != nil {
		add("t.transaction_date >= ?", *f.From)
	}
	if f.To != nil {
		add("t.transaction_date <= ?", *f.To)
	}

	q := selectTransactions
	if len(where) > 0 {
		q += "\n WHERE " + strings.Join(where, " AND ")
	}
	q += "\n ORDER BY t.transaction_date, t.id"

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountByCustomer counts ledger entries issued for the customer or touching
// one of the customer's accounts.
func (r *transactionsRepo) CountByCustomer(ctx context.Context, customerID int64) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT count(*)
		   FROM transactions t
		  WHERE t.customer_id = $1
		     OR t.source_account_id IN (SELECT id FROM accounts WHERE customer_id = $1)
		     OR t.destination_account_id IN (SELECT id FROM accounts WHERE customer_id = $1)`,
		customerID,
	).Scan(&n)
	return n, mapErr(err)
}
