package postgres

import (
	"context"

	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
	"github.com/shopspring/decimal"
)

type accountsRepo struct {
	q    DBTX
	lock bool
}

const accountCols = `id, account_number, balance::text, customer_id, account_type_id, created_at`

func (r *accountsRepo) forUpdate() string {
	if r.lock {
		return " FOR UPDATE"
	}
	return ""
}

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var (
		a   models.Account
		bal string
	)
	if err := row.Scan(&a.ID, &a.AccountNumber, &bal, &a.CustomerID, &a.AccountTypeID, &a.CreatedAt); err != nil {
		return models.Account{}, mapErr(err)
	}
	d, err := decimal.NewFromString(bal)
	if err != nil {
		return models.Account{}, err
	}
	a.Balance = d
	return a, nil
}

func (r *accountsRepo) Create(ctx context.Context, a models.Account) (models.Account, error) {
	row := r.q.QueryRow(ctx,
		`INSERT INTO accounts(account_number, balance, customer_id, account_type_id)
		 VALUES($1, $2::numeric, $3, $4)
		 RETURNING `+accountCols,
		a.AccountNumber, a.Balance.String(), a.CustomerID, a.AccountTypeID,
	)
	return scanAccount(row)
}

func (r *accountsRepo) GetByNumber(ctx context.Context, number string) (models.Account, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+accountCols+`
		   FROM accounts
		  WHERE account_number=$1`+r.forUpdate(),
		number,
	)
	return scanAccount(row)
}

func (r *accountsRepo) GetByID(ctx context.Context, id int64) (models.Account, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+accountCols+`
		   FROM accounts
		  WHERE id=$1`+r.forUpdate(),
		id,
	)
	return scanAccount(row)
}

func (r *accountsRepo) ListByCustomer(ctx context.Context, customerID int64) ([]models.Account, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+accountCols+`
		   FROM accounts
		  WHERE customer_id=$1
		  ORDER BY id`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE accounts SET balance=$2::numeric WHERE id=$1`,
		id, balance.String(),
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) DeleteByCustomer(ctx context.Context, customerID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE customer_id=$1`, customerID)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}
