package postgres

import (
	"context"

	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
)

type customersRepo struct{ q DBTX }

const customerCols = `id, user_id, full_name, email, phone_number, address, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.FullName, &c.Email, &c.PhoneNumber, &c.Address, &c.CreatedAt)
	return c, mapErr(err)
}

func (r *customersRepo) Create(ctx context.Context, c models.Customer) (models.Customer, error) {
	row := r.q.QueryRow(ctx,
		`INSERT INTO customers(user_id, full_name, email, phone_number, address)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING `+customerCols,
		c.UserID, c.FullName, c.Email, c.PhoneNumber, c.Address,
	)
	return scanCustomer(row)
}

func (r *customersRepo) GetByID(ctx context.Context, id int64) (models.Customer, error) {
	return scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE id=$1`, id))
}

func (r *customersRepo) GetByUserID(ctx context.Context, userID int64) (models.Customer, error) {
	return scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE user_id=$1`, userID))
}

func (r *customersRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
