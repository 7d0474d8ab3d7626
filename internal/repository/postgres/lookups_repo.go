package postgres

import (
	"context"

	"github.com/baharkarakas/maverick-bank/internal/models"
)

type lookupsRepo struct{ q DBTX }

func (r *lookupsRepo) TransactionTypes(ctx context.Context) ([]models.TransactionType, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM transaction_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TransactionType{}
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, models.TransactionType{ID: models.Kind(id), Name: name})
	}
	return out, rows.Err()
}

func (r *lookupsRepo) AccountTypes(ctx context.Context) ([]models.AccountType, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM account_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AccountType{}
	for rows.Next() {
		var at models.AccountType
		if err := rows.Scan(&at.ID, &at.Name); err != nil {
			return nil, err
		}
		out = append(out, at)
	}
	return out, rows.Err()
}
