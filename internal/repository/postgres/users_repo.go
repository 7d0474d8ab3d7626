package postgres

import (
	"context"

	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
)

type usersRepo struct{ q DBTX }

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	err := r.q.QueryRow(ctx,
		`INSERT INTO users(username, password_hash, role) VALUES($1,$2,$3)
		 RETURNING id, created_at`,
		u.Username, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.q.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := r.q.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username=$1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
