package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

const emailConstraint = "users_email_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, name, password_hash)
         VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Name, user.PasswordHash).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err, emailConstraint) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users
		 WHERE email = $1
		 `
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Delete removes the account row. Owned vault rows must be gone already.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
