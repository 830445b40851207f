package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

const titleConstraint = "credentials_user_id_title_key"

// PostgresRepository implements credential storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query := `
		INSERT INTO credentials (title, url, username, password, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.Title, c.URL, c.Username, c.Password, c.UserID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, titleConstraint) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM credentials WHERE user_id = $1 AND title = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Credential, error) {
	query := `
		SELECT id, title, url, username, password, user_id, created_at, updated_at
		FROM credentials WHERE id = $1
	`
	var c models.Credential
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Title, &c.URL, &c.Username, &c.Password, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

// FindAllByUser returns the user's credentials ordered by id; never nil.
func (r *PostgresRepository) FindAllByUser(ctx context.Context, userID int64) ([]*models.Credential, error) {
	query := `
		SELECT id, title, url, username, password, user_id, created_at, updated_at
		FROM credentials WHERE user_id = $1 ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Credential, 0)
	for rows.Next() {
		var c models.Credential
		if err := rows.Scan(&c.ID, &c.Title, &c.URL, &c.Username, &c.Password, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, id)
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

func (r *PostgresRepository) DeleteAllByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
