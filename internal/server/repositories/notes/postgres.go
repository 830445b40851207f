package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

const titleConstraint = "notes_user_id_title_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	query := `
		INSERT INTO notes (title, text, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, n.Title, n.Text, n.UserID).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, titleConstraint) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM notes WHERE user_id = $1 AND title = $2)`, userID, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	query := `SELECT id, title, text, user_id, created_at, updated_at FROM notes WHERE id = $1`

	var n models.Note
	err := r.db.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.Title, &n.Text, &n.UserID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &n, nil
}

func (r *PostgresRepository) FindAllByUser(ctx context.Context, userID int64) ([]*models.Note, error) {
	query := `SELECT id, title, text, user_id, created_at, updated_at FROM notes WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Text, &n.UserID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &n)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
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
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
