package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

const titleConstraint = "cards_user_id_title_key"

const cardColumns = `id, title, number, owner, cvv, expiration, password, user_id, created_at, updated_at`

// PostgresRepository implements card storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Card) (*models.Card, error) {
	query := `
		INSERT INTO cards (title, number, owner, cvv, expiration, password, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.Title, c.Number, c.Owner, c.CVV, c.Expiration, c.Password, c.UserID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, titleConstraint) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) LinkType(ctx context.Context, cardID, typeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO card_card_types (card_id, card_type_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, cardID, typeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cards WHERE user_id = $1 AND title = $2)`, userID, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*models.Card, error) {
	var c models.Card
	err := s.Scan(&c.ID, &c.Title, &c.Number, &c.Owner, &c.CVV, &c.Expiration, &c.Password, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.CardTypes = make([]*models.CardType, 0)
	return &c, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Card, error) {
	c, err := scanCard(r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	types, err := r.typesByCard(ctx, `
		SELECT l.card_id, t.id, t.type, t.created_at, t.updated_at
		FROM card_card_types l JOIN card_types t ON t.id = l.card_type_id
		WHERE l.card_id = $1 ORDER BY t.id
	`, id)
	if err != nil {
		return nil, err
	}
	if ts, ok := types[c.ID]; ok {
		c.CardTypes = ts
	}
	return c, nil
}

// FindAllByUser returns the user's cards ordered by id; never nil.
func (r *PostgresRepository) FindAllByUser(ctx context.Context, userID int64) ([]*models.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select cards: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	types, err := r.typesByCard(ctx, `
		SELECT l.card_id, t.id, t.type, t.created_at, t.updated_at
		FROM card_card_types l
		JOIN card_types t ON t.id = l.card_type_id
		JOIN cards c ON c.id = l.card_id
		WHERE c.user_id = $1 ORDER BY l.card_id, t.id
	`, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range result {
		if ts, ok := types[c.ID]; ok {
			c.CardTypes = ts
		}
	}
	return result, nil
}

func (r *PostgresRepository) typesByCard(ctx context.Context, query string, arg any) (map[int64][]*models.CardType, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to select card types: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]*models.CardType)
	for rows.Next() {
		var cardID int64
		var t models.CardType
		if err := rows.Scan(&cardID, &t.ID, &t.Type, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result[cardID] = append(result[cardID], &t)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) DeleteLinks(ctx context.Context, cardID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM card_card_types WHERE card_id = $1`, cardID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
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

func (r *PostgresRepository) DeleteLinksByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM card_card_types WHERE card_id IN (SELECT id FROM cards WHERE user_id = $1)`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindAllTypes(ctx context.Context) ([]*models.CardType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, type, created_at, updated_at FROM card_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select card types: %w", err)
	}
	defer rows.Close()

	result := make([]*models.CardType, 0)
	for rows.Next() {
		var t models.CardType
		if err := rows.Scan(&t.ID, &t.Type, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) FindTypeByID(ctx context.Context, id int64) (*models.CardType, error) {
	var t models.CardType
	err := r.db.QueryRowContext(ctx, `SELECT id, type, created_at, updated_at FROM card_types WHERE id = $1`, id).
		Scan(&t.ID, &t.Type, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &t, nil
}
