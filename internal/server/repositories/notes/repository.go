// Package notes persists secure notes.
package notes

import (
	"context"

	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Note) (*models.Note, error)
	TitleExists(ctx context.Context, userID int64, title string) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Note, error)
	FindAllByUser(ctx context.Context, userID int64) ([]*models.Note, error)
	Delete(ctx context.Context, id int64) error
	DeleteAllByUser(ctx context.Context, userID int64) error
}
