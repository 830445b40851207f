// Package cards persists payment cards, the card type reference table and
// the links between them.
package cards

import (
	"context"

	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

type Repository interface {
	// Create inserts the card row only; link types with LinkType.
	Create(ctx context.Context, c *models.Card) (*models.Card, error)
	LinkType(ctx context.Context, cardID, typeID int64) error
	TitleExists(ctx context.Context, userID int64, title string) (bool, error)
	// FindByID and FindAllByUser fill CardTypes.
	FindByID(ctx context.Context, id int64) (*models.Card, error)
	FindAllByUser(ctx context.Context, userID int64) ([]*models.Card, error)
	DeleteLinks(ctx context.Context, cardID int64) error
	Delete(ctx context.Context, id int64) error
	DeleteLinksByUser(ctx context.Context, userID int64) error
	DeleteAllByUser(ctx context.Context, userID int64) error

	FindAllTypes(ctx context.Context) ([]*models.CardType, error)
	FindTypeByID(ctx context.Context, id int64) (*models.CardType, error)
}
