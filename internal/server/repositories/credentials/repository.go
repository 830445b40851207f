// Package credentials persists website logins. The password column holds
// ciphertext produced by the service layer.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

type Repository interface {
	// Create inserts c; a title already used by the owner yields
	// common.ErrorConflict.
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	TitleExists(ctx context.Context, userID int64, title string) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Credential, error)
	FindAllByUser(ctx context.Context, userID int64) ([]*models.Credential, error)
	Delete(ctx context.Context, id int64) error
	DeleteAllByUser(ctx context.Context, userID int64) error
}
