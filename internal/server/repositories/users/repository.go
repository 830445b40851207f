// Package users persists DrivenPass accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills ID and timestamps. A duplicate email
	// yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
