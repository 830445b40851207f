package rest

import (
	"context"

	"github.com/dmitrijs2005/drivenpass/internal/server/auth"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

// UserService is what the account endpoints and the auth guard need.
type UserService interface {
	Register(ctx context.Context, email, name, password string) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
	Erase(ctx context.Context, id *auth.Identity, password string) error
}

type CredentialService interface {
	Create(ctx context.Context, in models.CredentialInput, ownerID int64) (*models.Credential, error)
	FindAll(ctx context.Context, ownerID int64) ([]*models.Credential, error)
	FindOne(ctx context.Context, id, ownerID int64) (*models.Credential, error)
	Remove(ctx context.Context, id, ownerID int64) error
}

type CardService interface {
	Create(ctx context.Context, in models.CardInput, ownerID int64) (*models.Card, error)
	FindAll(ctx context.Context, ownerID int64) ([]*models.Card, error)
	FindOne(ctx context.Context, id, ownerID int64) (*models.Card, error)
	Remove(ctx context.Context, id, ownerID int64) error
	FindAllCardTypes(ctx context.Context) ([]*models.CardType, error)
}

type NoteService interface {
	Create(ctx context.Context, in models.NoteInput, ownerID int64) (*models.Note, error)
	FindAll(ctx context.Context, ownerID int64) ([]*models.Note, error)
	FindOne(ctx context.Context, id, ownerID int64) (*models.Note, error)
	Remove(ctx context.Context, id, ownerID int64) error
}

// ExportService seals the caller's vault into object storage.
type ExportService interface {
	Export(ctx context.Context, id *auth.Identity, password string) (*models.ExportLink, error)
}

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}
