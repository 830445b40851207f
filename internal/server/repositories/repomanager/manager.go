package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/cards"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/notes"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or an open
// transaction, so services can choose per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Cards(db dbx.DBTX) cards.Repository
	Notes(db dbx.DBTX) notes.Repository
}
