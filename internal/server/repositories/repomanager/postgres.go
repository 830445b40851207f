// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/server/migrations"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/cards"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/notes"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Credentials returns a credentials.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

// Cards returns a cards.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Cards(db dbx.DBTX) cards.Repository {
	return cards.NewPostgresRepository(db)
}

// Notes returns a notes.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection. The card type seed is part of
// the migration set.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
