// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/quotecore/internal/dbx"
	"github.com/dmitrijs2005/quotecore/internal/server/migrations"
	"github.com/dmitrijs2005/quotecore/internal/server/repositories/deleted"
	"github.com/dmitrijs2005/quotecore/internal/server/repositories/quotes"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations over one shared connection pool.
type PostgresRepositoryManager struct {
	db *sql.DB
}

// NewPostgresRepositoryManager opens the pgx stdlib pool for the DSN. The
// caller runs migrations before serving.
func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresRepositoryManager{db: db}, nil
}

// Conn returns the underlying pool, used as the DBTX outside transactions
// and as the handle for dbx.WithTx.
func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

// Quotes returns a quotes.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Quotes(db dbx.DBTX) quotes.Repository {
	return quotes.NewPostgresRepository(db)
}

// Deleted returns a deleted.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Deleted(db dbx.DBTX) deleted.Repository {
	return deleted.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the pool.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}
