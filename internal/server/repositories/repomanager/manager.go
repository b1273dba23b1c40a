package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/quotecore/internal/dbx"
	"github.com/dmitrijs2005/quotecore/internal/server/repositories/deleted"
	"github.com/dmitrijs2005/quotecore/internal/server/repositories/quotes"
)

// RepositoryManager vends repository implementations bound to a DBTX, so the
// same constructors serve both plain connections and transactions. Conn
// exposes the underlying pool for dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Quotes(db dbx.DBTX) quotes.Repository
	Deleted(db dbx.DBTX) deleted.Repository
}
