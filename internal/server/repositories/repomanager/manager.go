// Package repomanager constructs the per-entity repositories over a shared
// database handle and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"expensio/internal/dbx"
	"expensio/internal/server/repositories/categories"
	"expensio/internal/server/repositories/expenses"
	"expensio/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to the given handle, which
// may be a *sql.DB or a transaction from dbx.WithTx.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Expenses(db dbx.DBTX) expenses.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
