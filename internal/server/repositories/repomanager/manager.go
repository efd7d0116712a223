package repomanager

import (
	"context"
	"database/sql"

	"github.com/frankly034/userdir/internal/dbx"
	"github.com/frankly034/userdir/internal/server/repositories/credentials"
	"github.com/frankly034/userdir/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so callers can use
// the same constructors inside and outside transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}
