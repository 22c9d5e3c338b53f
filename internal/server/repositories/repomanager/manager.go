package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mealtrack/internal/dbx"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/dailylogs"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code path
// works on the pool and inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	DailyLogs(db dbx.DBTX) dailylogs.Repository
}
