// Package repomanager hands out repositories bound to a DB handle or a
// transaction and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/starterkit/internal/dbx"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/users"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/verificationtokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	VerificationTokens(db dbx.DBTX) verificationtokens.Repository
}
