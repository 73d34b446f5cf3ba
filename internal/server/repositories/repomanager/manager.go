// Package repomanager vends the metadata repositories for the configured
// backend (Postgres or MongoDB) and owns the underlying connection.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Files() files.Repository
	// Counts returns the number of users and files from one consistent read.
	Counts(ctx context.Context) (usersCount, filesCount int64, err error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
