// Package files holds persistence for file tree nodes.
package files

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// ListQuery selects one page of a user's nodes, newest first.
// An empty ParentID matches nodes under any parent.
type ListQuery struct {
	UserID   string
	ParentID string
	Offset   int
	Limit    int
}

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	// GetByID loads a node regardless of owner.
	GetByID(ctx context.Context, id string) (*models.File, error)
	// GetByIDForUser loads a node only if userID owns it.
	GetByIDForUser(ctx context.Context, id, userID string) (*models.File, error)
	List(ctx context.Context, q ListQuery) ([]*models.File, error)
	// SetPublic updates the flag in one step and returns the stored record.
	SetPublic(ctx context.Context, id, userID string, isPublic bool) (*models.File, error)
	Count(ctx context.Context) (int64, error)
}
