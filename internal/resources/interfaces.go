package resources

import (
	"context"

	"learning-resources-backend/internal/traversal"
	"learning-resources-backend/pkg/models"
)

// Traverser walks the remote hierarchy
type Traverser interface {
	Walk(ctx context.Context, rootID string, opts traversal.Options) (*traversal.Result, error)
	ResolveFolder(ctx context.Context, folderID string) (models.Node, []models.Node, error)
}
