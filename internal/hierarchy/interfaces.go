package hierarchy

import (
	"context"

	"learning-resources-backend/pkg/models"
)

// Client is the read-only view of a storage provider's hierarchy.
// Implementations report failures wrapped in ErrNotFound, ErrUnavailable
// or ErrRateLimited.
type Client interface {
	GetNode(ctx context.Context, id string) (models.Node, error)
	// ListChildren returns every child of id in provider order, exhausting
	// all pages before returning.
	ListChildren(ctx context.Context, id string) ([]models.Node, error)
}

// PageLister lists a single page of a folder's children. An empty next
// page token marks the last page.
type PageLister interface {
	ListPage(ctx context.Context, parentID string, pageSize int, pageToken string) ([]models.Node, string, error)
}
