package resources

import (
	"context"
	"fmt"
	"time"

	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/internal/traversal"
	"learning-resources-backend/pkg/models"
)

// Limits bound every traversal the service starts
type Limits struct {
	MaxDepth int
	MaxNodes int
	Timeout  time.Duration
}

// Service assembles the resource views for the configured root folder
type Service struct {
	engine Traverser
	rootID string
	limits Limits
}

// NewService creates a resources service rooted at rootID
func NewService(engine Traverser, rootID string, limits Limits) *Service {
	return &Service{
		engine: engine,
		rootID: rootID,
		limits: limits,
	}
}

// Tree walks the whole hierarchy below the root folder
func (s *Service) Tree(ctx context.Context) (*traversal.Result, error) {
	return s.walk(ctx, traversal.FullTree)
}

// AllFiles lists every file below the root folder in depth-first order
func (s *Service) AllFiles(ctx context.Context) (*traversal.Result, error) {
	return s.walk(ctx, traversal.FlattenLeaves)
}

// Subfolder returns a folder's name and immediate children
func (s *Service) Subfolder(ctx context.Context, folderID string) (models.Node, []models.Node, error) {
	if err := hierarchy.ValidateID(folderID); err != nil {
		return models.Node{}, nil, fmt.Errorf("%w: %v", ErrInvalidFolderID, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.engine.ResolveFolder(ctx, folderID)
}

func (s *Service) walk(ctx context.Context, mode traversal.Mode) (*traversal.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.engine.Walk(ctx, s.rootID, traversal.Options{
		Mode:     mode,
		MaxDepth: s.limits.MaxDepth,
		MaxNodes: s.limits.MaxNodes,
	})
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.limits.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.limits.Timeout)
}

// FilterByKind keeps the items of the given kind, in order. It backs the
// optional ?kind= filter clients use to show only folders.
func FilterByKind(items []models.Node, kind models.Kind) []models.Node {
	filtered := make([]models.Node, 0, len(items))
	for _, item := range items {
		if item.Kind == kind {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
