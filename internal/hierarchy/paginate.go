package hierarchy

import (
	"context"
	"fmt"
	"iter"

	"learning-resources-backend/pkg/models"
)

// DefaultPageSize is a reasonable page size for provider list requests
const DefaultPageSize = 100

// Pages lazily walks the pages of parentID's children. Iteration stops
// after the first error.
func Pages(ctx context.Context, lister PageLister, parentID string, pageSize int) iter.Seq2[[]models.Node, error] {
	return func(yield func([]models.Node, error) bool) {
		seenTokens := make(map[string]struct{})
		var pageToken string

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			items, nextToken, err := lister.ListPage(ctx, parentID, pageSize, pageToken)
			if err != nil {
				yield(nil, err)
				return
			}

			if !yield(items, nil) {
				return
			}

			if nextToken == "" {
				return
			}

			// A provider handing back a token it already gave us would
			// otherwise loop forever
			if _, ok := seenTokens[nextToken]; ok {
				yield(nil, fmt.Errorf("%w: page token repeated while listing %s", ErrUnavailable, parentID))
				return
			}
			seenTokens[nextToken] = struct{}{}
			pageToken = nextToken
		}
	}
}

// Paginate collects every page of parentID's children in provider order.
// Entries repeated across pages are kept once, at their first position.
func Paginate(ctx context.Context, lister PageLister, parentID string, pageSize int) ([]models.Node, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var allItems []models.Node
	seen := make(map[string]struct{})

	for items, err := range Pages(ctx, lister, parentID, pageSize) {
		if err != nil {
			return nil, fmt.Errorf("failed to list children of %s: %w", parentID, err)
		}
		for _, item := range items {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			allItems = append(allItems, item)
		}
	}

	if allItems == nil {
		allItems = []models.Node{}
	}
	return allItems, nil
}
