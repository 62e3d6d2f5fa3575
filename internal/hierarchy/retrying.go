package hierarchy

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"learning-resources-backend/internal/logging"
	"learning-resources-backend/internal/metrics"
	"learning-resources-backend/internal/retry"
	"learning-resources-backend/pkg/models"
)

// Retrying decorates a Client with bounded backoff on ErrRateLimited and
// records every provider call in metrics. When the client also lists page
// by page, each page is retried on its own so a throttle on a late page
// does not restart the listing.
type Retrying struct {
	client   Client
	config   retry.Config
	pageSize int
}

// NewRetrying wraps client with the given retry policy. pageSize is used
// when the client is a PageLister.
func NewRetrying(client Client, config retry.Config, pageSize int) *Retrying {
	return &Retrying{client: client, config: config, pageSize: pageSize}
}

func (r *Retrying) GetNode(ctx context.Context, id string) (models.Node, error) {
	return call(ctx, r.config, "get_node", id, func() (models.Node, error) {
		return r.client.GetNode(ctx, id)
	})
}

func (r *Retrying) ListChildren(ctx context.Context, id string) ([]models.Node, error) {
	if lister, ok := r.client.(PageLister); ok {
		return Paginate(ctx, retryingPages{lister: lister, config: r.config}, id, r.pageSize)
	}
	return call(ctx, r.config, "list_children", id, func() ([]models.Node, error) {
		return r.client.ListChildren(ctx, id)
	})
}

type page struct {
	items []models.Node
	next  string
}

// retryingPages retries a single ListPage request
type retryingPages struct {
	lister PageLister
	config retry.Config
}

func (p retryingPages) ListPage(ctx context.Context, parentID string, pageSize int, pageToken string) ([]models.Node, string, error) {
	result, err := call(ctx, p.config, "list_page", parentID, func() (page, error) {
		items, next, err := p.lister.ListPage(ctx, parentID, pageSize, pageToken)
		return page{items: items, next: next}, err
	})
	return result.items, result.next, err
}

func call[T any](ctx context.Context, cfg retry.Config, operation, id string, fn func() (T, error)) (T, error) {
	onRetry := func(attempt int, wait time.Duration, err error) {
		metrics.RecordProviderRetry(operation)
		logging.WithContext(ctx).Info("provider backpressure, retrying",
			zap.String("operation", operation),
			zap.String("node_id", id),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	return retry.DoWithResult(ctx, cfg, isRateLimited, onRetry, func() (T, error) {
		result, err := fn()
		metrics.RecordProviderCall(operation, ErrorKind(err))
		return result, err
	})
}

func isRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
