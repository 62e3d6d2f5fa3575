package googledrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/pkg/models"
)

// Service reads the Drive folder hierarchy.
// Implements hierarchy.Client and hierarchy.PageLister.
type Service struct {
	client   *drive.Service
	pageSize int
}

// NewGoogleDriveService creates a Drive service authenticated with raw
// service-account JSON, scoped read-only
func NewGoogleDriveService(ctx context.Context, serviceAccountJSON string, pageSize int) (*Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, []byte(serviceAccountJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}
	return NewService(ctx, pageSize, option.WithCredentials(creds))
}

// NewService creates a Drive service from explicit client options
func NewService(ctx context.Context, pageSize int, opts ...option.ClientOption) (*Service, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive client: %w", err)
	}
	if pageSize <= 0 {
		pageSize = hierarchy.DefaultPageSize
	}
	return &Service{client: driveService, pageSize: pageSize}, nil
}

// GetNode fetches one file or folder's metadata. Trashed items are reported
// as not found, matching the listing filter.
func (s *Service) GetNode(ctx context.Context, id string) (models.Node, error) {
	file, err := s.client.Files.Get(id).
		Fields(nodeFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return models.Node{}, classify(err, "get "+id)
	}
	if file.Trashed {
		return models.Node{}, fmt.Errorf("%w: %s is trashed", hierarchy.ErrNotFound, id)
	}
	return toNode(file), nil
}

// ListChildren lists every non-trashed child of a folder, following
// nextPageToken until the last page
func (s *Service) ListChildren(ctx context.Context, id string) ([]models.Node, error) {
	return hierarchy.Paginate(ctx, s, id, s.pageSize)
}

// ListPage lists one page of a folder's children
func (s *Service) ListPage(ctx context.Context, parentID string, pageSize int, pageToken string) ([]models.Node, string, error) {
	req := s.client.Files.List().
		Q(childrenQuery(parentID)).
		Fields(listFields).
		PageSize(int64(pageSize)).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)

	if pageToken != "" {
		req = req.PageToken(pageToken)
	}

	result, err := req.Do()
	if err != nil {
		return nil, "", classify(err, "list "+parentID)
	}

	items := make([]models.Node, 0, len(result.Files))
	for _, file := range result.Files {
		items = append(items, toNode(file))
	}
	return items, result.NextPageToken, nil
}

// childrenQuery builds the Drive search query for a folder's children
func childrenQuery(parentID string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(parentID)
	return fmt.Sprintf("'%s' in parents and trashed = false", escaped)
}

// classify maps Drive API errors onto the hierarchy error taxonomy
func classify(err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %w", hierarchy.ErrUnavailable, op, err)
	}

	switch {
	case apiErr.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %s: %s", hierarchy.ErrNotFound, op, apiErr.Message)
	case apiErr.Code == http.StatusTooManyRequests,
		apiErr.Code == http.StatusForbidden && isRateLimitReason(apiErr):
		return fmt.Errorf("%w: %s: %s", hierarchy.ErrRateLimited, op, apiErr.Message)
	default:
		return fmt.Errorf("%w: %s: google Drive API error (%d): %s",
			hierarchy.ErrUnavailable, op, apiErr.Code, apiErr.Message)
	}
}

func isRateLimitReason(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}
