package onedrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/pkg/models"
)

const itemSelect = "id,name,file,folder,deleted"

// Service reads a OneDrive / SharePoint drive through Microsoft Graph.
// Implements hierarchy.Client and hierarchy.PageLister.
type Service struct {
	httpClient *http.Client
	baseURL    string
	driveID    string
	pageSize   int
}

// Credentials are the app-only Graph credentials for one drive
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	DriveID      string
}

// NewOneDriveService creates a Graph service authenticated with the client
// credentials flow
func NewOneDriveService(ctx context.Context, creds Credentials, pageSize int) *Service {
	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(creds.TenantID)),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}
	httpClient := config.Client(ctx)
	httpClient.Timeout = 30 * time.Second
	return NewService(httpClient, "https://graph.microsoft.com/v1.0", creds.DriveID, pageSize)
}

// NewService creates a Graph service over an already authorized client
func NewService(httpClient *http.Client, baseURL, driveID string, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = hierarchy.DefaultPageSize
	}
	return &Service{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		driveID:    driveID,
		pageSize:   pageSize,
	}
}

// GetNode fetches one drive item's metadata
func (s *Service) GetNode(ctx context.Context, id string) (models.Node, error) {
	params := url.Values{}
	params.Set("$select", itemSelect)
	apiURL := fmt.Sprintf("%s?%s", s.itemURL(id), params.Encode())

	var item DriveItem
	if err := s.get(ctx, apiURL, &item); err != nil {
		return models.Node{}, fmt.Errorf("get %s: %w", id, err)
	}
	if item.Deleted != nil {
		return models.Node{}, fmt.Errorf("%w: %s is deleted", hierarchy.ErrNotFound, id)
	}
	return toNode(item), nil
}

// ListChildren lists every child of a folder, following @odata.nextLink
func (s *Service) ListChildren(ctx context.Context, id string) ([]models.Node, error) {
	return hierarchy.Paginate(ctx, s, id, s.pageSize)
}

// ListPage lists one page of a folder's children. The page token is the
// nextLink URL Graph returned for the previous page.
func (s *Service) ListPage(ctx context.Context, parentID string, pageSize int, pageToken string) ([]models.Node, string, error) {
	apiURL := pageToken
	if apiURL == "" {
		params := url.Values{}
		params.Set("$select", itemSelect)
		if pageSize > 0 {
			params.Set("$top", fmt.Sprintf("%d", pageSize))
		}
		apiURL = fmt.Sprintf("%s/children?%s", s.itemURL(parentID), params.Encode())
	} else if !strings.HasPrefix(apiURL, s.baseURL) {
		return nil, "", fmt.Errorf("%w: unexpected next link host for %s", hierarchy.ErrUnavailable, parentID)
	}

	var page APIResponse
	if err := s.get(ctx, apiURL, &page); err != nil {
		return nil, "", fmt.Errorf("list %s: %w", parentID, err)
	}

	items := make([]models.Node, 0, len(page.Value))
	for _, driveItem := range page.Value {
		if driveItem.Deleted != nil {
			continue
		}
		items = append(items, toNode(driveItem))
	}
	return items, page.NextLink, nil
}

func (s *Service) itemURL(id string) string {
	return fmt.Sprintf("%s/drives/%s/items/%s", s.baseURL, url.PathEscape(s.driveID), url.PathEscape(id))
}

// get performs an authorized GET and decodes the JSON body into out
func (s *Service) get(ctx context.Context, apiURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: failed to execute request: %w", hierarchy.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.handleAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", hierarchy.ErrUnavailable, err)
	}
	return nil
}

// handleAPIError maps Graph API error responses onto the hierarchy taxonomy
func (s *Service) handleAPIError(resp *http.Response) error {
	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = hierarchy.ErrNotFound
	case http.StatusTooManyRequests:
		sentinel = hierarchy.ErrRateLimited
	case http.StatusServiceUnavailable:
		// Graph signals throttling with 503 + Retry-After as well
		if resp.Header.Get("Retry-After") != "" {
			sentinel = hierarchy.ErrRateLimited
		} else {
			sentinel = hierarchy.ErrUnavailable
		}
	default:
		sentinel = hierarchy.ErrUnavailable
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("%w: OneDrive API request failed with status %d", sentinel, resp.StatusCode)
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Code == "" {
		return fmt.Errorf("%w: OneDrive API error (status %d): %s", sentinel, resp.StatusCode, string(body))
	}
	return fmt.Errorf("%w: OneDrive API error (%d): %s - %s",
		sentinel, resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
}

// toNode converts a DriveItem. Folders report the Drive folder mime type so
// clients can treat both providers alike.
func toNode(item DriveItem) models.Node {
	node := models.Node{ID: item.ID, Name: item.Name}
	switch {
	case item.Folder != nil:
		node.Kind = models.KindFolder
		node.MimeType = models.FolderMimeType
	case item.File != nil:
		node.MimeType = item.File.MimeType
	default:
		node.MimeType = "application/octet-stream"
	}
	return node
}
