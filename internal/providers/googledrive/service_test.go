package googledrive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/pkg/models"
)

// fakeDrive serves the subset of the Drive v3 files API the service uses
type fakeDrive struct {
	files    map[string]map[string]any
	pages    map[string][]map[string]any // "<parent>|<pageToken>" -> files
	next     map[string]string
	status   map[string]int
	queries  []string
	pageSize string
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	path := strings.TrimPrefix(r.URL.Path, "/")

	if path == "files" {
		q := r.URL.Query().Get("q")
		f.queries = append(f.queries, q)
		f.pageSize = r.URL.Query().Get("pageSize")
		parent := strings.SplitN(strings.TrimPrefix(q, "'"), "'", 2)[0]
		if code, ok := f.status[parent]; ok {
			writeError(w, code, "rateLimitExceeded")
			return
		}
		key := parent + "|" + r.URL.Query().Get("pageToken")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files":         f.pages[key],
			"nextPageToken": f.next[key],
		})
		return
	}

	id := strings.TrimPrefix(path, "files/")
	if code, ok := f.status[id]; ok {
		writeError(w, code, "backendError")
		return
	}
	file, ok := f.files[id]
	if !ok {
		writeError(w, http.StatusNotFound, "notFound")
		return
	}
	_ = json.NewEncoder(w).Encode(file)
}

func writeError(w http.ResponseWriter, code int, reason string) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": reason,
			"errors":  []map[string]any{{"reason": reason, "message": reason}},
		},
	})
}

func newTestService(t *testing.T, fake *fakeDrive) *Service {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	svc, err := NewService(context.Background(), 2,
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return svc
}

func TestGetNode(t *testing.T) {
	fake := &fakeDrive{files: map[string]map[string]any{
		"d1": {"id": "d1", "name": "Docs", "mimeType": models.FolderMimeType},
		"f1": {"id": "f1", "name": "Notes.pdf", "mimeType": "application/pdf"},
		"t1": {"id": "t1", "name": "Old", "mimeType": "text/plain", "trashed": true},
	}}
	svc := newTestService(t, fake)

	folder, err := svc.GetNode(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, models.Node{ID: "d1", Name: "Docs", Kind: models.KindFolder, MimeType: models.FolderMimeType}, folder)

	file, err := svc.GetNode(context.Background(), "f1")
	require.NoError(t, err)
	assert.False(t, file.IsFolder())

	_, err = svc.GetNode(context.Background(), "missing")
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)

	_, err = svc.GetNode(context.Background(), "t1")
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
}

func TestListChildren_FollowsPageTokens(t *testing.T) {
	fake := &fakeDrive{
		pages: map[string][]map[string]any{
			"d1|": {
				{"id": "f1", "name": "a", "mimeType": "text/plain"},
				{"id": "d2", "name": "Sub", "mimeType": models.FolderMimeType},
			},
			"d1|tok2": {
				{"id": "f2", "name": "b", "mimeType": "text/plain"},
			},
		},
		next: map[string]string{"d1|": "tok2"},
	}
	svc := newTestService(t, fake)

	items, err := svc.ListChildren(context.Background(), "d1")

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "f1", items[0].ID)
	assert.True(t, items[1].IsFolder())
	assert.Equal(t, "f2", items[2].ID)
	assert.Len(t, fake.queries, 2)
	assert.Equal(t, "'d1' in parents and trashed = false", fake.queries[0])
	assert.Equal(t, "2", fake.pageSize)
}

func TestErrorClassification(t *testing.T) {
	fake := &fakeDrive{status: map[string]int{
		"busy":  http.StatusTooManyRequests,
		"flaky": http.StatusServiceUnavailable,
	}}
	svc := newTestService(t, fake)

	_, err := svc.ListChildren(context.Background(), "busy")
	assert.ErrorIs(t, err, hierarchy.ErrRateLimited)

	_, err = svc.GetNode(context.Background(), "flaky")
	assert.ErrorIs(t, err, hierarchy.ErrUnavailable)
}

func TestChildrenQuery_EscapesQuotes(t *testing.T) {
	assert.Equal(t, `'a\'b' in parents and trashed = false`, childrenQuery("a'b"))
}
