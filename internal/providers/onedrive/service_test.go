package onedrive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/pkg/models"
)

func newTestService(t *testing.T, mux *http.ServeMux) *Service {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewService(server.Client(), server.URL, "drive1", 2)
}

func TestGetNode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drives/drive1/items/d1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, itemSelect, r.URL.Query().Get("$select"))
		_, _ = w.Write([]byte(`{"id":"d1","name":"Docs","folder":{"childCount":2}}`))
	})
	mux.HandleFunc("GET /drives/drive1/items/gone", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"gone","name":"x","file":{"mimeType":"text/plain"},"deleted":{"state":"deleted"}}`))
	})
	mux.HandleFunc("GET /drives/drive1/items/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"itemNotFound","message":"The resource could not be found."}}`))
	})
	svc := newTestService(t, mux)

	node, err := svc.GetNode(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, models.Node{ID: "d1", Name: "Docs", Kind: models.KindFolder, MimeType: models.FolderMimeType}, node)

	_, err = svc.GetNode(context.Background(), "missing")
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
	assert.Contains(t, err.Error(), "itemNotFound")

	_, err = svc.GetNode(context.Background(), "gone")
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
}

func TestListChildren_FollowsNextLink(t *testing.T) {
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drives/drive1/items/d1/children", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`{"value":[{"id":"f2","name":"b.txt","file":{"mimeType":"text/plain"}}]}`))
			return
		}
		assert.Equal(t, "2", r.URL.Query().Get("$top"))
		_, _ = w.Write([]byte(`{"value":[` +
			`{"id":"f1","name":"a.pdf","file":{"mimeType":"application/pdf"}},` +
			`{"id":"d2","name":"Sub","folder":{"childCount":0}}],` +
			`"@odata.nextLink":"` + serverURL + `/drives/drive1/items/d1/children?page=2"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	serverURL = server.URL
	svc := NewService(server.Client(), server.URL, "drive1", 2)

	items, err := svc.ListChildren(context.Background(), "d1")

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "application/pdf", items[0].MimeType)
	assert.True(t, items[1].IsFolder())
	assert.Equal(t, "f2", items[2].ID)
}

func TestThrottlingIsRateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drives/drive1/items/busy/children", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("GET /drives/drive1/items/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	svc := newTestService(t, mux)

	_, err := svc.ListChildren(context.Background(), "busy")
	assert.ErrorIs(t, err, hierarchy.ErrRateLimited)

	_, err = svc.GetNode(context.Background(), "down")
	assert.ErrorIs(t, err, hierarchy.ErrUnavailable)
}
