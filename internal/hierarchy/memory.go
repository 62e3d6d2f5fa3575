package hierarchy

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"learning-resources-backend/pkg/models"
)

// MemoryClient is an in-process hierarchy. It serves the "memory" provider
// mode and backs the traversal and handler tests. Children are paged
// PageSize at a time so pagination is exercised like a real provider.
type MemoryClient struct {
	PageSize int
	Delay    time.Duration // slept before every call, honouring ctx

	mu        sync.RWMutex
	nodes     map[string]models.Node
	children  map[string][]string
	getErrs   map[string]error
	listErrs  map[string]error
	inFlight  atomic.Int64
	maxFlight atomic.Int64
	calls     atomic.Int64
}

// NewMemoryClient returns an empty MemoryClient
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		PageSize: DefaultPageSize,
		nodes:    make(map[string]models.Node),
		children: make(map[string][]string),
		getErrs:  make(map[string]error),
		listErrs: make(map[string]error),
	}
}

// AddFolder registers a folder under parentID. An empty parentID adds a root.
func (m *MemoryClient) AddFolder(parentID, id, name string) *MemoryClient {
	return m.add(parentID, models.Node{ID: id, Name: name, Kind: models.KindFolder, MimeType: models.FolderMimeType})
}

// AddFile registers a file under parentID
func (m *MemoryClient) AddFile(parentID, id, name, mimeType string) *MemoryClient {
	return m.add(parentID, models.Node{ID: id, Name: name, Kind: models.KindFile, MimeType: mimeType})
}

// Link lists an existing node as a child of parentID as well. Used to
// build cycles and shared subtrees.
func (m *MemoryClient) Link(parentID, id string) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children[parentID] = append(m.children[parentID], id)
	return m
}

// FailGet makes GetNode(id) fail with err
func (m *MemoryClient) FailGet(id string, err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErrs[id] = err
	return m
}

// FailList makes listing id's children fail with err
func (m *MemoryClient) FailList(id string, err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErrs[id] = err
	return m
}

// Calls returns the number of provider calls served, pages counted individually
func (m *MemoryClient) Calls() int64 {
	return m.calls.Load()
}

// MaxInFlight returns the highest number of concurrent calls observed
func (m *MemoryClient) MaxInFlight() int64 {
	return m.maxFlight.Load()
}

func (m *MemoryClient) add(parentID string, node models.Node) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[node.ID] = node
	if parentID != "" {
		m.children[parentID] = append(m.children[parentID], node.ID)
	}
	return m
}

func (m *MemoryClient) GetNode(ctx context.Context, id string) (models.Node, error) {
	if err := m.enter(ctx); err != nil {
		return models.Node{}, err
	}
	defer m.inFlight.Add(-1)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.getErrs[id]; err != nil {
		return models.Node{}, err
	}
	node, ok := m.nodes[id]
	if !ok {
		return models.Node{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return node, nil
}

func (m *MemoryClient) ListChildren(ctx context.Context, id string) ([]models.Node, error) {
	return Paginate(ctx, m, id, m.PageSize)
}

func (m *MemoryClient) ListPage(ctx context.Context, parentID string, pageSize int, pageToken string) ([]models.Node, string, error) {
	if err := m.enter(ctx); err != nil {
		return nil, "", err
	}
	defer m.inFlight.Add(-1)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.listErrs[parentID]; err != nil {
		return nil, "", err
	}
	if _, ok := m.nodes[parentID]; !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}

	offset := 0
	if pageToken != "" {
		var err error
		if offset, err = strconv.Atoi(pageToken); err != nil {
			return nil, "", fmt.Errorf("%w: bad page token %q", ErrUnavailable, pageToken)
		}
	}

	ids := m.children[parentID]
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	offset = min(max(offset, 0), len(ids))
	end := min(offset+pageSize, len(ids))
	page := make([]models.Node, 0, end-offset)
	for _, childID := range ids[offset:end] {
		page = append(page, m.nodes[childID])
	}

	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

func (m *MemoryClient) enter(ctx context.Context) error {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	for {
		peak := m.maxFlight.Load()
		if n <= peak || m.maxFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			m.inFlight.Add(-1)
			return ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		m.inFlight.Add(-1)
		return err
	}
	return nil
}
