// Package traversal walks a storage provider's hierarchy with bounded
// concurrent fan-out.
//
// Sibling subtrees are walked concurrently while at most Concurrency
// provider calls are in flight per walk. Children always come back in the
// order the provider listed them. A failure below the root omits that
// subtree and is reported in Result.Failures; only a failure to fetch the
// root itself fails the walk. Cancelling ctx fails the whole walk with the
// context's error, no partial result is returned.
package traversal

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/internal/logging"
	"learning-resources-backend/internal/metrics"
	"learning-resources-backend/pkg/models"
)

// DefaultConcurrency is the in-flight provider call limit used when none is set
const DefaultConcurrency = 8

// Engine walks hierarchies served by a hierarchy.Client
type Engine struct {
	client      hierarchy.Client
	concurrency int64
}

// NewEngine creates an engine allowing concurrency in-flight provider
// calls per walk
func NewEngine(client hierarchy.Client, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{client: client, concurrency: int64(concurrency)}
}

// walk is the state shared by the branches of one Walk call
type walk struct {
	client hierarchy.Client
	opts   Options
	sem    *semaphore.Weighted
	nodes  atomic.Int64

	mu        sync.Mutex
	visited   map[string]struct{}
	expanded  map[string]*models.TreeNode
	stubs     map[*models.TreeNode]struct{}
	failures  []Failure
	truncated map[string]struct{}
}

type admission int

const (
	rejected admission = iota
	admitted
	revisited
)

// Walk produces the aggregate selected by opts.Mode for the hierarchy
// rooted at rootID.
func (e *Engine) Walk(ctx context.Context, rootID string, opts Options) (*Result, error) {
	if strings.TrimSpace(rootID) == "" {
		return nil, ErrInvalidID
	}

	start := time.Now()
	w := &walk{
		client:    e.client,
		opts:      opts,
		sem:       semaphore.NewWeighted(e.concurrency),
		visited:   map[string]struct{}{rootID: {}},
		expanded:  make(map[string]*models.TreeNode),
		stubs:     make(map[*models.TreeNode]struct{}),
		truncated: make(map[string]struct{}),
	}

	root, err := w.getNode(ctx, rootID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrRootUnavailable, rootID, err)
	}
	w.nodes.Add(1)

	tree := &models.TreeNode{Node: root}
	if root.IsFolder() {
		if err := w.expand(ctx, tree, 0); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// The root resolved, so its listing failure is reported like
			// any other subtree rather than failing the walk
			w.fail(ctx, rootID, err)
			tree.Children = []*models.TreeNode{}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.settle(tree)

	nodes := int(w.nodes.Load())
	if opts.MaxNodes > 0 {
		nodes = min(nodes, opts.MaxNodes)
	}
	result := &Result{
		Failures:    w.failures,
		Nodes:       nodes,
		TruncatedBy: slices.Sorted(maps.Keys(w.truncated)),
	}
	if opts.Mode == FlattenLeaves {
		result.Files = Flatten(tree)
	} else {
		result.Tree = tree
	}

	metrics.RecordTraversal(opts.Mode.String(), result.Nodes, time.Since(start))
	for _, reason := range result.TruncatedBy {
		metrics.RecordTruncation(reason)
	}
	return result, nil
}

// expand fills folder.Children. A non-nil error means folder's own listing
// failed or ctx was cancelled; failures deeper down are recorded and the
// affected child omitted.
func (w *walk) expand(ctx context.Context, folder *models.TreeNode, depth int) error {
	if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
		folder.Children = []*models.TreeNode{}
		w.truncate(TruncatedDepth)
		w.done(folder)
		return nil
	}

	listed, err := w.listChildren(ctx, folder.ID)
	if err != nil {
		return err
	}

	slots := make([]*models.TreeNode, len(listed))
	g, gctx := errgroup.WithContext(ctx)

	for i, child := range listed {
		node := &models.TreeNode{Node: child}
		switch w.admit(child) {
		case rejected:
			continue
		case revisited:
			w.mu.Lock()
			w.stubs[node] = struct{}{}
			w.mu.Unlock()
			slots[i] = node
			continue
		}

		if !child.IsFolder() {
			slots[i] = node
			continue
		}

		g.Go(func() error {
			if err := w.expand(gctx, node, depth+1); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				w.fail(gctx, child.ID, err)
				return nil
			}
			slots[i] = node
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	folder.Children = make([]*models.TreeNode, 0, len(slots))
	for _, node := range slots {
		if node != nil {
			folder.Children = append(folder.Children, node)
		}
	}
	w.done(folder)
	return nil
}

func (w *walk) done(folder *models.TreeNode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.expanded[folder.ID] = folder
}

// settle places every folder at its first depth-first occurrence, whichever
// branch happened to expand it, and drops its other occurrences. Stubs left
// by revisits are swapped for the expanded subtree or dropped when that
// subtree failed.
func (w *walk) settle(root *models.TreeNode) {
	placed := map[string]struct{}{root.ID: {}}

	var visit func(*models.TreeNode)
	visit = func(n *models.TreeNode) {
		if !n.IsFolder() || n.Children == nil {
			return
		}
		kept := make([]*models.TreeNode, 0, len(n.Children))
		for _, child := range n.Children {
			if child.IsFolder() {
				if _, ok := placed[child.ID]; ok {
					continue
				}
				if full, ok := w.expanded[child.ID]; ok {
					child = full
				} else if _, stub := w.stubs[child]; stub {
					continue
				}
				placed[child.ID] = struct{}{}
			}
			kept = append(kept, child)
			visit(child)
		}
		n.Children = kept
	}
	visit(root)
}

// admit decides whether child is emitted, charging it against the node
// budget. Folders are expanded at most once per walk; a second occurrence
// is kept as an unexpanded stub until settle. Files may legitimately appear
// under several parents.
func (w *walk) admit(child models.Node) admission {
	if child.IsFolder() {
		w.mu.Lock()
		_, seen := w.visited[child.ID]
		if !seen {
			w.visited[child.ID] = struct{}{}
		}
		w.mu.Unlock()

		if seen {
			w.truncate(TruncatedRevisit)
			return revisited
		}
	}

	if n := w.nodes.Add(1); w.opts.MaxNodes > 0 && n > int64(w.opts.MaxNodes) {
		w.truncate(TruncatedBudget)
		return rejected
	}
	return admitted
}

func (w *walk) getNode(ctx context.Context, id string) (models.Node, error) {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return models.Node{}, err
	}
	defer w.sem.Release(1)
	return w.client.GetNode(ctx, id)
}

func (w *walk) listChildren(ctx context.Context, id string) ([]models.Node, error) {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer w.sem.Release(1)
	return w.client.ListChildren(ctx, id)
}

func (w *walk) fail(ctx context.Context, id string, err error) {
	kind := hierarchy.ErrorKind(err)
	logging.WithContext(ctx).Warn("omitting subtree after provider failure",
		zap.String("node_id", id),
		zap.String("error_kind", kind),
		zap.Error(err),
	)
	metrics.RecordNodeFailure(kind)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures = append(w.failures, Failure{NodeID: id, Kind: kind, Err: err})
}

func (w *walk) truncate(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.truncated[reason] = struct{}{}
}

// ResolveFolder returns folderID's metadata and its immediate children in
// provider order, without recursing. It fails with hierarchy.ErrNotFound
// when folderID does not exist or is not a folder.
func (e *Engine) ResolveFolder(ctx context.Context, folderID string) (models.Node, []models.Node, error) {
	if strings.TrimSpace(folderID) == "" {
		return models.Node{}, nil, ErrInvalidID
	}

	folder, err := e.client.GetNode(ctx, folderID)
	if err != nil {
		return models.Node{}, nil, fmt.Errorf("failed to get folder %s: %w", folderID, err)
	}
	if !folder.IsFolder() {
		return models.Node{}, nil, fmt.Errorf("%w: %s is not a folder", hierarchy.ErrNotFound, folderID)
	}

	items, err := e.client.ListChildren(ctx, folderID)
	if err != nil {
		return models.Node{}, nil, err
	}
	return folder, items, nil
}
