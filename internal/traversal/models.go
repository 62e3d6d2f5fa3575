package traversal

import "learning-resources-backend/pkg/models"

// Mode selects the aggregate a walk produces
type Mode int

const (
	FullTree Mode = iota
	FlattenLeaves
)

func (m Mode) String() string {
	if m == FlattenLeaves {
		return "flatten"
	}
	return "tree"
}

// Options bound a single walk. Zero values mean unbounded.
type Options struct {
	Mode     Mode
	MaxDepth int // folder levels expanded below the root
	MaxNodes int // nodes emitted, root included
}

// Truncation reasons
const (
	TruncatedDepth   = "depth"
	TruncatedBudget  = "budget"
	TruncatedRevisit = "revisit"
)

// Failure is a subtree omitted because a provider call failed
type Failure struct {
	NodeID string
	Kind   string
	Err    error
}

// Result is the outcome of a walk. Tree is set for FullTree, Files for
// FlattenLeaves.
type Result struct {
	Tree     *models.TreeNode
	Files    []models.Node
	Failures []Failure
	Nodes    int
	// TruncatedBy lists the limits that cut the walk short, sorted
	TruncatedBy []string
}

// Truncated reports whether any limit cut the walk short
func (r *Result) Truncated() bool {
	return len(r.TruncatedBy) > 0
}

// Partial reports whether the result is missing anything the provider holds
func (r *Result) Partial() bool {
	return r.Truncated() || len(r.Failures) > 0
}

// Flatten returns the files of tree in depth-first order
func Flatten(tree *models.TreeNode) []models.Node {
	files := []models.Node{}
	var visit func(*models.TreeNode)
	visit = func(n *models.TreeNode) {
		if !n.IsFolder() {
			files = append(files, n.Node)
			return
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	if tree != nil {
		visit(tree)
	}
	return files
}
