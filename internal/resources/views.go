package resources

import "learning-resources-backend/pkg/models"

// TreeView is the wire shape of a tree node. Files carry no children
// field; folders always do, empty or not.
type TreeView struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	MimeType string      `json:"mimeType"`
	Children *[]TreeView `json:"children,omitempty"`
}

// ToTreeView shapes a walked tree for the tree endpoint
func ToTreeView(node *models.TreeNode) TreeView {
	view := TreeView{ID: node.ID, Name: node.Name, MimeType: node.MimeType}
	if node.IsFolder() {
		children := make([]TreeView, 0, len(node.Children))
		for _, child := range node.Children {
			children = append(children, ToTreeView(child))
		}
		view.Children = &children
	}
	return view
}

// ToFlatView shapes the flattened file list for the all-files endpoint
func ToFlatView(files []models.Node) []models.Node {
	if files == nil {
		return []models.Node{}
	}
	return files
}

// ToSubfolderView shapes a single-level listing
func ToSubfolderView(folder models.Node, items []models.Node) models.SubfolderListing {
	if items == nil {
		items = []models.Node{}
	}
	return models.SubfolderListing{FolderName: folder.Name, Items: items}
}
