package models

// FolderMimeType is the mime type Google Drive reports for folders
const FolderMimeType = "application/vnd.google-apps.folder"

// Kind discriminates folders from files
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Node is one entry (folder or file) in the remote hierarchy
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     Kind   `json:"-"`
	MimeType string `json:"mimeType"`
}

// IsFolder reports whether the node is a folder
func (n Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// TreeNode is a Node with its resolved children. Children is only
// populated for folders. The wire shape is produced by the resources views.
type TreeNode struct {
	Node
	Children []*TreeNode
}

// SubfolderListing is the single-level view of one folder
type SubfolderListing struct {
	FolderName string `json:"folderName"`
	Items      []Node `json:"items"`
}

// PreviewResponse carries an embeddable preview URL
type PreviewResponse struct {
	EmbedURL string `json:"embedUrl"`
}
