package googledrive

import (
	"google.golang.org/api/drive/v3"

	"learning-resources-backend/pkg/models"
)

const (
	nodeFields = "id, name, mimeType, trashed"
	listFields = "nextPageToken, files(id, name, mimeType)"
)

// toNode converts a Drive file to the provider-neutral node
func toNode(file *drive.File) models.Node {
	kind := models.KindFile
	if file.MimeType == models.FolderMimeType {
		kind = models.KindFolder
	}
	return models.Node{
		ID:       file.Id,
		Name:     file.Name,
		Kind:     kind,
		MimeType: file.MimeType,
	}
}
