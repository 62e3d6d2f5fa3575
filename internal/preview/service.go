package preview

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrInvalidFileID = errors.New("invalid file id")

// Format describes how a provider's file ids look and where they preview
type Format struct {
	idPattern *regexp.Regexp
	template  string
}

var (
	// GoogleDrive previews through the Drive file viewer
	GoogleDrive = Format{
		idPattern: regexp.MustCompile(`^[A-Za-z0-9_-]+$`),
		template:  "https://drive.google.com/file/d/%s/preview?embedded=true",
	}

	// OneDrive previews through the OneDrive embed viewer. Personal drive
	// ids carry a "!" separator.
	OneDrive = Format{
		idPattern: regexp.MustCompile(`^[A-Za-z0-9!_-]+$`),
		template:  "https://onedrive.live.com/embed?resid=%s&em=2",
	}
)

// Service formats embeddable preview URLs. It never calls the provider.
type Service struct {
	format Format
}

func NewService(format Format) *Service {
	return &Service{format: format}
}

// EmbedURL returns the preview URL for fileID
func (s *Service) EmbedURL(fileID string) (string, error) {
	err := validation.Validate(fileID,
		validation.Required,
		validation.Length(10, 128),
		validation.Match(s.format.idPattern),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFileID, err)
	}
	return fmt.Sprintf(s.format.template, url.QueryEscape(fileID)), nil
}
