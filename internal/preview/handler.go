package preview

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"learning-resources-backend/pkg/models"
)

// Handler serves preview URLs
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers preview routes with the Echo router
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/preview/:fileId", h.GetPreview)
}

// GetPreview handles GET /api/preview/:fileId
func (h *Handler) GetPreview(c echo.Context) error {
	embedURL, err := h.service.EmbedURL(c.Param("fileId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.PreviewResponse{EmbedURL: embedURL})
}
