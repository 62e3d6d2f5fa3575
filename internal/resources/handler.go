package resources

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"learning-resources-backend/internal/logging"
	"learning-resources-backend/internal/traversal"
	"learning-resources-backend/pkg/models"
)

// Headers carrying the completeness of a traversal, so the body keeps the
// plain tree / list shape
const (
	HeaderTruncated = "X-Traversal-Truncated"
	HeaderFailures  = "X-Traversal-Failures"
)

// Handler handles HTTP requests for the resource views
type Handler struct {
	service *Service
}

// NewHandler creates a new resources handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers resource routes with the Echo router
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/resources")
	g.GET("/tree", h.GetTree)
	g.GET("/all", h.GetAll)
	g.GET("/sub/:folderId", h.GetSubfolder)
}

// GetTree handles GET /api/resources/tree
func (h *Handler) GetTree(c echo.Context) error {
	result, err := h.service.Tree(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to retrieve folder tree")
	}

	setTraversalHeaders(c, result)
	return c.JSON(http.StatusOK, ToTreeView(result.Tree))
}

// GetAll handles GET /api/resources/all
func (h *Handler) GetAll(c echo.Context) error {
	result, err := h.service.AllFiles(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to retrieve files")
	}

	setTraversalHeaders(c, result)
	return c.JSON(http.StatusOK, ToFlatView(result.Files))
}

// GetSubfolder handles GET /api/resources/sub/:folderId
// The optional kind query parameter (folder or file) filters the items.
func (h *Handler) GetSubfolder(c echo.Context) error {
	kind, filter, err := parseKind(c.QueryParam("kind"))
	if err != nil {
		return h.fail(c, err, "")
	}

	folder, items, err := h.service.Subfolder(c.Request().Context(), c.Param("folderId"))
	if err != nil {
		return h.fail(c, err, "Failed to retrieve subfolder")
	}

	if filter {
		items = FilterByKind(items, kind)
	}
	return c.JSON(http.StatusOK, ToSubfolderView(folder, items))
}

func (h *Handler) fail(c echo.Context, err error, fallback string) error {
	resp := GetErrorResponse(err, fallback)
	logger := logging.WithContext(c.Request().Context())
	fields := []zap.Field{
		zap.String("path", c.Path()),
		zap.Int("status", resp.StatusCode),
		zap.Error(err),
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Error("resource request failed", fields...)
	} else {
		logger.Info("resource request rejected", fields...)
	}

	return c.JSON(resp.StatusCode, map[string]string{
		"error": resp.Message,
	})
}

func setTraversalHeaders(c echo.Context, result *traversal.Result) {
	header := c.Response().Header()
	header.Set(HeaderTruncated, strconv.FormatBool(result.Truncated()))
	header.Set(HeaderFailures, strconv.Itoa(len(result.Failures)))
}

func parseKind(value string) (models.Kind, bool, error) {
	switch value {
	case "":
		return 0, false, nil
	case "folder":
		return models.KindFolder, true, nil
	case "file":
		return models.KindFile, true, nil
	default:
		return 0, false, ErrInvalidKind
	}
}
