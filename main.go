package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"learning-resources-backend/internal/config"
	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/internal/logging"
	"learning-resources-backend/internal/metrics"
	"learning-resources-backend/internal/middleware"
	"learning-resources-backend/internal/preview"
	"learning-resources-backend/internal/providers/googledrive"
	"learning-resources-backend/internal/providers/onedrive"
	"learning-resources-backend/internal/resources"
	"learning-resources-backend/internal/retry"
	"learning-resources-backend/internal/traversal"
)

func main() {
	// Load .env file for local development (ignored in Docker)
	if err := config.LoadDotEnv(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logging.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newHierarchyClient(ctx, cfg)
	if err != nil {
		logging.Fatal("storage provider init failed", zap.String("provider", cfg.Provider), zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	initialize(e, cfg, client)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("provider", cfg.Provider),
			zap.String("root_folder_id", cfg.RootFolderID))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newHierarchyClient builds the provider client selected by PROVIDER,
// wrapped with bounded retries on backpressure
func newHierarchyClient(ctx context.Context, cfg *config.Config) (hierarchy.Client, error) {
	var client hierarchy.Client
	switch cfg.Provider {
	case config.ProviderGoogleDrive:
		driveService, err := googledrive.NewGoogleDriveService(ctx, cfg.GoogleServiceAccount, cfg.PageSize)
		if err != nil {
			return nil, err
		}
		client = driveService
	case config.ProviderOneDrive:
		client = onedrive.NewOneDriveService(ctx, onedrive.Credentials{
			TenantID:     cfg.OneDriveTenantID,
			ClientID:     cfg.OneDriveClientID,
			ClientSecret: cfg.OneDriveClientSecret,
			DriveID:      cfg.OneDriveDriveID,
		}, cfg.PageSize)
	case config.ProviderMemory:
		// Local development without provider credentials
		memory := sampleHierarchy(cfg.RootFolderID)
		memory.PageSize = cfg.PageSize
		client = memory
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	retryConfig := retry.DefaultConfig()
	retryConfig.MaxAttempts = cfg.RetryAttempts
	return hierarchy.NewRetrying(client, retryConfig, cfg.PageSize), nil
}

// sampleHierarchy seeds the memory provider with a small course layout
func sampleHierarchy(rootID string) *hierarchy.MemoryClient {
	return hierarchy.NewMemoryClient().
		AddFolder("", rootID, "Resources").
		AddFolder(rootID, "sampleWeek01Folder", "Week 1").
		AddFile("sampleWeek01Folder", "sampleWeek01Slides", "Introduction.pdf", "application/pdf").
		AddFile("sampleWeek01Folder", "sampleWeek01Notes", "Notes", "application/vnd.google-apps.document").
		AddFolder(rootID, "sampleWeek02Folder", "Week 2").
		AddFolder("sampleWeek02Folder", "sampleWeek02Labs", "Labs").
		AddFile("sampleWeek02Labs", "sampleWeek02Lab01", "Lab 1.pdf", "application/pdf").
		AddFile("sampleWeek02Folder", "sampleWeek02Video", "Lecture.mp4", "video/mp4").
		AddFile(rootID, "sampleSyllabus01", "Syllabus.pdf", "application/pdf")
}

func previewFormat(provider string) preview.Format {
	if provider == config.ProviderOneDrive {
		return preview.OneDrive
	}
	return preview.GoogleDrive
}

func initialize(e *echo.Echo, cfg *config.Config, client hierarchy.Client) {
	// Middleware
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.CORSConfig(cfg.CORSOrigins))

	// Initialize the traversal engine shared by every resource view
	engine := traversal.NewEngine(client, cfg.Concurrency)

	resourcesService := resources.NewService(engine, cfg.RootFolderID, resources.Limits{
		MaxDepth: cfg.MaxDepth,
		MaxNodes: cfg.MaxNodes,
		Timeout:  cfg.RequestTimeout,
	})
	resources.NewHandler(resourcesService).RegisterRoutes(e)

	preview.NewHandler(preview.NewService(previewFormat(cfg.Provider))).RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	// Serve the SPA build with index.html fallback for client-side routes
	if cfg.StaticDir != "" {
		if _, err := os.Stat(filepath.Join(cfg.StaticDir, "index.html")); err != nil {
			logging.Warn("static directory not served", zap.String("dir", cfg.StaticDir), zap.Error(err))
			return
		}
		e.Use(echoMiddleware.StaticWithConfig(echoMiddleware.StaticConfig{
			Root:  cfg.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				return hasPrefix(c.Request().URL.Path, "/api/", "/metrics", "/healthz")
			},
		}))
	}
}

func hasPrefix(path string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
