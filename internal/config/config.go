package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Provider names accepted in PROVIDER
const (
	ProviderGoogleDrive = "googledrive"
	ProviderOneDrive    = "onedrive"
	ProviderMemory      = "memory"
)

type Config struct {
	Port         string
	RootFolderID string
	Provider     string

	// Provider credentials, opaque to the traversal layer
	GoogleServiceAccount string
	OneDriveTenantID     string
	OneDriveClientID     string
	OneDriveClientSecret string
	OneDriveDriveID      string

	// Traversal limits
	Concurrency    int
	MaxDepth       int
	MaxNodes       int
	RequestTimeout time.Duration
	PageSize       int
	RetryAttempts  int

	CORSOrigins    []string
	StaticDir      string
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

// LoadDotEnv loads an optional .env file for local development. It is
// skipped inside containers, where the environment is authoritative.
func LoadDotEnv(paths ...string) error {
	if os.Getenv("DOCKER_ENV") != "" {
		return nil
	}
	return godotenv.Load(paths...)
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "5000"),
		RootFolderID:         strings.TrimSpace(os.Getenv("DRIVE_FOLDER_ID")),
		Provider:             getEnv("PROVIDER", ProviderGoogleDrive),
		GoogleServiceAccount: os.Getenv("GOOGLE_SERVICE_ACCOUNT"),
		OneDriveTenantID:     os.Getenv("ONEDRIVE_TENANT_ID"),
		OneDriveClientID:     os.Getenv("ONEDRIVE_CLIENT_ID"),
		OneDriveClientSecret: os.Getenv("ONEDRIVE_CLIENT_SECRET"),
		OneDriveDriveID:      os.Getenv("ONEDRIVE_DRIVE_ID"),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "*")),
		StaticDir:            getEnv("STATIC_DIR", "../frontend/build"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.Concurrency, err = getInt("TRAVERSAL_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = getInt("TRAVERSAL_MAX_DEPTH", 0); err != nil {
		return nil, err
	}
	if cfg.MaxNodes, err = getInt("TRAVERSAL_MAX_NODES", 0); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = getInt("PAGE_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.RetryAttempts, err = getInt("RETRY_MAX_ATTEMPTS", 4); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = time.ParseDuration(getEnv("REQUEST_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if cfg.MetricsEnabled, err = strconv.ParseBool(getEnv("METRICS_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("METRICS_ENABLED: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable for the selected provider
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.By(isPort)),
		validation.Field(&c.RootFolderID, validation.Required),
		validation.Field(&c.Provider, validation.Required,
			validation.In(ProviderGoogleDrive, ProviderOneDrive, ProviderMemory)),
		validation.Field(&c.GoogleServiceAccount,
			validation.When(c.Provider == ProviderGoogleDrive, validation.Required)),
		validation.Field(&c.OneDriveTenantID, validation.When(c.Provider == ProviderOneDrive, validation.Required)),
		validation.Field(&c.OneDriveClientID, validation.When(c.Provider == ProviderOneDrive, validation.Required)),
		validation.Field(&c.OneDriveClientSecret, validation.When(c.Provider == ProviderOneDrive, validation.Required)),
		validation.Field(&c.OneDriveDriveID, validation.When(c.Provider == ProviderOneDrive, validation.Required)),
		validation.Field(&c.Concurrency, validation.Min(1)),
		validation.Field(&c.MaxDepth, validation.Min(0)),
		validation.Field(&c.MaxNodes, validation.Min(0)),
		validation.Field(&c.PageSize, validation.Min(1), validation.Max(1000)),
		validation.Field(&c.RetryAttempts, validation.Min(1)),
		validation.Field(&c.RequestTimeout, validation.Min(time.Second)),
		validation.Field(&c.LogFormat, validation.In("json", "console")),
	)
}

func isPort(value interface{}) error {
	port, err := strconv.Atoi(value.(string))
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a TCP port number")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
