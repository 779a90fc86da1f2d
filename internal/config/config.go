package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/censys-cli/internal/censys"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DefaultPageSize is the number of search hits requested when none is given
	DefaultPageSize = 5

	// DefaultBucketCount is the number of aggregate buckets requested when none is given
	DefaultBucketCount = 5
)

// Config holds all configuration for the application
type Config struct {
	API     APIConfig
	App     AppConfig
	HTTP    HTTPConfig
	Query   QueryConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// APIConfig holds Censys Platform API configuration
type APIConfig struct {
	BaseURL        string
	Token          string
	OrganizationID string
}

// AppConfig holds application configuration
type AppConfig struct {
	LogLevel     string
	LogFile      string
	OutputFormat string
	NoColor      bool
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	// Timeout of zero leaves the HTTP client default in place
	Timeout time.Duration
}

// QueryConfig holds per-command defaults
type QueryConfig struct {
	PageSize    int
	BucketCount int
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	Driver string
	DSN    string
}

// MetricsConfig holds Prometheus Pushgateway configuration
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// Enabled reports whether an audit database is configured
func (a AuditConfig) Enabled() bool {
	return a.DSN != ""
}

// Enabled reports whether metrics should be pushed
func (m MetricsConfig) Enabled() bool {
	return m.PushgatewayURL != ""
}

// Load loads configuration from the environment, an optional .env file and
// an optional YAML config file. Environment variables win over the file.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetEnvPrefix("censys")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", censys.DefaultBaseURL)
	v.SetDefault("platform_token", "")
	v.SetDefault("organization_id", "")
	v.SetDefault("http.timeout", "0s")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("output.format", "text")
	v.SetDefault("no_color", false)
	v.SetDefault("search.page_size", DefaultPageSize)
	v.SetDefault("aggregate.buckets", DefaultBucketCount)
	v.SetDefault("audit.driver", "postgres")
	v.SetDefault("audit.dsn", "")
	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.job", "censys_cli")

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(v.GetString("http.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid CENSYS_HTTP_TIMEOUT: %w", err)
	}

	pageSize, err := parseInt(v, "search.page_size")
	if err != nil {
		return nil, fmt.Errorf("invalid CENSYS_SEARCH_PAGE_SIZE: %w", err)
	}

	bucketCount, err := parseInt(v, "aggregate.buckets")
	if err != nil {
		return nil, fmt.Errorf("invalid CENSYS_AGGREGATE_BUCKETS: %w", err)
	}

	config := &Config{
		API: APIConfig{
			BaseURL:        strings.TrimRight(v.GetString("api_url"), "/"),
			Token:          strings.TrimSpace(v.GetString("platform_token")),
			OrganizationID: strings.TrimSpace(v.GetString("organization_id")),
		},
		App: AppConfig{
			LogLevel:     strings.ToLower(v.GetString("log.level")),
			LogFile:      v.GetString("log.file"),
			OutputFormat: strings.ToLower(v.GetString("output.format")),
			NoColor:      v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		},
		HTTP: HTTPConfig{
			Timeout: timeout,
		},
		Query: QueryConfig{
			PageSize:    pageSize,
			BucketCount: bucketCount,
		},
		Audit: AuditConfig{
			Driver: strings.ToLower(v.GetString("audit.driver")),
			DSN:    v.GetString("audit.dsn"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: v.GetString("metrics.pushgateway"),
			Job:            v.GetString("metrics.job"),
		},
	}

	return config, nil
}

// readConfigFile reads CENSYS_CONFIG, or the per-user config file when present
func readConfigFile(v *viper.Viper) error {
	if path := os.Getenv("CENSYS_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(filepath.Join(home, ".config", "censys-cli"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	logrus.Debugf("Using config file %s", v.ConfigFileUsed())
	return nil
}

// parseInt reads an integer setting, rejecting values that are not numbers
func parseInt(v *viper.Viper, key string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(v.GetString(key)))
}

// Validate validates the configuration. The credential is checked separately
// by RequireCredentials so that help output works without one.
func (c *Config) Validate() error {
	var problems []string

	if err := c.validateAPI(); err != nil {
		problems = append(problems, fmt.Sprintf("API: %v", err))
	}

	if err := c.validateApp(); err != nil {
		problems = append(problems, fmt.Sprintf("application: %v", err))
	}

	if err := c.validateQuery(); err != nil {
		problems = append(problems, fmt.Sprintf("query: %v", err))
	}

	if err := c.validateAudit(); err != nil {
		problems = append(problems, fmt.Sprintf("audit: %v", err))
	}

	if c.HTTP.Timeout < 0 {
		problems = append(problems, "HTTP: CENSYS_HTTP_TIMEOUT must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}

	return nil
}

// RequireCredentials fails with censys.ErrMissingToken when no bearer token
// is configured
func (c *Config) RequireCredentials() error {
	if c.API.Token == "" {
		return fmt.Errorf("CENSYS_PLATFORM_TOKEN is not set: %w", censys.ErrMissingToken)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("CENSYS_API_URL is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("CENSYS_API_URL must start with http:// or https://")
	}
	return nil
}

func (c *Config) validateApp() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.App.LogLevel) {
		return fmt.Errorf("CENSYS_LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "yaml"}
	if !contains(validFormats, c.App.OutputFormat) {
		return fmt.Errorf("CENSYS_OUTPUT_FORMAT must be one of: %s", strings.Join(validFormats, ", "))
	}

	return nil
}

func (c *Config) validateQuery() error {
	if c.Query.PageSize <= 0 || c.Query.PageSize > 100 {
		return fmt.Errorf("CENSYS_SEARCH_PAGE_SIZE must be between 1 and 100")
	}
	if c.Query.BucketCount <= 0 || c.Query.BucketCount > 1000 {
		return fmt.Errorf("CENSYS_AGGREGATE_BUCKETS must be between 1 and 1000")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled() {
		return nil
	}
	validDrivers := []string{"postgres", "sqlite"}
	if !contains(validDrivers, c.Audit.Driver) {
		return fmt.Errorf("CENSYS_AUDIT_DRIVER must be one of: %s", strings.Join(validDrivers, ", "))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
