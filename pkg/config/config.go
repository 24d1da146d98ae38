package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for forge-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (database password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	// Generation pipeline configuration
	Generator GeneratorConfig `yaml:"generator"`

	// Optional job audit store (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`
}

// GeneratorConfig holds the directories and limits used by the generation
// pipeline.
type GeneratorConfig struct {
	// UploadDir receives uploaded schema files before processing.
	UploadDir string `yaml:"upload_dir" env:"GENERATOR_UPLOAD_DIR" env-default:"tmp_schema_files"`
	// OutputDir is the root under which per-job record files are written.
	OutputDir string `yaml:"output_dir" env:"GENERATOR_OUTPUT_DIR" env-default:"data"`
	// DownloadsDir holds finished archives served by the download endpoint.
	DownloadsDir string `yaml:"downloads_dir" env:"GENERATOR_DOWNLOADS_DIR" env-default:"downloads"`
	// MaxRecordCount caps the per-table record count accepted per request.
	MaxRecordCount int `yaml:"max_record_count" env:"GENERATOR_MAX_RECORD_COUNT" env-default:"10000"`
	// MaxUploadBytes caps the size of an uploaded schema file or container.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"GENERATOR_MAX_UPLOAD_BYTES" env-default:"33554432"`
}

// DatabaseConfig holds PostgreSQL configuration for the generation-job audit
// trail. The store is optional; when disabled the engine runs stateless.
type DatabaseConfig struct {
	Enabled        bool   `yaml:"enabled" env:"JOB_STORE_ENABLED" env-default:"false"`
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"forge"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"forge_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Load reads configuration from config.yaml with environment variable
// overrides. When config.yaml is absent, configuration comes from environment
// variables and tag defaults alone. The version parameter is injected at
// build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	if cfg.Generator.MaxRecordCount < 1 {
		return nil, fmt.Errorf("generator max_record_count must be positive, got %d", cfg.Generator.MaxRecordCount)
	}

	// Auto-derive BaseURL from Port if not explicitly set.
	// Use HTTPS scheme if TLS is configured.
	if cfg.BaseURL == "" {
		scheme := "http"
		if cfg.TLSCertPath != "" {
			scheme = "https"
		}
		cfg.BaseURL = (&url.URL{
			Scheme: scheme,
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}
