// Package config loads service configuration from a YAML file, a .env
// file and environment variables, in that order of precedence (later
// sources override earlier ones).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/filedepot/filedepot/internal/errs"
	"github.com/filedepot/filedepot/internal/filestore"
	"github.com/filedepot/filedepot/internal/logger"
)

// DefaultFile is probed when Load is called without an explicit path.
const DefaultFile = "filedepot.yml"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// AllowedOrigins is handed to the CORS middleware. "*" allows any.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// StorageConfig holds the object-storage settings.
type StorageConfig struct {
	Provider string `yaml:"provider"` // disk, minio
	Prefix   string `yaml:"prefix"`
	BaseURL  string `yaml:"base_url"`

	// Disk provider.
	Root string `yaml:"root"`

	// MinIO provider.
	Endpoint          string `yaml:"endpoint"`
	AccessKey         string `yaml:"access_key"`
	SecretKey         string `yaml:"secret_key"`
	Bucket            string `yaml:"bucket"`
	Region            string `yaml:"region"`
	UseSSL            bool   `yaml:"use_ssl"`
	PresignTTLSeconds int    `yaml:"presign_ttl_seconds"`
}

// Config is the root of the service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

// Default returns the configuration used when nothing else is provided:
// an info-level JSON logger and a disk store under the conventional
// public-assets directory, listening on :8080.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Provider: string(filestore.ProviderDisk),
			Prefix:   "uploads",
			Root:     filestore.DefaultRoot,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at
// path (or DefaultFile when path is empty), then FILEDEPOT_* environment
// variables. A missing file is fine; a file that exists but cannot be
// parsed is not.
func Load(path string) (*Config, error) {
	// Best effort: a .env file is a development convenience and its
	// absence is the normal production case.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config file", err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file, run on defaults and environment.
	default:
		return nil, errs.Wrap(errs.ErrKindIOFailed, "failed to read config file", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from FILEDEPOT_* environment variables.
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("FILEDEPOT_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("FILEDEPOT_PORT", c.Server.Port)

	c.Log.Level = getEnv("FILEDEPOT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("FILEDEPOT_LOG_FORMAT", c.Log.Format)

	c.Storage.Provider = getEnv("FILEDEPOT_STORAGE_PROVIDER", c.Storage.Provider)
	c.Storage.Prefix = getEnv("FILEDEPOT_STORAGE_PREFIX", c.Storage.Prefix)
	c.Storage.BaseURL = getEnv("FILEDEPOT_STORAGE_BASE_URL", c.Storage.BaseURL)
	c.Storage.Root = getEnv("FILEDEPOT_STORAGE_ROOT", c.Storage.Root)
	c.Storage.Endpoint = getEnv("FILEDEPOT_STORAGE_ENDPOINT", c.Storage.Endpoint)
	c.Storage.AccessKey = getEnv("FILEDEPOT_STORAGE_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = getEnv("FILEDEPOT_STORAGE_SECRET_KEY", c.Storage.SecretKey)
	c.Storage.Bucket = getEnv("FILEDEPOT_STORAGE_BUCKET", c.Storage.Bucket)
	c.Storage.Region = getEnv("FILEDEPOT_STORAGE_REGION", c.Storage.Region)
	c.Storage.UseSSL = getEnvBool("FILEDEPOT_STORAGE_USE_SSL", c.Storage.UseSSL)
	c.Storage.PresignTTLSeconds = getEnvInt("FILEDEPOT_STORAGE_PRESIGN_TTL_SECONDS", c.Storage.PresignTTLSeconds)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch filestore.Provider(c.Storage.Provider) {
	case filestore.ProviderDisk:
		// Root may be empty, the driver falls back to its default.
	case filestore.ProviderMinIO:
		if c.Storage.Endpoint == "" {
			return errs.New(errs.ErrKindInvalidInput, "minio storage requires an endpoint")
		}
		if c.Storage.Bucket == "" {
			return errs.New(errs.ErrKindInvalidInput, "minio storage requires a bucket")
		}
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown storage provider %q", c.Storage.Provider))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid server port %d", c.Server.Port))
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Filestore converts the storage section into the backend Config.
func (c *Config) Filestore() *filestore.Config {
	return &filestore.Config{
		Provider:   filestore.Provider(c.Storage.Provider),
		Prefix:     c.Storage.Prefix,
		BaseURL:    c.Storage.BaseURL,
		Root:       c.Storage.Root,
		Endpoint:   c.Storage.Endpoint,
		AccessKey:  c.Storage.AccessKey,
		SecretKey:  c.Storage.SecretKey,
		Bucket:     c.Storage.Bucket,
		Region:     c.Storage.Region,
		UseSSL:     c.Storage.UseSSL,
		PresignTTL: time.Duration(c.Storage.PresignTTLSeconds) * time.Second,
	}
}

// Logger converts the log section into the logger Config.
func (c *Config) Logger() *logger.Config {
	return &logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
