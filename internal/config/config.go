package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/filer/pkg/database"
	"github.com/JaimeStill/filer/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvFilerEnv             = "FILER_ENV"
	EnvFilerShutdownTimeout = "FILER_SHUTDOWN_TIMEOUT"
	EnvFilerVersion         = "FILER_VERSION"
	EnvFilerLockFile        = "FILER_LOCK_FILE"
)

var databaseEnv = &database.Env{
	URL:             "FILER_DATABASE_URL",
	Host:            "FILER_DB_HOST",
	Port:            "FILER_DB_PORT",
	Name:            "FILER_DB_NAME",
	User:            "FILER_DB_USER",
	Password:        "FILER_DB_PASSWORD",
	SSLMode:         "FILER_DB_SSL_MODE",
	MaxOpenConns:    "FILER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "FILER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "FILER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "FILER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:          "FILER_STORAGE_BACKEND",
	ContainerName:    "FILER_STORAGE_CONTAINER_NAME",
	ConnectionString: "FILER_STORAGE_CONNECTION_STRING",
	AccountURL:       "FILER_STORAGE_ACCOUNT_URL",
	Root:             "FILER_STORAGE_ROOT",
	Source:           "FILER_STORAGE_SOURCE",
	Destination:      "FILER_STORAGE_DESTINATION",
	MaxListSize:      "FILER_STORAGE_MAX_LIST_SIZE",
	CopyPollInterval: "FILER_STORAGE_COPY_POLL_INTERVAL",
}

// Config is the root configuration for filer.
type Config struct {
	Workflow        WorkflowConfig   `toml:"workflow"`
	Storage         storage.Config   `toml:"storage"`
	Classifier      ClassifierConfig `toml:"classifier"`
	Database        database.Config  `toml:"database"`
	Journal         JournalConfig    `toml:"journal"`
	Logging         LoggingConfig    `toml:"logging"`
	Metrics         MetricsConfig    `toml:"metrics"`
	LockFile        string           `toml:"lock_file"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the FILER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvFilerEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config, applies any environment overlay found next to
// it, and finalizes all values. An empty path means config.toml in the working
// directory, which may be absent: defaults and environment variables then
// provide all configuration. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = BaseConfigFile
	}

	loaded, err := load(path)
	switch {
	case err == nil:
		cfg = loaded
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	if overlay := overlayPath(filepath.Dir(path)); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.LockFile, overlay.LockFile)
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.Version, overlay.Version)
	c.Workflow.Merge(&overlay.Workflow)
	c.Storage.Merge(&overlay.Storage)
	c.Classifier.Merge(&overlay.Classifier)
	c.Database.Merge(&overlay.Database)
	c.Journal.Merge(&overlay.Journal)
	c.Logging.Merge(&overlay.Logging)
	c.Metrics.Merge(&overlay.Metrics)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Classifier.Finalize(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Journal.Finalize(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if c.Journal.Enabled {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Metrics.Finalize(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.LockFile == "" {
		c.LockFile = filepath.Join(os.TempDir(), "filer.lock")
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	envString(EnvFilerLockFile, &c.LockFile)
	envString(EnvFilerShutdownTimeout, &c.ShutdownTimeout)
	envString(EnvFilerVersion, &c.Version)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvFilerEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
