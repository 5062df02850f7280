package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported storage backends.
const (
	BackendAzure = "azure"
	BackendLocal = "local"
)

// MaxListCap is the upper bound for a single listing page.
const MaxListCap int32 = 5000

// Config holds storage backend selection and connection parameters.
type Config struct {
	Backend          string `toml:"backend"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Root             string `toml:"root"`
	Source           string `toml:"source"`
	Destination      string `toml:"destination"`
	MaxListSize      int32  `toml:"max_list_size"`
	CopyPollInterval string `toml:"copy_poll_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend          string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Root             string
	Source           string
	Destination      string
	MaxListSize      string
	CopyPollInterval string
}

// CopyPollIntervalDuration returns CopyPollInterval as a time.Duration.
func (c *Config) CopyPollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.CopyPollInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.Source = strings.Trim(c.Source, "/")
	c.Destination = strings.Trim(c.Destination, "/")
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.Source != "" {
		c.Source = overlay.Source
	}
	if overlay.Destination != "" {
		c.Destination = overlay.Destination
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
	if overlay.CopyPollInterval != "" {
		c.CopyPollInterval = overlay.CopyPollInterval
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "files"
	}
	if c.MaxListSize == 0 {
		c.MaxListSize = 500
	}
	if c.MaxListSize > MaxListCap {
		c.MaxListSize = MaxListCap
	}
	if c.CopyPollInterval == "" {
		c.CopyPollInterval = "500ms"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, target *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	set(env.Backend, &c.Backend)
	set(env.ContainerName, &c.ContainerName)
	set(env.ConnectionString, &c.ConnectionString)
	set(env.AccountURL, &c.AccountURL)
	set(env.Root, &c.Root)
	set(env.Source, &c.Source)
	set(env.Destination, &c.Destination)
	set(env.CopyPollInterval, &c.CopyPollInterval)

	if env.MaxListSize != "" {
		if v := os.Getenv(env.MaxListSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.MaxListSize = int32(min(n, int(MaxListCap)))
			}
		}
	}
}

func (c *Config) validate() error {
	if err := validatePrefix(c.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := validatePrefix(c.Destination); err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	switch c.Backend {
	case BackendAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required")
		}
		if _, err := time.ParseDuration(c.CopyPollInterval); err != nil {
			return fmt.Errorf("invalid copy_poll_interval: %w", err)
		}
	case BackendLocal:
		if c.Root == "" {
			return fmt.Errorf("root required")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
