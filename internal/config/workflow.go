package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/filer/internal/classifier"
	"github.com/JaimeStill/filer/internal/workflow"
)

const (
	EnvWorkflowMaxSteps = "FILER_MAX_STEPS"
	EnvWorkflowFallback = "FILER_FALLBACK_CATEGORY"
)

// DefaultMaxSteps is the step budget applied when none is configured.
const DefaultMaxSteps = 20

// WorkflowConfig holds the step budget and the category table.
type WorkflowConfig struct {
	MaxSteps   int                   `toml:"max_steps"`
	Fallback   string                `toml:"fallback"`
	Categories []classifier.Category `toml:"categories"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. A non-empty overlay
// category table replaces the base table.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.MaxSteps != 0 {
		c.MaxSteps = overlay.MaxSteps
	}
	mergeString(&c.Fallback, overlay.Fallback)
	if len(overlay.Categories) > 0 {
		c.Categories = overlay.Categories
	}
}

// Labels returns the configured category names in table order.
func (c *WorkflowConfig) Labels() []string {
	return classifier.Labels(c.Categories)
}

func (c *WorkflowConfig) loadDefaults() {
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.Fallback == "" {
		c.Fallback = workflow.DefaultFallback
	}
	if len(c.Categories) == 0 {
		c.Categories = classifier.DefaultCategories()
	}
}

func (c *WorkflowConfig) loadEnv() error {
	if v := os.Getenv(EnvWorkflowMaxSteps); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWorkflowMaxSteps, err)
		}
		c.MaxSteps = n
	}
	envString(EnvWorkflowFallback, &c.Fallback)
	return nil
}

func (c *WorkflowConfig) validate() error {
	if c.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be at least 1: %d", c.MaxSteps)
	}
	if strings.TrimSpace(c.Fallback) == "" {
		return fmt.Errorf("fallback required")
	}

	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("category %d: name required", i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category: %s", cat.Name)
		}
		seen[cat.Name] = true
	}
	return nil
}
