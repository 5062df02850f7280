// Package infrastructure assembles the systems a filer run depends on:
// logging, lifecycle coordination, storage, the classifier, and the optional
// journal database and metrics listener.
package infrastructure

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/filer/internal/classifier"
	"github.com/JaimeStill/filer/internal/config"
	"github.com/JaimeStill/filer/internal/journal"
	"github.com/JaimeStill/filer/internal/metrics"
	"github.com/JaimeStill/filer/internal/workflow"
	"github.com/JaimeStill/filer/pkg/database"
	"github.com/JaimeStill/filer/pkg/lifecycle"
	"github.com/JaimeStill/filer/pkg/storage"
)

// Infrastructure holds the systems required by a run. Database and Journal
// are nil unless the journal is enabled.
type Infrastructure struct {
	Config     *config.Config
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Storage    storage.System
	Classifier classifier.Classifier
	Database   database.System
	Journal    journal.System
	Metrics    *metrics.Metrics

	server    *metrics.Server
	logCloser io.Closer
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger, closer, err := NewLogger(&cfg.Logging, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}

	infra := &Infrastructure{
		Config:    cfg,
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Metrics:   metrics.New(cfg.Workflow.Labels()),
		logCloser: closer,
	}

	if err := infra.init(); err != nil {
		closer.Close()
		return nil, err
	}

	return infra, nil
}

func (i *Infrastructure) init() error {
	cfg := i.Config

	store, err := storage.New(&cfg.Storage, i.Logger)
	if err != nil {
		return fmt.Errorf("storage init failed: %w", err)
	}
	i.Storage = store

	c, err := newClassifier(cfg, i.Logger)
	if err != nil {
		return fmt.Errorf("classifier init failed: %w", err)
	}
	i.Classifier = c

	if cfg.Journal.Enabled {
		db, err := database.New(&cfg.Database, i.Logger)
		if err != nil {
			return fmt.Errorf("database init failed: %w", err)
		}
		i.Database = db
		i.Journal = journal.New(db.Connection(), i.Logger, cfg.Journal.Pagination)
	}

	if cfg.Metrics.Addr != "" {
		i.server = metrics.NewServer(cfg.Metrics.Addr, i.Metrics, cfg.ShutdownTimeoutDuration(), i.Logger)
	}

	return nil
}

func newClassifier(cfg *config.Config, logger *slog.Logger) (classifier.Classifier, error) {
	switch cfg.Classifier.Mode {
	case classifier.ModeExtension:
		return classifier.NewExtension(cfg.Workflow.Categories, cfg.Workflow.Fallback, logger), nil
	case classifier.ModeAgent:
		return classifier.NewAgent(cfg.Classifier.Agent(), cfg.Classifier.TimeoutDuration(), logger)
	default:
		return nil, fmt.Errorf("unsupported classifier mode %q", cfg.Classifier.Mode)
	}
}

// Start registers every system with the lifecycle coordinator and blocks
// until all startup hooks complete. Any hook failure is returned.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.server != nil {
		if err := i.server.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("metrics start failed: %w", err)
		}
	}
	return i.Lifecycle.WaitForStartup()
}

// Runtime returns the workflow runtime wired to these systems. Metrics always
// observe the run; the journal does when enabled.
func (i *Infrastructure) Runtime() *workflow.Runtime {
	recorders := workflow.Recorders{i.Metrics}
	if i.Journal != nil {
		recorders = append(recorders, i.Journal)
	}

	return &workflow.Runtime{
		Storage:    i.Storage,
		Classifier: i.Classifier,
		Categories: i.Config.Workflow.Categories,
		Fallback:   i.Config.Workflow.Fallback,
		Recorder:   recorders,
		Logger:     i.Logger,
	}
}

// Shutdown stops every system within the configured timeout and releases
// the log file.
func (i *Infrastructure) Shutdown() error {
	err := i.Lifecycle.Shutdown(i.Config.ShutdownTimeoutDuration())
	return errors.Join(err, i.logCloser.Close())
}
