package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/filer/internal/classifier"
)

// DefaultFallback is the category used when classification fails.
const DefaultFallback = "Others"

// Storage is the listing and move capability the workflow consumes.
// storage.System satisfies it.
type Storage interface {
	List(ctx context.Context) ([]string, error)
	Move(ctx context.Context, item, category string) (string, error)
}

// Runtime bundles the collaborators that steps require. It is constructed by
// higher-level composition code; nothing is resolved from global state.
type Runtime struct {
	Storage    Storage
	Classifier classifier.Classifier
	Categories []classifier.Category
	Fallback   string
	Recorder   Recorder
	Logger     *slog.Logger
}

func (rt *Runtime) validate() error {
	if rt == nil {
		return fmt.Errorf("%w: nil runtime", ErrInvalidRuntime)
	}
	if rt.Storage == nil {
		return fmt.Errorf("%w: storage required", ErrInvalidRuntime)
	}
	if rt.Classifier == nil {
		return fmt.Errorf("%w: classifier required", ErrInvalidRuntime)
	}
	return nil
}

func (rt *Runtime) fallback() string {
	if rt.Fallback == "" {
		return DefaultFallback
	}
	return rt.Fallback
}

func (rt *Runtime) logger() *slog.Logger {
	if rt.Logger == nil {
		return slog.Default()
	}
	return rt.Logger
}

func (rt *Runtime) recorder() Recorder {
	if rt.Recorder == nil {
		return Recorders(nil)
	}
	return rt.Recorder
}
