package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/JaimeStill/filer/pkg/lifecycle"
)

type local struct {
	fs          afero.Fs
	root        string
	source      string
	destination string
	logger      *slog.Logger
}

func newLocal(cfg *Config, logger *slog.Logger) *local {
	return NewLocal(afero.NewOsFs(), cfg, logger).(*local)
}

// NewLocal creates a filesystem-backed storage system on the given afero
// filesystem. Source and Destination are resolved relative to Root.
func NewLocal(fsys afero.Fs, cfg *Config, logger *slog.Logger) System {
	return &local{
		fs:          fsys,
		root:        cfg.Root,
		source:      cfg.Source,
		destination: cfg.Destination,
		logger:      logger.With("system", "storage", "backend", BackendLocal),
	}
}

func (l *local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting storage system")

	lc.OnStartup(func() error {
		dir := l.path(l.source)
		info, err := l.fs.Stat(dir)
		if err != nil {
			return fmt.Errorf("storage source %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("storage source %s is not a directory", dir)
		}

		l.logger.Info("storage source ready", "dir", dir)
		return nil
	})

	return nil
}

func (l *local) List(ctx context.Context) ([]string, error) {
	dir := l.path(l.source)
	l.logger.Info("listing root-level items", "dir", dir)

	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	items := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Mode().IsRegular() {
			items = append(items, e.Name())
		}
	}

	l.logger.Info("found uncategorized items", "count", len(items))
	return items, nil
}

func (l *local) Move(ctx context.Context, item, category string) (string, error) {
	srcKey, dstKey, err := moveKeys(l.source, l.destination, item, category)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src := l.path(srcKey)
	dst := l.path(dstKey)

	if _, err := l.fs.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return "", fmt.Errorf("stat %s: %w", src, err)
	}

	if err := l.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create destination %s: %w", filepath.Dir(dst), err)
	}

	if err := l.fs.Rename(src, dst); err != nil {
		l.logger.Debug("rename failed, copying", "source", src, "error", err)
		if err := l.copyRemove(src, dst); err != nil {
			return "", err
		}
	}

	l.logger.Info("moved item", "item", item, "destination", dstKey)
	return dstKey, nil
}

// copyRemove handles moves that rename cannot perform, such as across devices.
func (l *local) copyRemove(src, dst string) error {
	in, err := l.fs.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := l.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	in.Close()
	if err := l.fs.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}

func (l *local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}
