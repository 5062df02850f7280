// Package storage lists pending items in a source namespace and moves them
// into category-named destination namespaces. Azure Blob Storage and the
// local filesystem are supported.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/JaimeStill/filer/pkg/lifecycle"
)

// System manages item listing and relocation for a single storage backend.
type System interface {
	// Start registers startup hooks that prepare the backend.
	Start(lc *lifecycle.Coordinator) error
	// List returns the identifiers of items directly inside the source
	// namespace, in backend enumeration order. Items in nested namespaces
	// are not listed.
	List(ctx context.Context) ([]string, error)
	// Move relocates item into <destination>/<category>/<item> and returns
	// the destination key. Destination namespaces are created on demand.
	Move(ctx context.Context, item, category string) (string, error)
}

// New creates a storage system for the configured backend.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendAzure:
		return newAzure(cfg, logger)
	case BackendLocal:
		return newLocal(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// DestinationKey returns the key an item is moved to under the given
// destination prefix and category.
func DestinationKey(destination, category, item string) string {
	return path.Join(destination, category, item)
}

func sourceKey(source, item string) string {
	return path.Join(source, item)
}

// moveKeys validates a move and returns its source and destination keys.
// A move whose destination resolves to its source is rejected.
func moveKeys(source, destination, item, category string) (string, string, error) {
	if err := validateKey(item); err != nil {
		return "", "", fmt.Errorf("item: %w", err)
	}
	if err := validateKey(category); err != nil {
		return "", "", fmt.Errorf("category: %w", err)
	}

	src := sourceKey(source, item)
	dst := DestinationKey(destination, category, item)
	if src == dst {
		return "", "", fmt.Errorf("%w: %s", ErrSameLocation, dst)
	}
	return src, dst, nil
}

// validateKey rejects blank keys and keys with empty, "." or ".." segments.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

func validatePrefix(prefix string) error {
	for seg := range strings.SplitSeq(prefix, "/") {
		if seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// rootLevel reports whether name sits directly under prefix and returns the
// item identifier relative to it.
func rootLevel(prefix, name string) (string, bool) {
	if prefix != "" {
		p := strings.TrimSuffix(prefix, "/") + "/"
		if !strings.HasPrefix(name, p) {
			return "", false
		}
		name = strings.TrimPrefix(name, p)
	}
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
