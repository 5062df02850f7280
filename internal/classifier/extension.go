package classifier

import (
	"context"
	"log/slog"
	"strings"
)

// Classifier modes.
const (
	ModeAgent     = "agent"
	ModeExtension = "extension"
)

type extension struct {
	table    map[string]string
	fallback string
	logger   *slog.Logger
}

// NewExtension creates a classifier that maps the request signal through the
// category table. Extensions claimed by more than one category resolve to the
// first. Unmapped signals return fallback.
func NewExtension(categories []Category, fallback string, logger *slog.Logger) Classifier {
	table := make(map[string]string)
	for _, c := range categories {
		for _, ext := range c.Extensions {
			key := strings.ToLower(strings.TrimPrefix(ext, "."))
			if _, ok := table[key]; !ok {
				table[key] = c.Name
			}
		}
	}

	return &extension{
		table:    table,
		fallback: fallback,
		logger:   logger.With("system", "classifier", "mode", ModeExtension),
	}
}

func (e *extension) Classify(ctx context.Context, req Request) (string, error) {
	label, ok := e.table[req.Signal]
	if !ok {
		label = e.fallback
	}

	e.logger.DebugContext(ctx, "category decided", "item", req.Item, "category", label, "mapped", ok)
	return label, nil
}
