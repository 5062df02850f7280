package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/JaimeStill/filer/internal/config"
)

// NewLogger builds the process logger. Console output goes to w in the
// configured format; tint colours are disabled when w is not a terminal.
// When cfg.File is set every record is also appended to that file as text,
// and the returned closer releases it. The closer is never nil.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) (*slog.Logger, io.Closer, error) {
	level := cfg.SlogLevel()
	console := consoleHandler(cfg.Format, level, w)

	if cfg.File == "" {
		return slog.New(console), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	file := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(slog.NewMultiHandler(console, file)), f, nil
}

func consoleHandler(format string, level slog.Level, w io.Writer) slog.Handler {
	switch format {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case config.LogFormatText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(w),
		})
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
