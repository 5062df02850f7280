package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/filer/internal/config"
	"github.com/JaimeStill/filer/internal/infrastructure"
)

func TestNewLoggerFormats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{
			format: config.LogFormatJSON,
			check: func(t *testing.T, out string) {
				var rec map[string]any
				if err := json.Unmarshal([]byte(out), &rec); err != nil {
					t.Fatalf("not JSON: %v: %q", err, out)
				}
				if rec["msg"] != "moved item" || rec["item"] != "a.png" {
					t.Errorf("record = %v", rec)
				}
			},
		},
		{
			format: config.LogFormatText,
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, `msg="moved item"`) || !strings.Contains(out, "item=a.png") {
					t.Errorf("text output = %q", out)
				}
			},
		},
		{
			format: config.LogFormatTint,
			check: func(t *testing.T, out string) {
				if strings.Contains(out, "\x1b[") {
					t.Errorf("tint wrote colour to a non-terminal: %q", out)
				}
				if !strings.Contains(out, "moved item") {
					t.Errorf("tint output = %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger, closer, err := infrastructure.NewLogger(&config.LoggingConfig{Level: "info", Format: tt.format}, &buf)
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			defer closer.Close()

			logger.Info("moved item", "item", "a.png")
			tt.check(t, buf.String())
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := infrastructure.NewLogger(&config.LoggingConfig{Level: "warn", Format: config.LogFormatText}, &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filer.log")

	var buf bytes.Buffer
	logger, closer, err := infrastructure.NewLogger(&config.LoggingConfig{
		Level:  "info",
		Format: config.LogFormatJSON,
		File:   path,
	}, &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("category decided", "category", "Images")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "category=Images") {
		t.Errorf("log file = %q", data)
	}
	if !strings.Contains(buf.String(), `"category":"Images"`) {
		t.Errorf("console = %q", buf.String())
	}
}
