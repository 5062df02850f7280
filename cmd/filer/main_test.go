package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"github.com/JaimeStill/filer/internal/workflow"
)

type cliTestEnv struct {
	root       string
	configPath string
	lockPath   string
}

func setupCLITestEnv(t *testing.T, items ...string) *cliTestEnv {
	t.Helper()

	root := t.TempDir()
	for _, item := range items {
		if err := os.WriteFile(filepath.Join(root, item), []byte(item), 0o644); err != nil {
			t.Fatalf("write %s: %v", item, err)
		}
	}

	base := t.TempDir()
	env := &cliTestEnv{
		root:       root,
		configPath: filepath.Join(base, "config.toml"),
		lockPath:   filepath.Join(base, "filer.lock"),
	}

	cfg := fmt.Sprintf(`lock_file = %q
shutdown_timeout = "5s"

[workflow]
max_steps = 20

[storage]
backend = "local"
root = %q

[classifier]
mode = "extension"

[logging]
level = "error"
format = "text"
`, env.lockPath, root)

	if err := os.WriteFile(env.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliTestEnv) exists(t *testing.T, rel string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(e.root, filepath.FromSlash(rel)))
	return err == nil
}

func TestRunSortsPendingItems(t *testing.T) {
	env := setupCLITestEnv(t, "a.png", "b.txt", "x.bin")

	out, err := env.execute(t, "run", "--json")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	var res workflow.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}

	if res.Reason != workflow.HaltExhausted {
		t.Errorf("Reason = %s, want %s", res.Reason, workflow.HaltExhausted)
	}
	if res.Steps != 3 {
		t.Errorf("Steps = %d, want 3", res.Steps)
	}
	if len(res.Remaining) != 0 {
		t.Errorf("Remaining = %v, want none", res.Remaining)
	}

	for _, rel := range []string{"Images/a.png", "Documents/b.txt", "Others/x.bin"} {
		if !env.exists(t, rel) {
			t.Errorf("%s not found after run", rel)
		}
	}
	for _, item := range []string{"a.png", "b.txt", "x.bin"} {
		if env.exists(t, item) {
			t.Errorf("%s still pending after run", item)
		}
	}
}

func TestRunSummary(t *testing.T) {
	env := setupCLITestEnv(t, "a.png")

	out, err := env.execute(t, "run")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	for _, want := range []string{"a.png", "Images", "halted: exhausted after 1 steps", "moved: 1  failed: 0  remaining: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRunStepBudget(t *testing.T) {
	env := setupCLITestEnv(t, "a.png", "b.txt", "c.pdf")

	out, err := env.execute(t, "run", "--json", "--max-steps", "1")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	var res workflow.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}

	if res.Reason != workflow.HaltBudget {
		t.Errorf("Reason = %s, want %s", res.Reason, workflow.HaltBudget)
	}
	if res.Steps != 1 {
		t.Errorf("Steps = %d, want 1", res.Steps)
	}
	if want := []string{"b.txt", "c.pdf"}; !slices.Equal(res.Remaining, want) {
		t.Errorf("Remaining = %v, want %v", res.Remaining, want)
	}
	if !env.exists(t, "b.txt") || !env.exists(t, "c.pdf") {
		t.Error("unvisited items were moved")
	}
}

func TestRunEmptySource(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.execute(t, "run")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, "halted: exhausted after 0 steps") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestRunFaults(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		prepare func(t *testing.T, env *cliTestEnv)
		wantErr string
	}{
		{
			name:    "invalid step budget",
			args:    []string{"run", "--max-steps", "0"},
			wantErr: "step budget",
		},
		{
			name: "lock held",
			args: []string{"run"},
			prepare: func(t *testing.T, env *cliTestEnv) {
				lock := flock.New(env.lockPath)
				ok, err := lock.TryLock()
				if err != nil || !ok {
					t.Fatalf("TryLock = %v, %v", ok, err)
				}
				t.Cleanup(func() { lock.Unlock() })
			},
			wantErr: "another run holds",
		},
		{
			name: "missing source",
			args: []string{"run"},
			prepare: func(t *testing.T, env *cliTestEnv) {
				if err := os.RemoveAll(env.root); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: "storage source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCLITestEnv(t, "a.png")
			if tt.prepare != nil {
				tt.prepare(t, env)
			}

			_, err := env.execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	env := setupCLITestEnv(t)
	env.configPath = filepath.Join(t.TempDir(), "absent.toml")

	if _, err := env.execute(t, "categories"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestList(t *testing.T) {
	env := setupCLITestEnv(t, "a.png", "notes.TXT")
	if err := os.Mkdir(filepath.Join(env.root, "Images"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := env.execute(t, "list", "--json")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}

	var items []string
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if want := []string{"a.png", "notes.TXT"}; !slices.Equal(items, want) {
		t.Errorf("items = %v, want %v", items, want)
	}

	out, err = env.execute(t, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "notes.TXT") || !strings.Contains(out, "txt") {
		t.Errorf("table missing item or extension:\n%s", out)
	}
	if !env.exists(t, "a.png") {
		t.Error("list moved an item")
	}
}

func TestCategories(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.execute(t, "categories")
	if err != nil {
		t.Fatalf("categories error = %v", err)
	}

	for _, want := range []string{"Images", "png, jpg, jpeg", "Documents", "pdf, docx, txt", "Others", "classifier: extension", "max steps: 20"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryRequiresJournal(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := env.execute(t, "history")
	if !errors.Is(err, errJournalDisabled) {
		t.Errorf("error = %v, want %v", err, errJournalDisabled)
	}
}

func TestVersion(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != "filer 0.1.0" {
		t.Errorf("version = %q, want %q", strings.TrimSpace(out), "filer 0.1.0")
	}
}
