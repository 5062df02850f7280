package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/filer/internal/classifier"
	"github.com/JaimeStill/filer/internal/workflow"
)

var errBackend = errors.New("backend unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type move struct {
	item     string
	category string
}

// memStorage is an in-memory Storage that records every call.
type memStorage struct {
	items     []string
	listErr   error
	listPanic bool
	failMove  map[string]bool
	panicMove map[string]bool
	listCalls int
	moves     []move
	moved     map[string]string
}

func newMemStorage(items ...string) *memStorage {
	return &memStorage{
		items:    items,
		failMove:  make(map[string]bool),
		panicMove: make(map[string]bool),
		moved:     make(map[string]string),
	}
}

func (m *memStorage) List(ctx context.Context) ([]string, error) {
	m.listCalls++
	if m.listPanic {
		panic("listing exploded")
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.items, nil
}

func (m *memStorage) Move(ctx context.Context, item, category string) (string, error) {
	m.moves = append(m.moves, move{item: item, category: category})
	if m.panicMove[item] {
		panic("move exploded")
	}
	if m.failMove[item] {
		return "", errBackend
	}
	dst := path.Join(category, item)
	m.moved[item] = dst
	return dst, nil
}

// panicHandler is a slog.Handler that panics on records with the given
// message and discards everything else.
type panicHandler struct {
	msg string
}

func (h panicHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h panicHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Message == h.msg {
		panic("log sink exploded")
	}
	return nil
}

func (h panicHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h panicHandler) WithGroup(string) slog.Handler      { return h }

type classifierFunc func(ctx context.Context, req classifier.Request) (string, error)

func (f classifierFunc) Classify(ctx context.Context, req classifier.Request) (string, error) {
	return f(ctx, req)
}

func labels(m map[string]string) classifier.Classifier {
	return classifierFunc(func(ctx context.Context, req classifier.Request) (string, error) {
		return m[req.Item], nil
	})
}

func failing() classifier.Classifier {
	return classifierFunc(func(ctx context.Context, req classifier.Request) (string, error) {
		return "", errBackend
	})
}

func newRuntime(store workflow.Storage, c classifier.Classifier) *workflow.Runtime {
	return &workflow.Runtime{
		Storage:    store,
		Classifier: c,
		Categories: classifier.DefaultCategories(),
		Fallback:   "Others",
		Logger:     discardLogger(),
	}
}

// eventRecorder captures recorder events.
type eventRecorder struct {
	mu       sync.Mutex
	started  []uuid.UUID
	outcomes []workflow.Outcome
	cycles   []int
	halted   []*workflow.Result
	err      error
}

func (e *eventRecorder) RunStarted(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, runID)
	return e.err
}

func (e *eventRecorder) ItemProcessed(ctx context.Context, runID uuid.UUID, o workflow.Outcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outcomes = append(e.outcomes, o)
	return e.err
}

func (e *eventRecorder) CycleCompleted(ctx context.Context, runID uuid.UUID, step int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cycles = append(e.cycles, step)
	return e.err
}

func (e *eventRecorder) RunHalted(ctx context.Context, res *workflow.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.halted = append(e.halted, res)
	return e.err
}
