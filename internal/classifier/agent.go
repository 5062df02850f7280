package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Completer sends a prompt to a text-completion service and returns the
// response text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type agentCompleter struct {
	agent agent.Agent
}

func (c *agentCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.agent.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

type completion struct {
	completer Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewAgent creates a classifier backed by a go-agents chat agent.
// A positive timeout bounds each classification call.
func NewAgent(cfg *gaconfig.AgentConfig, timeout time.Duration, logger *slog.Logger) (Classifier, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	return NewCompletion(&agentCompleter{agent: a}, timeout, logger), nil
}

// NewCompletion creates a classifier that prompts the given Completer.
func NewCompletion(c Completer, timeout time.Duration, logger *slog.Logger) Classifier {
	return &completion{
		completer: c,
		timeout:   timeout,
		logger:    logger.With("system", "classifier", "mode", ModeAgent),
	}
}

func (c *completion) Classify(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.InfoContext(ctx, "categorizing item", "item", req.Item, "extension", req.Signal)

	content, err := c.completer.Complete(ctx, Prompt(req))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCompletion, req.Item, err)
	}

	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyResponse, req.Item)
	}

	c.logger.InfoContext(ctx, "category decided", "item", req.Item, "category", strings.TrimSpace(content))
	return content, nil
}
