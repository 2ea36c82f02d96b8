package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gazxxni/blogpipe/internal/config"
	"github.com/gazxxni/blogpipe/internal/llm"
	"github.com/gazxxni/blogpipe/pkg/models"
)

// validConfig returns the loaded configuration after validation.
func validConfig() (config.Config, error) {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseDate reads a --date flag value; empty means today.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	date, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", value)
	}
	return date, nil
}

// newCompleter builds the summarization client. It returns nil, without error, when no
// credential is configured; the weekly post then carries the fallback notice.
func newCompleter(cfg config.LLM) (llm.Completer, error) {
	key := cfg.ResolveAPIKey(os.Getenv)
	if key == "" {
		slog.Warn("no API key configured, summarization disabled", "provider", cfg.Provider)
		return nil, nil
	}

	client, err := llm.NewFromConfig(cfg, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	slog.Debug("summarization enabled", "provider", cfg.Provider, "model", cfg.Model)
	return client, nil
}
