package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gazxxni/blogpipe/internal/config"
)

// Completer sends a single prompt to a text model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds LLM client configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration // 0 keeps the http.Client default (no timeout)
}

// NewFromConfig builds the client for the configured provider.
// apiKey is the resolved credential; see config.LLM.ResolveAPIKey.
func NewFromConfig(cfg config.LLM, apiKey string) (Completer, error) {
	c := Config{
		APIKey:  apiKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}

	switch cfg.Provider {
	case "gemini", "":
		g, err := NewGemini(c)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openai":
		cl, err := New(c)
		if err != nil {
			return nil, err
		}
		return cl, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// postJSON sends payload as a JSON POST and returns the status code with the raw body.
// Non-2xx statuses are not errors here; each provider reads its own error envelope.
func postJSON(ctx context.Context, hc *http.Client, url string, header http.Header, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
