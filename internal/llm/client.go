package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// Client talks to any OpenAI-compatible /v1/chat/completions endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoint   string
}

// New creates a chat completions client. Key and model are required.
func New(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	base := config.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}

	return &Client{
		httpClient: newHTTPClient(config.Timeout),
		apiKey:     config.APIKey,
		model:      config.Model,
		endpoint:   strings.TrimSuffix(base, "/") + "/v1/chat/completions",
	}, nil
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends prompt as one user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload := completionRequest{
		Model:    c.model,
		Messages: []message{{Role: "user", Content: prompt}},
	}

	header := http.Header{"Authorization": {"Bearer " + c.apiKey}}
	status, body, err := postJSON(ctx, c.httpClient, c.endpoint, header, payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", status, string(body))
	}

	var cr completionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("API error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("no response returned")
	}

	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
