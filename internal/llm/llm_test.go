package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gazxxni/blogpipe/internal/config"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty api key",
			config:  Config{Model: "gpt-4o-mini"},
			wantErr: true,
		},
		{
			name:    "empty model",
			config:  Config{APIKey: "sk-test"},
			wantErr: true,
		},
		{
			name:   "valid config",
			config: Config{APIKey: "sk-test", Model: "gpt-4o-mini"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		provider string
		wantType string
		wantErr  bool
	}{
		{provider: "gemini", wantType: "*llm.Gemini"},
		{provider: "", wantType: "*llm.Gemini"},
		{provider: "openai", wantType: "*llm.Client"},
		{provider: "bard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c, err := NewFromConfig(config.LLM{Provider: tt.provider, Model: "m"}, "key")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			switch c.(type) {
			case *Gemini:
				if tt.wantType != "*llm.Gemini" {
					t.Errorf("got *Gemini, want %s", tt.wantType)
				}
			case *Client:
				if tt.wantType != "*llm.Client" {
					t.Errorf("got *Client, want %s", tt.wantType)
				}
			default:
				t.Errorf("unexpected type %T", c)
			}
		})
	}
}

func TestClient_Complete(t *testing.T) {
	var gotAuth string
	var gotReq completionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  요약 결과  "}}]}`))
	}))
	defer server.Close()

	c, err := New(Config{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "요약 결과" {
		t.Errorf("Complete() = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "gpt-4o-mini" || len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestClient_Complete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "http error", status: http.StatusUnauthorized, body: `bad key`, wantErr: "status 401"},
		{name: "api error", status: http.StatusOK, body: `{"error":{"message":"quota"}}`, wantErr: "quota"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no response"},
		{name: "bad json", status: http.StatusOK, body: `{`, wantErr: "unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := New(Config{APIKey: "k", Model: "m", BaseURL: server.URL})
			_, err := c.Complete(context.Background(), "p")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Complete() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

type generateRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func TestGemini_Complete(t *testing.T) {
	var gotKey, gotPath string
	var gotReq generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		if gotKey == "" {
			gotKey = r.URL.Query().Get("key")
		}
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"### 🔥 "},{"text":"핫이슈"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	g, err := NewGemini(Config{APIKey: "g-key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	got, err := g.Complete(context.Background(), "요약해줘")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "### 🔥 핫이슈" {
		t.Errorf("Complete() = %q", got)
	}
	if gotKey != "g-key" {
		t.Errorf("api key = %q", gotKey)
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 || gotReq.Contents[0].Parts[0].Text != "요약해줘" {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestGemini_Model(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		wantPath string
	}{
		{name: "default", model: "", wantPath: "/v1beta/models/gemini-2.5-flash:generateContent"},
		{name: "configured", model: "gemini-2.5-pro", wantPath: "/v1beta/models/gemini-2.5-pro:generateContent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
			}))
			defer server.Close()

			g, err := NewGemini(Config{APIKey: "k", Model: tt.model, BaseURL: server.URL})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := g.Complete(context.Background(), "p"); err != nil {
				t.Fatalf("Complete() error = %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
		})
	}
}

func TestGemini_Complete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusBadRequest, body: `{"error":{"code":400,"message":"API key not valid"}}`, wantErr: "API key not valid"},
		{name: "non json error", status: http.StatusBadGateway, body: `<html>`},
		{name: "blocked", status: http.StatusOK, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, wantErr: "SAFETY"},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantErr: "no candidates"},
		{name: "empty text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":"  "}]},"finishReason":"MAX_TOKENS"}]}`, wantErr: "MAX_TOKENS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g, err := NewGemini(Config{APIKey: "k", BaseURL: server.URL})
			if err != nil {
				t.Fatal(err)
			}
			_, err = g.Complete(context.Background(), "p")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Complete() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGemini_Complete_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"x"}]}}]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, _ := NewGemini(Config{APIKey: "k", BaseURL: server.URL})
	if _, err := g.Complete(ctx, "p"); err == nil {
		t.Error("Complete() with canceled context should fail")
	}
}
