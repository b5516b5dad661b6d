package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	defaultModel     = "claude-3-5-sonnet-20241022"
	defaultMaxTokens = 1024
	defaultTimeout   = 120 * time.Second
	apiVersion       = "2023-06-01"
	maxErrorBody     = 2048
)

// AnthropicConfig configures the Messages API client.
type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Anthropic calls the Anthropic Messages API.
type Anthropic struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

var _ Client = (*Anthropic)(nil)

// NewAnthropic returns a client. An empty API key is accepted; every call
// then fails with ErrUpstreamCallFailed.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Anthropic{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete implements Client.
func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrUpstreamCallFailed)
	}

	payload, err := json.Marshal(messagesRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    req.System,
		Messages:  Messages(req.History, req.Text),
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrUpstreamCallFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrUpstreamCallFailed, err)
	}
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstreamCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstreamCallFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrUpstreamCallFailed, err)
	}

	parts := make([]string, 0, len(decoded.Content))
	for _, c := range decoded.Content {
		if c.Type == "" || c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
