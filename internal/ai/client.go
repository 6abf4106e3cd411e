// Package ai wraps an OpenAI-compatible chat completion endpoint behind
// the two pipeline stages that use it: query refinement and answer
// synthesis. Both stages degrade gracefully when the endpoint is missing
// or failing.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrNoCompletion indicates a well-formed response that carried no usable
// generated text.
var ErrNoCompletion = errors.New("no completion returned")

// Client issues chat completion requests against an OpenAI-compatible API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// ClientConfig configures the completion client.
type ClientConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
}

// NewClient creates a completion client using the API key found in the
// environment variable named by the config. A missing key is an error;
// callers treat it as "AI disabled" and construct no client.
func NewClient(cfg ClientConfig) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues one chat completion with a system instruction and user
// content and returns the trimmed generated text. The request is bounded
// by the context deadline and, when maxTokens > 0, by an output token cap.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: maxTokens,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion failed: %s", resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrNoCompletion
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", ErrNoCompletion
	}
	return content, nil
}
