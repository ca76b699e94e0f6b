// ABOUTME: HTTP client for the local language-model service (Ollama-style API)
// ABOUTME: Single non-streaming chat call; callers handle unavailable/timeout/malformed cases

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ErrUnavailable is returned when the model service can't be reached.
var ErrUnavailable = errors.New("language model service unavailable")

// ErrTimeout is returned when a chat call exceeds its deadline.
var ErrTimeout = errors.New("language model request timed out")

// Message is a single chat message in the model API's wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for POST /api/chat.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// chatResponse is the response body for POST /api/chat.
type chatResponse struct {
	Message Message `json:"message"`
}

// Client talks to a local model service over HTTP.
// The upstream is treated as untrusted and unreliable.
type Client struct {
	host       string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the model service at the given host
// (e.g. "http://localhost:11434"). Deadlines come from the caller's context.
func NewClient(host string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		host:       strings.TrimSuffix(host, "/"),
		httpClient: &http.Client{},
		logger:     logger.With("component", "llm"),
	}
}

// Chat sends the messages to the model and returns the reply content.
// Connection failures map to ErrUnavailable, context deadlines to ErrTimeout,
// and an empty or malformed reply is an error.
func (c *Client) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		c.logger.Warn("model service unreachable", "host", c.host, "error", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	if chatResp.Message.Content == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return chatResp.Message.Content, nil
}
