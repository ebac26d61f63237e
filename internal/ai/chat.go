// README: OpenAI-compatible chat-completions gateway (bearer-authenticated proxy).
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const chatCompletionsPath = "/v1/chat/completions"

// maxResponseBytes bounds how much of a completion body is read.
const maxResponseBytes = 4 << 20

// ChatConfig is fixed at construction; callers never override it per request.
type ChatConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	// Timeout caps one round trip. Zero means no client-side limit.
	Timeout time.Duration
}

// ChatGateway implements Gateway against a /v1/chat/completions endpoint.
type ChatGateway struct {
	cfg      ChatConfig
	endpoint string
	client   *http.Client
}

// NewChatGateway builds a gateway with an instrumented HTTP client.
func NewChatGateway(cfg ChatConfig) *ChatGateway {
	return &ChatGateway{
		cfg:      cfg,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + chatCompletionsPath,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete posts the system and user messages and returns the first choice's text.
func (g *ChatGateway) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat gateway: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("chat gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &GatewayError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", errorForStatus(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &GatewayError{StatusCode: resp.StatusCode, Status: "read body", Err: err}
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		// A 2xx body we cannot read carries no usable text.
		return "", fmt.Errorf("%w: undecodable body: %v", ErrEmptyResponse, err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrEmptyResponse)
	}
	content := cr.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: blank content", ErrEmptyResponse)
	}
	return content, nil
}
