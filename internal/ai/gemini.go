package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiConfig mirrors ChatConfig for the Gemini SDK provider.
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	// Timeout bounds one Complete call; zero leaves it to the caller's context.
	Timeout time.Duration
	// JSONOutput asks the model for application/json responses.
	JSONOutput bool
}

// GeminiGateway implements Gateway using Google's Gemini SDK.
type GeminiGateway struct {
	client   *genai.Client
	cfg      GeminiConfig
	generate func(ctx context.Context, system, user string) (*genai.GenerateContentResponse, error)
}

// NewGeminiGateway initializes a Gemini client.
func NewGeminiGateway(ctx context.Context, cfg GeminiConfig) (*GeminiGateway, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	g := &GeminiGateway{client: client, cfg: cfg}
	g.generate = func(ctx context.Context, system, user string) (*genai.GenerateContentResponse, error) {
		return g.model(system).GenerateContent(ctx, genai.Text(user))
	}
	return g, nil
}

// Close cleans up the Gemini client resources.
func (g *GeminiGateway) Close() error {
	return g.client.Close()
}

func (g *GeminiGateway) model(system string) *genai.GenerativeModel {
	model := g.client.GenerativeModel(g.cfg.Model)
	model.SetTemperature(float32(g.cfg.Temperature))
	if g.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.cfg.MaxTokens))
	}
	if g.cfg.JSONOutput {
		model.ResponseMIMEType = "application/json"
	}
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	return model
}

// Complete sends the user text under the given system instruction.
func (g *GeminiGateway) Complete(ctx context.Context, system, user string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}
	resp, err := g.generate(ctx, system, user)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: no text parts", ErrEmptyResponse)
	}
	return text.String(), nil
}

// classifyGeminiError maps SDK errors (gRPC status or REST API error) onto the
// gateway failure kinds.
func classifyGeminiError(err error) error {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPCode() > 0 {
		mapped := errorForStatus(apiErr.HTTPCode(), apiErr.Reason())
		var gwErr *GatewayError
		if errors.As(mapped, &gwErr) {
			gwErr.Err = err
		}
		return mapped
	}

	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %v", ErrAuth, err)
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return &GatewayError{Err: err}
}
