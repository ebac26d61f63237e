// README: Itinerary generation service; prompt -> gateway -> normalizer with error collapsing.
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moodtrip/internal/ai"
)

// ErrGenerationFailed is the single caller-facing failure for every kind
// other than gateway auth and rate limiting.
var ErrGenerationFailed = errors.New("itinerary generation failed")

// Failure kinds recorded on GenerationError for diagnostics.
const (
	KindGateway   = "gateway"
	KindEmpty     = "empty_response"
	KindMalformed = "malformed_response"
	KindShape     = "invalid_shape"
)

// GenerationError keeps the internal failure kind for logs while matching
// ErrGenerationFailed under errors.Is.
type GenerationError struct {
	Kind string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrGenerationFailed.Error(), e.Kind)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// User-facing messages. Every collapsed kind shares messageFailed.
const (
	messageAuth        = "Khóa truy cập AI không hợp lệ hoặc đã hết hạn. Vui lòng liên hệ hỗ trợ."
	messageRateLimited = "Hệ thống AI đang quá tải yêu cầu. Vui lòng chờ một lát rồi thử lại."
	messageFailed      = "Không thể tạo lịch trình. AI có thể đang bận. Vui lòng thử lại sau."
)

// UserMessage returns the text shown to end users for a Generate error.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ai.ErrAuth):
		return messageAuth
	case errors.Is(err, ai.ErrRateLimited):
		return messageRateLimited
	default:
		return messageFailed
	}
}

// Service runs the generation pipeline. It holds no per-request state, so
// concurrent calls are independent.
type Service struct {
	gateway ai.Gateway
	logger  *slog.Logger
}

// NewService creates a Service backed by the given gateway.
func NewService(gateway ai.Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gateway: gateway, logger: logger}
}

// Generate builds the prompt, performs exactly one gateway call and normalizes
// the reply. It returns a complete plan or an error, never both.
func (s *Service) Generate(ctx context.Context, req TripRequest) (*Plan, error) {
	prompt := BuildPrompt(req)
	start := time.Now()

	raw, err := s.gateway.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		if errors.Is(err, ai.ErrAuth) || errors.Is(err, ai.ErrRateLimited) {
			s.logger.Warn("itinerary gateway refused request",
				"mode", req.Mode, "err", err, "elapsed", time.Since(start))
			return nil, err
		}
		return nil, s.fail(req, classify(err), err, start)
	}

	plan, err := Normalize(raw)
	if err != nil {
		return nil, s.fail(req, classify(err), err, start)
	}

	s.logger.Info("itinerary generated",
		"mode", req.Mode, "destination", plan.Destination, "days", len(plan.Timeline), "elapsed", time.Since(start))
	return plan, nil
}

func (s *Service) fail(req TripRequest, kind string, err error, start time.Time) error {
	s.logger.Error("itinerary generation failed",
		"mode", req.Mode, "kind", kind, "err", err, "elapsed", time.Since(start))
	return &GenerationError{Kind: kind, Err: err}
}

func classify(err error) string {
	var malformed *MalformedResponseError
	var shape *InvalidShapeError
	switch {
	case errors.Is(err, ai.ErrEmptyResponse):
		return KindEmpty
	case errors.As(err, &malformed):
		return KindMalformed
	case errors.As(err, &shape):
		return KindShape
	default:
		return KindGateway
	}
}
