package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"moodtrip/internal/infra"
)

type tokenVerifier struct{}

func (tokenVerifier) VerifyIDToken(_ context.Context, token string) (*infra.Identity, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &infra.Identity{UID: "user1"}, nil
}

type quotaGuard struct{ remaining int }

func (quotaGuard) Acquire(context.Context, string) (func(), error) { return func() {}, nil }
func (quotaGuard) Consume(context.Context, string) (time.Time, error) {
	return time.Time{}, nil
}
func (quotaGuard) Refund(context.Context, string, time.Time) error { return nil }
func (g quotaGuard) Remaining(context.Context, string) (int, error) {
	return g.remaining, nil
}

func newTestServer(burst int) http.Handler {
	gin.SetMode(gin.TestMode)
	return NewServer(ServerDeps{
		Usage:          quotaGuard{remaining: 7},
		Verifier:       tokenVerifier{},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		AllowedOrigins: []string{"https://app.moodtrip.test"},
		RateRPS:        0.001,
		RateBurst:      burst,
	}).Routes()
}

func request(h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes_HealthIsPublic(t *testing.T) {
	w := request(newTestServer(5), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRoutes_APIRequiresAuth(t *testing.T) {
	h := newTestServer(5)

	if w := request(h, http.MethodGet, "/api/usage", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	w := request(h, http.MethodGet, "/api/usage", map[string]string{"Authorization": "Bearer good"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"remaining":7`) {
		t.Fatalf("expected quota body, got %d %s", w.Code, w.Body.String())
	}
}

func TestRoutes_RateLimitRunsBeforeAuth(t *testing.T) {
	h := newTestServer(1)

	if w := request(h, http.MethodGet, "/api/usage", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("first request: expected 401, got %d", w.Code)
	}
	w := request(h, http.MethodGet, "/api/usage", map[string]string{"Authorization": "Bearer good"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429 even with a valid token, got %d", w.Code)
	}
	if w := request(h, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health should not be rate limited, got %d", w.Code)
	}
}

func TestRoutes_CORS(t *testing.T) {
	h := newTestServer(5)

	w := request(h, http.MethodOptions, "/api/itineraries/generate", map[string]string{
		"Origin":                         "https://app.moodtrip.test",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Authorization, Content-Type",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.moodtrip.test" {
		t.Fatalf("preflight: unexpected allow-origin %q", got)
	}

	w = request(h, http.MethodGet, "/health", map[string]string{"Origin": "https://app.moodtrip.test"})
	exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
	if !strings.Contains(exposed, "x-request-id") || !strings.Contains(exposed, "x-quota-remaining") {
		t.Fatalf("expected exposed request id and quota headers, got %q", exposed)
	}

	w = request(h, http.MethodGet, "/health", map[string]string{"Origin": "https://elsewhere.test"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin should not be allowed, got %q", got)
	}
}
