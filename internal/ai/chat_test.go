package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestGateway(t *testing.T, h http.HandlerFunc) *ChatGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewChatGateway(ChatConfig{
		BaseURL:     srv.URL + "/",
		APIKey:      "test-key",
		Model:       "gemini-2.5-flash",
		MaxTokens:   8192,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
}

type capturedRequest struct {
	auth, path string
	body       chatRequest
}

func TestComplete_SendsFixedRequestShape(t *testing.T) {
	captured := make(chan capturedRequest, 1)
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		c := capturedRequest{auth: r.Header.Get("Authorization"), path: r.URL.Path}
		if err := json.NewDecoder(r.Body).Decode(&c.body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		captured <- c
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	})

	text, err := gw.Complete(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != `{"ok":true}` {
		t.Fatalf("unexpected text %q", text)
	}
	c := <-captured
	if c.auth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", c.auth)
	}
	if c.path != chatCompletionsPath {
		t.Errorf("expected path %s, got %s", chatCompletionsPath, c.path)
	}
	got := c.body
	if got.Model != "gemini-2.5-flash" || got.MaxTokens != 8192 || got.Temperature != 0.7 {
		t.Errorf("unexpected request config: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != "sys" ||
		got.Messages[1].Role != "user" || got.Messages[1].Content != "usr" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestComplete_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, func(err error) bool { return errors.Is(err, ErrAuth) }},
		{"forbidden", http.StatusForbidden, func(err error) bool { return errors.Is(err, ErrAuth) }},
		{"too many requests", http.StatusTooManyRequests, func(err error) bool { return errors.Is(err, ErrRateLimited) }},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var gw *GatewayError
			return errors.As(err, &gw) && gw.StatusCode == http.StatusInternalServerError
		}},
		{"bad gateway", http.StatusBadGateway, func(err error) bool {
			var gw *GatewayError
			return errors.As(err, &gw) && gw.StatusCode == http.StatusBadGateway
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			})
			_, err := gw.Complete(context.Background(), "s", "u")
			if err == nil || !tc.check(err) {
				t.Fatalf("status %d: unexpected error %v", tc.status, err)
			}
		})
	}
}

func TestComplete_EmptyResponses(t *testing.T) {
	bodies := map[string]string{
		"no choices":    `{"choices":[]}`,
		"blank content": `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`,
		"not json":      `<html>proxy page</html>`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := gw.Complete(context.Background(), "s", "u")
			if !errors.Is(err, ErrEmptyResponse) {
				t.Fatalf("expected ErrEmptyResponse, got %v", err)
			}
		})
	}
}

func TestComplete_TransportFailureIsGatewayError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := gw.Complete(ctx, "s", "u")
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if gwErr.StatusCode != 0 {
		t.Errorf("expected status 0 for transport failure, got %d", gwErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "request failed") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestComplete_MakesOneRoundTrip(t *testing.T) {
	var calls atomic.Int32
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})
	_, _ = gw.Complete(context.Background(), "s", "u")
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected exactly one request, got %d", n)
	}
}
