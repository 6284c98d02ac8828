package anubis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/platform/resilience"
	"github.com/riskibarqy/toto/internal/usecase"
)

func newTestClient(baseURL string, cacheTTL time.Duration, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		IntrospectPath: "/v1/auth/introspect",
		AdminKey:       "admin-secret",
		Timeout:        2 * time.Second,
		CacheTTL:       cacheTTL,
		CircuitBreaker: breaker,
		Logger:         logging.NewNop(),
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()
	raw, err := sonic.Marshal(payload)
	if err != nil {
		t.Errorf("marshal response: %v", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func TestClientVerifyAccessToken_SendsAdminKeyAndParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/auth/introspect" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-admin-key"); got != "admin-secret" {
			t.Errorf("unexpected x-admin-key: %s", got)
		}

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		if err := sonic.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if req["token"] != "token-abc" {
			t.Errorf("unexpected token value: %s", req["token"])
		}

		writeJSON(t, w, http.StatusOK, map[string]any{
			"active":  true,
			"user_id": "user-123",
			"email":   "user@example.com",
			"roles":   []string{"viewer"},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{Enabled: false})
	principal, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if principal.UserID != "user-123" || principal.Email != "user@example.com" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestClientVerifyAccessToken_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		status  int
		payload any
		want    error
	}{
		{name: "blank token", token: "  ", want: usecase.ErrUnauthorized},
		{name: "inactive token", token: "t", status: http.StatusOK, payload: map[string]any{"active": false}, want: usecase.ErrUnauthorized},
		{name: "unauthorized", token: "t", status: http.StatusUnauthorized, payload: map[string]any{"error": "denied"}, want: usecase.ErrUnauthorized},
		{name: "bad admin key", token: "t", status: http.StatusForbidden, payload: map[string]any{"error": "forbidden"}, want: usecase.ErrDependencyUnavailable},
		{name: "provider down", token: "t", status: http.StatusBadGateway, payload: map[string]any{}, want: usecase.ErrDependencyUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tc.status, tc.payload)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{Enabled: false})
			_, err := client.VerifyAccessToken(context.Background(), tc.token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClientVerifyAccessToken_UsesPrincipalCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusOK, map[string]any{"active": true, "user_id": "user-cache"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Minute, resilience.CircuitBreakerConfig{Enabled: false})
	for range 2 {
		principal, err := client.VerifyAccessToken(context.Background(), "cached-token")
		if err != nil {
			t.Fatalf("verify token failed: %v", err)
		}
		if principal.UserID != "user-cache" {
			t.Fatalf("unexpected user id: %s", principal.UserID)
		}
	}

	if calls.Load() != 1 {
		t.Fatalf("expected one introspection call with cache, got %d", calls.Load())
	}
}

func TestClientVerifyAccessToken_BreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	for range 4 {
		_, err := client.VerifyAccessToken(context.Background(), "token")
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected breaker to stop calls after 2 failures, got %d", calls.Load())
	}
}

func TestClientVerifyAccessToken_UnauthorizedDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	for range 3 {
		if _, err := client.VerifyAccessToken(context.Background(), "bad"); !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("expected every call to reach the provider, got %d", calls.Load())
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://auth.example.com/", "v1/auth/introspect", "https://auth.example.com/v1/auth/introspect"},
		{"https://auth.example.com", "", "https://auth.example.com"},
		{"https://auth.example.com", "https://other.example.com/x", "https://other.example.com/x"},
	}
	for _, tc := range tests {
		if got := buildURL(tc.base, tc.path); got != tc.want {
			t.Fatalf("buildURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}
