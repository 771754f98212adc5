package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mindwell/internal/auth"
	"mindwell/internal/handlers"
	"mindwell/internal/middleware"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	authService, err := auth.NewService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	api := &handlers.API{Auth: authService}
	limiter := middleware.NewRateLimiter(100, time.Minute)
	return New(api, authService, limiter, "http://localhost:5173", nil)
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	rt := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/journal",
		"/api/v1/moods",
		"/api/v1/chat/history",
		"/api/v1/reports/weekly",
		"/api/v1/llm/providers",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: got %d, want 401", path, rec.Code)
		}
	}
}

func TestLoginRouteSkipsAuth(t *testing.T) {
	rt := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400 from login handler", rec.Code)
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	rt := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/journal", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got %d, want 204", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "http://localhost:5173" {
		t.Fatalf("got origin %q", origin)
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	rt := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health-nope", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}
