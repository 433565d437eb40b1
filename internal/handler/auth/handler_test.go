package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/collegebuddy/backend/internal/middleware"
	authservice "github.com/collegebuddy/backend/internal/service/auth"
	"github.com/collegebuddy/backend/internal/store"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	authSvc := authservice.NewService("test-secret", time.Hour)
	handler := New(st, authSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(authSvc, st))
		handler.RegisterProtectedRoutes(protected)
	})
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func registerPayload() map[string]any {
	return map[string]any{
		"username": "alice",
		"email":    "alice@campus.edu",
		"password": "hunter22",
		"name":     "Alice",
		"branch":   "CSE",
		"year":     3,
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	r := setupRouter(t)

	resp := postJSON(t, r, "/auth/register", registerPayload())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var session struct {
		User struct {
			ID       string `json:"id"`
			Password string `json:"password"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a token")
	}
	if session.User.ID == "" {
		t.Fatal("expected a user id")
	}
	if session.User.Password != "" {
		t.Fatal("password hash leaked in response")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	r := setupRouter(t)

	if resp := postJSON(t, r, "/auth/register", registerPayload()); resp.Code != http.StatusOK {
		t.Fatalf("first register failed: %d", resp.Code)
	}

	payload := registerPayload()
	payload["username"] = "alice2"
	if resp := postJSON(t, r, "/auth/register", payload); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestRegisterValidatesPayload(t *testing.T) {
	r := setupRouter(t)

	payload := registerPayload()
	payload["email"] = "not-an-email"
	if resp := postJSON(t, r, "/auth/register", payload); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	r := setupRouter(t)

	if resp := postJSON(t, r, "/auth/register", registerPayload()); resp.Code != http.StatusOK {
		t.Fatalf("register failed: %d", resp.Code)
	}

	resp := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "alice@campus.edu",
		"password": "hunter22",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	meResp := httptest.NewRecorder()
	r.ServeHTTP(meResp, req)
	if meResp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d", meResp.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r := setupRouter(t)

	if resp := postJSON(t, r, "/auth/register", registerPayload()); resp.Code != http.StatusOK {
		t.Fatalf("register failed: %d", resp.Code)
	}

	resp := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "alice@campus.edu",
		"password": "wrong",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}
