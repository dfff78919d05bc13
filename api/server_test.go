package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTextRequest(t *testing.T, text string) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if err := w.WriteField("text", text); err != nil {
		t.Fatalf("Failed to build form: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/parse", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestNew(t *testing.T) {
	server := New(DefaultConfig(), nil)

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
	if server.parser == nil {
		t.Fatal("Expected a default parser to be wired")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
	if cfg.RateLimit != 10 {
		t.Errorf("Expected rate limit 10, got %d", cfg.RateLimit)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := New(DefaultConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
	if response.Checks["database"] != "not_configured" {
		t.Errorf("Expected database 'not_configured', got '%s'", response.Checks["database"])
	}
	if response.Checks["sheets"] != "not_configured" {
		t.Errorf("Expected sheets 'not_configured', got '%s'", response.Checks["sheets"])
	}
}

func TestParseEndpoint_MethodNotAllowed(t *testing.T) {
	server := New(DefaultConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/parse", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestParseEndpoint_NoFile(t *testing.T) {
	server := New(DefaultConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/parse", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestParseEndpoint_TextField(t *testing.T) {
	server := New(DefaultConfig(), nil)

	req := newTextRequest(t, "Pagaste $45,50 en Supermercado XYZ")
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Amount    string `json:"amount"`
		Direction string `json:"direction"`
		Category  string `json:"category"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Amount != "-45.5" {
		t.Errorf("Expected amount '-45.5', got '%s'", response.Amount)
	}
	if response.Direction != "expense" {
		t.Errorf("Expected direction 'expense', got '%s'", response.Direction)
	}
	if response.Category != "groceries" {
		t.Errorf("Expected category 'groceries', got '%s'", response.Category)
	}
}

func TestParseEndpoint_UnparsableReceipt(t *testing.T) {
	server := New(DefaultConfig(), nil)

	raw := "hola, esto no es un recibo"
	req := newTextRequest(t, raw)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", w.Code)
	}

	var response parseFailure
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.RawText != raw {
		t.Errorf("Expected verbatim raw text back, got '%s'", response.RawText)
	}
	if response.Error == "" {
		t.Error("Expected an error message")
	}
}

func TestParseEndpoint_RequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKeys = []string{"secret"}
	server := New(cfg, nil)

	req := newTextRequest(t, "Pagaste $45,50")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without key, got %d", w.Code)
	}

	req = newTextRequest(t, "Pagaste $45,50")
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with key, got %d", w.Code)
	}
}

func TestParseEndpoint_HealthSkipsAuth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKeys = []string{"secret"}
	server := New(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected health to be open, got %d", w.Code)
	}
}

func TestParseEndpoint_RateLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 2
	server := New(cfg, nil)

	for i := 0; i < 2; i++ {
		req := newTextRequest(t, "Pagaste $45,50")
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, w.Code)
		}
	}

	req := newTextRequest(t, "Pagaste $45,50")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	l := newRateLimiter(2, time.Minute)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.allow("client") || !l.allow("client") {
		t.Fatal("Expected first two requests to be admitted")
	}
	if l.allow("client") {
		t.Fatal("Expected third request to be rejected")
	}
	if l.retryAfter("client") <= 0 {
		t.Error("Expected a positive retry hint while limited")
	}

	// advance past the window, the oldest entries expire
	now = now.Add(61 * time.Second)
	if !l.allow("client") {
		t.Error("Expected request to be admitted after the window slid")
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	l := newRateLimiter(1, time.Minute)

	if !l.allow("a") {
		t.Fatal("Expected first client to be admitted")
	}
	if !l.allow("b") {
		t.Error("Expected second client to have its own window")
	}
	if l.allow("a") {
		t.Error("Expected first client to be limited")
	}
}

func TestRateLimiter_DisabledWhenZero(t *testing.T) {
	if l := newRateLimiter(0, time.Minute); l != nil {
		t.Error("Expected nil limiter for zero limit")
	}
}
