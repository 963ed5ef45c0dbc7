package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sitegrade/sitegrade/internal/scanner"
	sgerrors "github.com/sitegrade/sitegrade/internal/shared/errors"
)

// fakeScans returns a canned result, or the validation error for targets
// NormalizeTarget would reject.
type fakeScans struct {
	result *scanner.ScanResult
}

func (f *fakeScans) Scan(ctx context.Context, raw string) (*scanner.ScanResult, error) {
	if _, err := scanner.NormalizeTarget(raw); err != nil {
		return nil, err
	}
	return f.result, nil
}

func (f *fakeScans) ScanWithProgress(ctx context.Context, raw string, fn func(scanner.ScanResult)) (*scanner.ScanResult, error) {
	result, err := f.Scan(ctx, raw)
	if err != nil {
		return nil, err
	}
	fn(*result)
	return result, nil
}

func fakeResult() *scanner.ScanResult {
	score := 100
	return &scanner.ScanResult{
		Target: scanner.Target{Origin: "https://example.com", Hostname: "example.com", Scheme: "https"},
		Status: scanner.ScanStatusComplete,
		Score:  92,
		Grade:  "A",
		Categories: map[string]*scanner.CategoryResult{
			scanner.CategorySSL: {Status: scanner.StatusPass, Score: &score},
		},
	}
}

func newTestServer(cfg Config) *Server {
	if cfg.Scans == nil {
		cfg.Scans = &fakeScans{result: fakeResult()}
	}
	return NewServer(cfg)
}

func postScan(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleScan_Success(t *testing.T) {
	srv := newTestServer(Config{})

	rec := postScan(t, srv, `{"url":"https://example.com"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Success bool   `json:"success"`
		Score   int    `json:"score"`
		Grade   string `json:"grade"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success {
		t.Error("success = false, want true")
	}
	if payload.Score != 92 || payload.Grade != "A" {
		t.Errorf("score/grade = %d/%s, want 92/A", payload.Score, payload.Grade)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}
}

func TestHandleScan_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(Config{})

	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleScan_MissingURL(t *testing.T) {
	for _, body := range []string{`{}`, `{"url":"  "}`} {
		rec := postScan(t, newTestServer(Config{}), body)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		var payload map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if payload["error"] != sgerrors.ErrMissingURL.Error() {
			t.Errorf("error = %q, want %q", payload["error"], sgerrors.ErrMissingURL.Error())
		}
	}
}

func TestHandleScan_MalformedJSON(t *testing.T) {
	rec := postScan(t, newTestServer(Config{}), `{"url":`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleScan_InvalidTarget(t *testing.T) {
	rec := postScan(t, newTestServer(Config{}), `{"url":"ftp://example.com"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleScan_Stream(t *testing.T) {
	srv := newTestServer(Config{})

	req := httptest.NewRequest(http.MethodPost, "/scan?stream=1", strings.NewReader(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	// The full middleware chain sits in front, so this also covers the
	// logging wrapper forwarding Flush to the underlying writer.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %s, want text/event-stream", ct)
	}
	if !rec.Flushed {
		t.Error("expected the stream to be flushed through the middleware chain")
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: scan\ndata: ") {
		t.Errorf("missing SSE framing in body: %q", body)
	}

	data := body[strings.Index(body, "data: ")+len("data: "):]
	data = data[:strings.Index(data, "\n")]
	var snap scanner.ScanResult
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		t.Fatalf("decode SSE payload: %v", err)
	}
	if snap.Status != scanner.ScanStatusComplete {
		t.Errorf("streamed status = %s, want %s", snap.Status, scanner.ScanStatusComplete)
	}
}

func TestHandleScan_StreamInvalidTarget(t *testing.T) {
	srv := newTestServer(Config{})

	req := httptest.NewRequest(http.MethodPost, "/scan?stream=1", strings.NewReader(`{"url":"ftp://example.com"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	// Invalid targets must get the documented 400 before any SSE headers
	// are committed.
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}
	if strings.Contains(rec.Body.String(), "event:") {
		t.Errorf("unexpected SSE framing in error response: %q", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload["status"] != "ok" {
		t.Errorf("status field = %q, want ok", payload["status"])
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(Config{AuthToken: "secret-token"})

	rec := postScan(t, srv, `{"url":"https://example.com"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("X-Auth-Token", "wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("X-Auth-Token", "secret-token")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rec.Code)
	}

	// Health stays open even with auth enabled.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health with auth enabled: status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(Config{RateLimit: 1, RateBurst: 2})

	var got429 bool
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.7:54321"
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			got429 = true
		}
	}
	if !got429 {
		t.Error("expected at least one 429 after exhausting the burst")
	}

	// A different client IP gets its own budget.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.8:54321"
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("fresh client: status = %d, want 200", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	t.Run("wildcard by default", func(t *testing.T) {
		srv := newTestServer(Config{})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})

	t.Run("whitelist", func(t *testing.T) {
		srv := newTestServer(Config{CORSOrigins: []string{"https://dashboard.example.com"}})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example.com" {
			t.Errorf("allowed origin: Allow-Origin = %q", got)
		}

		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.net")
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("disallowed origin: Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		srv := newTestServer(Config{})
		req := httptest.NewRequest(http.MethodOptions, "/scan", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", rec.Code)
		}
	})
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "test-id-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-id-123" {
		t.Errorf("X-Request-ID = %q, want test-id-123", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID")
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(`{"url":"https://example.com","pad":"`)
	buf.WriteString(strings.Repeat("x", 70000))
	buf.WriteString(`"}`)

	rec := postScan(t, newTestServer(Config{}), buf.String())

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
