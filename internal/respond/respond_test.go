package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/recipebox/recipebox-go/internal/apperr"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return body
}

func TestErrorOperational(t *testing.T) {
	rs := New(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/recipes/1", nil)

	rs.Error(rec, req, fmt.Errorf("lookup: %w", apperr.NotFound("recipe not found")))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := decodeBody(t, rec)
	if body["error"] != "recipe not found" {
		t.Errorf("error = %q, want %q", body["error"], "recipe not found")
	}
}

func TestErrorInternalHidesDetail(t *testing.T) {
	var logs bytes.Buffer
	rs := New(slog.New(slog.NewTextHandler(&logs, nil)), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)

	rs.Error(rec, req, errors.New("sql: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	body := decodeBody(t, rec)
	if body["error"] != "internal server error" {
		t.Errorf("error = %q", body["error"])
	}
	if _, ok := body["detail"]; ok {
		t.Error("detail must not be present outside development")
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Error("internal error should be logged server-side")
	}
}

func TestErrorInternalDevelopmentDetail(t *testing.T) {
	rs := New(slog.New(slog.NewTextHandler(io.Discard, nil)), true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rs.Error(rec, req, errors.New("nil pointer"))

	body := decodeBody(t, rec)
	if body["detail"] != "nil pointer" {
		t.Errorf("detail = %q, want %q", body["detail"], "nil pointer")
	}
}

func TestErrorLogsRequestID(t *testing.T) {
	var logs bytes.Buffer
	rs := New(slog.New(slog.NewJSONHandler(&logs, nil)), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	req = req.WithContext(WithRequestID(req.Context(), "req-42"))

	rs.Error(rec, req, errors.New("disk full"))

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line %q: %v", logs.String(), err)
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want %q", entry["request_id"], "req-42")
	}
}

func TestRequestIDEmptyContext(t *testing.T) {
	if id := RequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Errorf("RequestID() = %q, want empty", id)
	}
}
