package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/get", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/get?url=https%3A%2F%2Fapi.proapis.com%2Fv1%3Fapi_key%3Dsecret", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	out := buf.String()
	if !strings.Contains(out, "target_host=api.proapis.com") {
		t.Errorf("log = %q, want target_host", out)
	}
	if strings.Contains(out, "secret") {
		t.Errorf("log leaks target query: %q", out)
	}
	if !strings.Contains(out, "status=200") {
		t.Errorf("log = %q, want status=200", out)
	}
}

func TestTargetHost(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://api.brightdata.com/x", "api.brightdata.com"},
		{"https://example.com:8443/x", "example.com"},
		{"", ""},
		{"://bad", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := targetHost(tt.raw); got != tt.want {
				t.Errorf("targetHost(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
