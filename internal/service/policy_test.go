package service

import (
	"net/http"
	"testing"

	"cors-proxy-go/internal/credentials"
)

func TestClassifyUpstream(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Rule
	}{
		{"brightdata host", "https://api.brightdata.com/datasets/v3/trigger", RuleBrightData},
		{"proapis host", "https://api.proapis.com/v1/data", RuleProAPIs},
		{"plain host", "https://example.com/echo", RuleNone},
		{"empty", "", RuleNone},
		{"brightdata wins over proapis", "https://api.proapis.com/x?next=api.brightdata.com", RuleBrightData},
		{"substring in path", "https://evil.example/api.proapis.com/steal", RuleProAPIs},
		{"substring in query", "https://evil.example/?h=api.brightdata.com", RuleBrightData},
		{"lookalike subdomain", "https://api.brightdata.com.evil.example/", RuleBrightData},
		{"different subdomain", "https://www.brightdata.com/", RuleNone},
		{"case sensitive", "https://API.PROAPIS.COM/v1", RuleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyUpstream(tt.url); got != tt.want {
				t.Errorf("ClassifyUpstream(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestRule_String(t *testing.T) {
	tests := map[Rule]string{
		RuleNone:       "none",
		RuleBrightData: "brightdata",
		RuleProAPIs:    "proapis",
	}
	for r, want := range tests {
		if got := r.String(); got != want {
			t.Errorf("Rule(%d).String() = %q, want %q", int(r), got, want)
		}
	}
}

func TestTransformHeaders_StripsCallerIdentity(t *testing.T) {
	src := http.Header{
		"Host":            {"proxy.local:3002"},
		"origin":          {"https://app.example"},
		"REFERER":         {"https://app.example/page"},
		"Connection":      {"keep-alive"},
		"Accept-Encoding": {"gzip, br"},
		"Accept":          {"application/json"},
		"X-Custom":        {"a", "b"},
		"Authorization":   {"Bearer caller-token"},
	}

	dst := transformHeaders(src, RuleNone, credentials.Credentials{})

	tests := []struct {
		name    string
		key     string
		wantLen int
	}{
		{"Host stripped", "Host", 0},
		{"Origin stripped regardless of case", "Origin", 0},
		{"Referer stripped regardless of case", "Referer", 0},
		{"Connection stripped (hop-by-hop)", "Connection", 0},
		{"Accept-Encoding left to transport", "Accept-Encoding", 0},
		{"Accept forwarded", "Accept", 1},
		{"multi-value kept", "X-Custom", 2},
		{"caller Authorization passes through", "Authorization", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(dst.Values(tt.key)); got != tt.wantLen {
				t.Errorf("header %q: got %d values, want %d", tt.key, got, tt.wantLen)
			}
		})
	}

	for key := range dst {
		switch http.CanonicalHeaderKey(key) {
		case "Host", "Origin", "Referer":
			t.Errorf("header %q leaked to outbound request", key)
		}
	}
	if got := dst.Get("Authorization"); got != "Bearer caller-token" {
		t.Errorf("Authorization = %q, want caller value", got)
	}
}

func TestTransformHeaders_InjectsCredentials(t *testing.T) {
	creds := credentials.Credentials{BrightDataAPIKey: "bd-secret", IScrapperKey: "is-secret"}

	t.Run("brightdata", func(t *testing.T) {
		dst := transformHeaders(http.Header{"Authorization": {"Bearer caller"}}, RuleBrightData, creds)
		if got := dst.Get("Authorization"); got != "Bearer bd-secret" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer bd-secret")
		}
		if len(dst.Values("Authorization")) != 1 {
			t.Errorf("Authorization has %d values, want 1", len(dst.Values("Authorization")))
		}
		if got := dst.Get("X-Api-Key"); got != "" {
			t.Errorf("X-Api-Key = %q, want none", got)
		}
	})

	t.Run("proapis", func(t *testing.T) {
		dst := transformHeaders(http.Header{}, RuleProAPIs, creds)
		if got := dst.Get("X-Api-Key"); got != "is-secret" {
			t.Errorf("X-Api-Key = %q, want %q", got, "is-secret")
		}
		if got := dst.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		dst := transformHeaders(http.Header{}, RuleNone, creds)
		if dst.Get("Authorization") != "" || dst.Get("X-Api-Key") != "" {
			t.Errorf("credential injected for unmatched target: %v", dst)
		}
	})
}

func TestTransformHeaders_DoesNotAliasSource(t *testing.T) {
	src := http.Header{"X-Custom": {"original"}}

	dst := transformHeaders(src, RuleProAPIs, credentials.Credentials{IScrapperKey: "k"})
	dst["X-Custom"][0] = "mutated"
	dst.Set("X-Other", "1")

	if got := src.Get("X-Custom"); got != "original" {
		t.Errorf("source X-Custom = %q after mutating outbound headers", got)
	}
	if src.Get("X-Api-Key") != "" || src.Get("X-Other") != "" {
		t.Errorf("source header map modified: %v", src)
	}
}

func TestTransformHeaders_NilSource(t *testing.T) {
	dst := transformHeaders(nil, RuleBrightData, credentials.Credentials{BrightDataAPIKey: "k"})
	if got := dst.Get("Authorization"); got != "Bearer k" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer k")
	}
}

func TestFilterResponseHeaders(t *testing.T) {
	src := http.Header{
		"Content-Type":                {"application/json"},
		"Content-Length":              {"42"},
		"Cache-Control":               {"no-cache"},
		"Etag":                        {`"abc"`},
		"last-modified":               {"Mon, 01 Jan 2025 00:00:00 GMT"},
		"Set-Cookie":                  {"session=abc"},
		"Strict-Transport-Security":   {"max-age=63072000"},
		"Access-Control-Allow-Origin": {"https://upstream.example"},
		"Transfer-Encoding":           {"chunked"},
		"Server":                      {"nginx"},
	}

	dst := filterResponseHeaders(src)

	tests := []struct {
		name    string
		key     string
		wantLen int
	}{
		{"Content-Type forwarded", "Content-Type", 1},
		{"Content-Length forwarded", "Content-Length", 1},
		{"Cache-Control forwarded", "Cache-Control", 1},
		{"ETag forwarded", "ETag", 1},
		{"Last-Modified forwarded regardless of case", "Last-Modified", 1},
		{"Set-Cookie stripped", "Set-Cookie", 0},
		{"HSTS stripped", "Strict-Transport-Security", 0},
		{"upstream CORS stripped", "Access-Control-Allow-Origin", 0},
		{"Transfer-Encoding stripped", "Transfer-Encoding", 0},
		{"Server stripped", "Server", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(dst.Values(tt.key)); got != tt.wantLen {
				t.Errorf("header %q: got %d values, want %d", tt.key, got, tt.wantLen)
			}
		})
	}
	if len(dst) != 5 {
		t.Errorf("len(dst) = %d, want 5", len(dst))
	}
}
