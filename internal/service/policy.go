package service

import (
	"net/http"
	"strings"

	"cors-proxy-go/internal/credentials"
)

// Rule identifies which credential, if any, is injected for a target.
type Rule int

const (
	RuleNone Rule = iota
	RuleBrightData
	RuleProAPIs
)

const (
	brightDataMatch = "api.brightdata.com"
	proAPIsMatch    = "api.proapis.com"
)

func (r Rule) String() string {
	switch r {
	case RuleBrightData:
		return "brightdata"
	case RuleProAPIs:
		return "proapis"
	}
	return "none"
}

// ClassifyUpstream picks the credential rule for targetURL. Matching is a
// substring test against the whole URL, so a match in the path or query also
// counts; Bright Data wins when both substrings appear.
func ClassifyUpstream(targetURL string) Rule {
	switch {
	case strings.Contains(targetURL, brightDataMatch):
		return RuleBrightData
	case strings.Contains(targetURL, proAPIsMatch):
		return RuleProAPIs
	}
	return RuleNone
}

// strippedRequestHeaders never reach the upstream. Host, Origin and Referer
// identify the caller's page; the rest are hop-by-hop. Accept-Encoding is
// left to the transport so relayed bodies arrive decoded.
var strippedRequestHeaders = []string{
	"Host",
	"Origin",
	"Referer",
	"Accept-Encoding",
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// forwardableResponseHeaders are the only upstream headers relayed to the caller.
var forwardableResponseHeaders = map[string]bool{
	"Content-Type":   true,
	"Content-Length": true,
	"Cache-Control":  true,
	"Etag":           true,
	"Last-Modified":  true,
}

// transformHeaders returns a new header map for the outbound request.
// src is never modified.
func transformHeaders(src http.Header, rule Rule, creds credentials.Credentials) http.Header {
	dst := make(http.Header, len(src)+1)
	for key, vals := range src {
		if isStripped(key) {
			continue
		}
		dst[http.CanonicalHeaderKey(key)] = append([]string(nil), vals...)
	}

	switch rule {
	case RuleBrightData:
		dst.Set("Authorization", "Bearer "+creds.BrightDataAPIKey)
	case RuleProAPIs:
		dst.Set("X-Api-Key", creds.IScrapperKey)
	}
	return dst
}

func isStripped(key string) bool {
	for _, h := range strippedRequestHeaders {
		if strings.EqualFold(key, h) {
			return true
		}
	}
	return false
}

func filterResponseHeaders(src http.Header) http.Header {
	dst := make(http.Header)
	for key, vals := range src {
		canonical := http.CanonicalHeaderKey(key)
		if forwardableResponseHeaders[canonical] {
			dst[canonical] = vals
		}
	}
	return dst
}
