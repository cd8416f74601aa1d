// Package model defines the per-request values passed through the proxy.
package model

import (
	"context"
	"net/http"
)

// InboundRequest is a caller's /get or /post request after routing.
type InboundRequest struct {
	Ctx       context.Context
	Method    string
	TargetURL string
	Header    http.Header
	Body      []byte // nil for GET
}

// OutboundRequest is the request issued to the upstream. Its Header is
// always a fresh map derived from the inbound one, never shared with it.
type OutboundRequest struct {
	Ctx       context.Context
	Method    string
	TargetURL string
	Header    http.Header
	Body      []byte
}

// UpstreamResponse is the fully read upstream reply. Any status code,
// including 4xx and 5xx, is a successful relay result.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
