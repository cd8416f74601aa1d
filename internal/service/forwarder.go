// Package service implements the request-forwarding relay.
package service

import (
	"log/slog"

	"cors-proxy-go/internal/client"
	"cors-proxy-go/internal/credentials"
	"cors-proxy-go/internal/metrics"
	"cors-proxy-go/internal/model"
)

// Forwarder relays inbound requests to their target URL.
type Forwarder struct {
	client  *client.UpstreamClient
	creds   *credentials.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewForwarder creates a Forwarder. The metrics parameter is optional.
func NewForwarder(c *client.UpstreamClient, creds *credentials.Store, m *metrics.Metrics, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		client:  c,
		creds:   creds,
		metrics: m,
		logger:  logger.With("component", "forwarder"),
	}
}

// Relay forwards req to its target and returns the upstream reply with the
// response headers reduced to the whitelist.
//
// ErrMissingTarget is returned before any network activity when the target is
// empty. Transport failures come back as *UpstreamError; upstream HTTP error
// statuses are returned as ordinary responses.
func (f *Forwarder) Relay(req *model.InboundRequest) (*model.UpstreamResponse, error) {
	if req.TargetURL == "" {
		return nil, ErrMissingTarget
	}

	rule := ClassifyUpstream(req.TargetURL)
	out := &model.OutboundRequest{
		Ctx:       req.Ctx,
		Method:    req.Method,
		TargetURL: req.TargetURL,
		Header:    transformHeaders(req.Header, rule, f.creds.Current()),
		Body:      req.Body,
	}

	f.logger.Debug("relaying request",
		"method", req.Method,
		"rule", rule.String(),
	)

	resp, err := f.client.Do(out, rule.String())
	if err != nil {
		uerr := &UpstreamError{Method: req.Method, Timeout: isTimeout(err), Err: err}
		if f.metrics != nil {
			f.metrics.UpstreamFailures.WithLabelValues(metrics.NormalizeMethod(req.Method), rule.String(), uerr.Kind()).Inc()
		}
		return nil, uerr
	}

	resp.Header = filterResponseHeaders(resp.Header)
	return resp, nil
}
