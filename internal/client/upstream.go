// Package client provides the outbound HTTP client used to reach upstream targets.
package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"cors-proxy-go/internal/config"
	"cors-proxy-go/internal/metrics"
	"cors-proxy-go/internal/model"
)

// ErrBodyTooLarge is returned when an upstream body exceeds the configured cap.
// The body is never truncated.
var ErrBodyTooLarge = errors.New("upstream response body too large")

// UpstreamClient sends relayed requests to arbitrary upstream targets.
type UpstreamClient struct {
	httpClient   *http.Client
	maxBodyBytes int64 // <= 0 disables the cap
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// NewUpstreamClient creates an UpstreamClient with connection pooling and a
// hard per-call timeout that covers reading the whole response body.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *UpstreamClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &UpstreamClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		maxBodyBytes: cfg.Upstream.MaxBodyBytes,
		logger:       logger.With("component", "upstream_client"),
		metrics:      m,
	}
}

// Do issues req and reads the full response. Only transport faults are
// returned as errors; every HTTP status from the upstream is a result.
// rule labels upstream metrics with the credential rule that applied.
func (c *UpstreamClient) Do(req *model.OutboundRequest, rule string) (*model.UpstreamResponse, error) {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(req.Ctx, req.Method, req.TargetURL, body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	httpReq.Header = req.Header

	c.logger.Debug("upstream request",
		"method", req.Method,
		"host", httpReq.URL.Host,
		"rule", rule,
	)

	start := time.Now()
	method := metrics.NormalizeMethod(req.Method)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(method, rule, start)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := c.readBody(resp)
	c.observe(method, rule, start)
	if err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.UpstreamResponses.WithLabelValues(method, rule, strconv.Itoa(resp.StatusCode)).Inc()
	}

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// readBody buffers the whole body, failing once it grows past maxBodyBytes.
func (c *UpstreamClient) readBody(resp *http.Response) ([]byte, error) {
	if c.maxBodyBytes > 0 && resp.ContentLength > c.maxBodyBytes {
		return nil, fmt.Errorf("%w: content-length %d exceeds %d bytes", ErrBodyTooLarge, resp.ContentLength, c.maxBodyBytes)
	}

	var r io.Reader = resp.Body
	if c.maxBodyBytes > 0 {
		r = io.LimitReader(resp.Body, c.maxBodyBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if c.maxBodyBytes > 0 && int64(len(data)) > c.maxBodyBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, c.maxBodyBytes)
	}
	return data, nil
}

func (c *UpstreamClient) observe(method, rule string, start time.Time) {
	if c.metrics != nil {
		c.metrics.UpstreamDuration.WithLabelValues(method, rule).Observe(time.Since(start).Seconds())
	}
}
