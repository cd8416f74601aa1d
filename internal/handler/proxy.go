package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"cors-proxy-go/internal/model"
	"cors-proxy-go/internal/service"
)

// secretQueryPattern matches credential-like query values in URLs embedded in error messages.
var secretQueryPattern = regexp.MustCompile(`(?i)((?:api[_-]?key|access[_-]?token|token|secret|password|key)=)[^&\s"]+`)

// ProxyHandler serves the /get and /post relay endpoints.
type ProxyHandler struct {
	forwarder *service.Forwarder
	logger    *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(f *service.Forwarder, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		forwarder: f,
		logger:    logger.With("component", "proxy_handler"),
	}
}

// Get relays a GET to the target named by the url query parameter.
func (h *ProxyHandler) Get(c echo.Context) error {
	return h.relay(c, http.MethodGet, nil)
}

// Post relays a POST, with the caller's body, to the target named by the url
// query parameter. JSON and form bodies must parse before anything is sent.
func (h *ProxyHandler) Post(c echo.Context) error {
	if c.QueryParam("url") == "" {
		return h.mapError(c, http.MethodPost, service.ErrMissingTarget)
	}

	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he // body limit exceeded
		}
		return h.mapError(c, http.MethodPost, err)
	}

	if err := service.ValidateBody(req.Header.Get(echo.HeaderContentType), body); err != nil {
		return h.mapError(c, http.MethodPost, err)
	}

	return h.relay(c, http.MethodPost, body)
}

func (h *ProxyHandler) relay(c echo.Context, method string, body []byte) error {
	req := c.Request()
	resp, err := h.forwarder.Relay(&model.InboundRequest{
		Ctx:       req.Context(),
		Method:    method,
		TargetURL: c.QueryParam("url"),
		Header:    req.Header,
		Body:      body,
	})
	if err != nil {
		return h.mapError(c, method, err)
	}

	header := c.Response().Header()
	for key, vals := range resp.Header {
		for _, v := range vals {
			header.Add(key, v)
		}
	}
	if header.Get(echo.HeaderContentType) == "" {
		// Relay as-is; no sniffed type.
		header[echo.HeaderContentType] = nil
	}

	c.Response().WriteHeader(resp.StatusCode)
	if _, err := c.Response().Write(resp.Body); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		h.logger.Error("writing relayed body",
			"err", err,
			"method", method,
		)
	}
	return nil
}

func (h *ProxyHandler) mapError(c echo.Context, method string, err error) error {
	if errors.Is(err, service.ErrMissingTarget) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "URL parameter is required",
		})
	}

	if errors.Is(err, service.ErrInvalidBody) {
		h.logger.Warn("rejected request body",
			"err", err,
			"method", method,
		)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
	}

	attrs := []any{"err", sanitizeError(err)}
	var uerr *service.UpstreamError
	if errors.As(err, &uerr) {
		attrs = append(attrs, "kind", uerr.Kind())
	}
	h.logger.Error(method+" proxy error", attrs...)

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error":   "Proxy request failed",
		"message": err.Error(),
	})
}

// sanitizeError redacts credential-like query values from error messages that may contain target URLs.
func sanitizeError(err error) string {
	return secretQueryPattern.ReplaceAllString(err.Error(), "${1}[REDACTED]")
}
