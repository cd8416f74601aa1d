package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cors-proxy-go/internal/credentials"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	creds   *credentials.Store
	version Version
}

type statusResponse struct {
	Status               string `json:"status"`
	Version              string `json:"version"`
	BrightDataConfigured bool   `json:"brightdata_configured"`
	IScrapperConfigured  bool   `json:"iscrapper_configured"`
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(creds *credentials.Store, v Version) *HealthHandler {
	return &HealthHandler{creds: creds, version: v}
}

// Health is the liveness probe. It never contacts an upstream.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "CORS proxy server is running",
	})
}

// Status reports the build version and which credentials are present,
// without revealing their values.
func (h *HealthHandler) Status(c echo.Context) error {
	creds := h.creds.Current()
	return c.JSON(http.StatusOK, statusResponse{
		Status:               "OK",
		Version:              string(h.version),
		BrightDataConfigured: creds.BrightDataAPIKey != "",
		IScrapperConfigured:  creds.IScrapperKey != "",
	})
}
