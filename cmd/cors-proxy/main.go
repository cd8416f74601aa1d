package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"cors-proxy-go/internal/client"
	"cors-proxy-go/internal/config"
	"cors-proxy-go/internal/credentials"
	"cors-proxy-go/internal/handler"
	"cors-proxy-go/internal/logging"
	"cors-proxy-go/internal/metrics"
	"cors-proxy-go/internal/server"
	"cors-proxy-go/internal/service"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// The dotenv file must be in the environment before Kong reads env vars.
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("cors-proxy"),
		kong.Description("HTTPS forwarding proxy that lets browser clients bypass CORS and injects upstream API keys."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	fx.New(
		fx.Provide(
			func() *config.CLI { return &cli },
			func() handler.Version { return handler.Version(version) },
			config.Load,
			newLogger,
			metrics.New,
			credentials.NewStoreFromConfig,
			server.NewEcho,
			client.NewUpstreamClient,
			service.NewForwarder,
			handler.NewProxyHandler,
			handler.NewHealthHandler,
		),
		fx.Invoke(handler.RegisterRoutes, warnConfigPermissions, watchCredentials, startServer),
	).Run()
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Log)
}

func warnConfigPermissions(cfg *config.Config, logger *slog.Logger) {
	cfg.WarnPermissions(logger)
}

func watchCredentials(lc fx.Lifecycle, cli *config.CLI, cfg *config.Config, store *credentials.Store, logger *slog.Logger) {
	if !cfg.Credentials.Watch || cfg.FilePath() == "" {
		return
	}

	w := credentials.NewWatcher(cfg.FilePath(), store, credentials.ConfigReloader(cli, cfg.FilePath()), logger)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error { return w.Start() },
		OnStop:  func(_ context.Context) error { return w.Stop() },
	})
}

func startServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ln, err := server.Listen(cfg)
			if err != nil {
				return err
			}
			logger.Info("CORS proxy server running",
				"addr", cfg.Server.Addr(),
				"get", "/get?url=<target_url>",
				"post", "/post?url=<target_url>",
				"health", "/health",
			)
			go func() {
				if err := e.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return e.Shutdown(ctx)
		},
	})
}
