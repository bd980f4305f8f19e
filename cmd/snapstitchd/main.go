// Command snapstitchd serves the capture pipeline as a daemon: an HTTP API
// for triggering captures and polling progress, and optionally the same
// tools over MCP stdio.
//
// Usage:
//
//	snapstitchd -config snapstitch.yaml
//	snapstitchd -listen :8086
//	snapstitchd -mcp            # additionally serve MCP on stdio
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/snapstitch/history"
	"github.com/hazyhaar/snapstitch/httpapi"
	"github.com/hazyhaar/snapstitch/webshot"
)

func main() {
	configPath := flag.String("config", "", "path to snapstitch.yaml config file")
	listen := flag.String("listen", "", "HTTP listen address (overrides config)")
	mcpStdio := flag.Bool("mcp", false, "also serve MCP tools on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var lvl slog.Level
	switch *logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *listen, *mcpStdio); err != nil {
		logger.Error("snapstitchd: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, listen string, mcpStdio bool) error {
	cfg := &webshot.Config{}
	if configPath != "" {
		loaded, err := webshot.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg.HistoryDB = envOr("HISTORY_DB", "db/history.db")
	}
	if listen != "" {
		cfg.Listen = listen
	}

	var opts []webshot.Option
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, webshot.WithHistory(store))
	}

	runner := webshot.New(*cfg, logger, opts...)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	defer runner.Close()

	api := httpapi.New(runner, logger)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("snapstitchd: http listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if mcpStdio {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "snapstitch",
			Version: "1.0.0",
		}, nil)
		runner.RegisterMCP(mcpSrv)
		go func() {
			logger.Info("snapstitchd: mcp serving on stdio")
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
