// Command snapstitch captures a full-length screenshot of one URL by
// scrolling through it and stitching the overlapping viewport frames.
//
// Usage:
//
//	snapstitch -url https://example.com
//	snapstitch -url https://example.com -format pdf -out page.pdf
//	snapstitch -config snapstitch.yaml -url https://example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/snapstitch/export"
	"github.com/hazyhaar/snapstitch/history"
	"github.com/hazyhaar/snapstitch/webshot"
)

func main() {
	pageURL := flag.String("url", "", "page URL to capture (required)")
	configPath := flag.String("config", "", "path to snapstitch.yaml config file")
	outPath := flag.String("out", "", "output file (derived from page title when empty)")
	format := flag.String("format", "png", "output format: png or pdf")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	if *pageURL == "" {
		fmt.Fprintln(os.Stderr, "usage: snapstitch -url <url> [-out <file>] [-format png|pdf] [-config <file>]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *pageURL, *outPath, *format); err != nil {
		logger.Error("snapstitch: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, pageURL, outPath, format string) error {
	cfg := &webshot.Config{}
	if configPath != "" {
		loaded, err := webshot.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
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

	sum, err := runner.Capture(ctx, webshot.Request{
		URL:        pageURL,
		Format:     export.Format(format),
		OutputPath: outPath,
	})
	if err != nil {
		return err
	}

	fmt.Println(sum.OutputPath)
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
