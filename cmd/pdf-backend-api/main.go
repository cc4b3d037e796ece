// Command pdf-backend-api serves the PDF converter over HTTP, or as MCP
// tools over standard I/O.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/rezaldwntr/pdf-backend-api/internal/config"
	"github.com/rezaldwntr/pdf-backend-api/mcptool"
	"github.com/rezaldwntr/pdf-backend-api/server"
)

var (
	version   = "dev"     // set by build flags
	buildTime = "unknown" // set by build flags
	gitCommit = "unknown" // set by build flags
)

func main() {
	cfg, err := config.LoadFromFlags()
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion()
		return
	case errors.Is(err, pflag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	// stdout carries the MCP protocol in stdio mode
	logOut := os.Stdout
	if cfg.IsStdioMode() {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	tc, err := cfg.Tuning()
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting pdf-backend-api", "version", version, "config", cfg.String())

	if cfg.IsStdioMode() {
		tools := mcptool.NewServer(mcptool.Options{
			Version:     version,
			MaxFileSize: cfg.MaxUpload,
			Timeout:     cfg.RequestTimeout,
			Workers:     cfg.Workers,
			Tuning:      tc,
			Locale:      cfg.LocaleTag(),
			Logger:      logger,
		})
		return tools.ServeStdio(ctx, os.Stdin, os.Stdout)
	}

	srv := server.New(server.Config{
		MaxUpload:      cfg.MaxUpload,
		RequestTimeout: cfg.RequestTimeout,
		Workers:        cfg.Workers,
		Tuning:         tc,
		Locale:         cfg.LocaleTag(),
		TempDir:        cfg.TempDir,
		Logger:         logger,
	})
	return srv.ListenAndServe(ctx, cfg.Addr, cfg.MaxConnections)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("pdf-backend-api\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
