package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillbuilder/skillbuilder/pkg/catalog"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/presenter"
	"github.com/skillbuilder/skillbuilder/pkg/webui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the skill builder HTTP API",
	Long: `Start the HTTP API used by the skill builder frontend. In production
the built frontend is served from --static-dir with index.html fallback.

The server listens on port 3001 by default; PORT and ENVIRONMENT are honoured.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runServeCommand(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("host", "", "Host to bind the server to")
	serveCmd.Flags().Int("port", 0, "Port to bind the server to")
	serveCmd.Flags().String("environment", "", "Runtime environment (development or production)")
	serveCmd.Flags().String("static-dir", "", "Directory holding the built frontend")

	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("environment", serveCmd.Flags().Lookup("environment"))
	viper.BindPFlag("static_dir", serveCmd.Flags().Lookup("static-dir"))
}

// runServeCommand starts the HTTP API and blocks until interrupted
func runServeCommand(ctx context.Context) {
	cfg := appConfig

	logger.G(ctx).WithFields(map[string]interface{}{
		"host":        cfg.Host,
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"provider":    cfg.LLM.Provider,
		"store":       cfg.Library.Store,
		"ratelimit":   cfg.RateLimit.Backend,
	}).Info("starting skill builder server")

	store, err := openStore(ctx)
	if err != nil {
		presenter.Error(err, "failed to open skill library")
		os.Exit(1)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.G(ctx).WithError(closeErr).Error("failed to close skill library")
		}
	}()

	builder, err := newBuilder(store)
	if err != nil {
		presenter.Error(err, "failed to create generation client")
		os.Exit(1)
	}

	general, generate, closeLimiters, err := newRateLimiters(ctx, cfg.RateLimit)
	if err != nil {
		presenter.Error(err, "failed to create rate limiters")
		os.Exit(1)
	}
	defer func() {
		if closeErr := closeLimiters(); closeErr != nil {
			logger.G(ctx).WithError(closeErr).Error("failed to close rate limiter backend")
		}
	}()

	watchRateLimits(ctx, viper.GetViper(), general, generate)

	serverConfig := &webui.ServerConfig{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Environment: cfg.Environment,
		StaticDir:   cfg.StaticDir,
	}
	server, err := webui.NewServer(serverConfig, catalog.NewService(store), builder, webui.WithRateLimiters(general, generate))
	if err != nil {
		presenter.Error(err, "failed to create web server")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	presenter.Info("Press Ctrl+C to stop the server")

	if err := server.Start(ctx); err != nil {
		logger.G(ctx).WithError(err).Error("web server error")
		presenter.Error(err, "web server failed")
		os.Exit(1)
	}

	presenter.Info("Server stopped")
}
