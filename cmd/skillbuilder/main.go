package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillbuilder/skillbuilder/pkg/config"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/presenter"
)

var (
	configFile string
	appConfig  config.Config

	shutdownTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "skillbuilder",
	Short: "Generate, curate and export SKILL.md automation skills",
	Long: `Skillbuilder turns a natural-language description into a SKILL.md
document using a large language model, keeps the results in a local
library and serves them over an HTTP API for browsing and bulk export.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initApp(cmd.Context())
	},
}

// initApp resolves configuration, then configures logging and tracing
func initApp(ctx context.Context) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	v := viper.GetViper()
	if err := config.Init(v, configFile); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	appConfig = cfg

	shutdown, err := initTracing(ctx, cfg.Tracing)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to initialize tracing, continuing without it")
		return nil
	}
	shutdownTracing = shutdown
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: $HOME/.skillbuilder/config.yaml or ./config.yaml)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text or json)")
	flags.String("provider", "", "LLM provider to use (anthropic, openai or google)")
	flags.String("model", "", "LLM model to use (overrides config)")
	flags.Int("max-tokens", 0, "Maximum tokens for the generated document (overrides config)")
	flags.String("store", "", "Library store backend (json or sqlite)")
	flags.String("library-path", "", "Records directory for the json store or database file for sqlite")

	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("llm.provider", flags.Lookup("provider"))
	viper.BindPFlag("llm.model", flags.Lookup("model"))
	viper.BindPFlag("llm.max_tokens", flags.Lookup("max-tokens"))
	viper.BindPFlag("library.store", flags.Lookup("store"))
	viper.BindPFlag("library.path", flags.Lookup("library-path"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(withTracing(generateCmd))
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx := context.Background()

	err := rootCmd.ExecuteContext(ctx)

	if shutdownErr := shutdownTracing(ctx); shutdownErr != nil {
		logger.G(ctx).WithError(shutdownErr).Warn("failed to flush traces")
	}

	if err != nil {
		presenter.Error(err, "skillbuilder failed")
		os.Exit(1)
	}
}
