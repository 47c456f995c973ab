// Package cmd implements the xtreamr CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/xtreamr/internal/config"
	"github.com/jmylchreest/xtreamr/internal/observability"
	"github.com/jmylchreest/xtreamr/internal/version"
)

var (
	// cfgFile holds the config file path from the CLI flag.
	cfgFile string

	// appConfig and logger are set by the root PersistentPreRunE.
	appConfig *config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "xtreamr",
	Short:   "Xtream Codes IPTV catalog client",
	Version: version.Short(),
	Long: `xtreamr talks to IPTV providers exposing the Xtream Codes player API.

It authenticates against a provider, loads its live channels, movies and
series into a local catalog (cached on disk or in Redis), and can search the
catalog, download movies and episodes, fetch programme guides and export the
catalog to a SQL database.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	// Set here rather than in the literal to avoid an initialization cycle.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	}

	// Flags are not bound to viper: they override config and environment
	// only when set explicitly.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./xtreamr.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

// initConfig loads configuration and installs the default logger.
//
// Priority order (highest to lowest):
//  1. CLI flags (--log-level, --log-format), only if explicitly provided
//  2. Environment variables (XTREAMR_LOGGING_LEVEL, XTREAMR_LOGGING_FORMAT)
//  3. Config file values
//  4. Built-in defaults
func initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	overrideString(flags, "log-level", &cfg.Logging.Level)
	overrideString(flags, "log-format", &cfg.Logging.Format)
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating flags: %w", err)
	}

	appConfig = cfg
	logger = observability.NewLoggerWithWriter(cfg.Logging, cmd.ErrOrStderr())
	observability.SetDefault(logger)
	return nil
}

// overrideString copies a string flag into dst, lower-cased, if it was set
// on the command line.
func overrideString(flags *pflag.FlagSet, name string, dst *string) {
	if !flags.Changed(name) {
		return
	}
	if v, err := flags.GetString(name); err == nil {
		*dst = strings.ToLower(v)
	}
}
