// Package cmd provides the command-line interface for seoredirect with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --output, etc.) - highest priority
//	2. SEOREDIRECT_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (SEOREDIRECT_OUTPUT_DIR, etc.)
//	4. Configuration files (.seoredirect.yml) - lowest priority
//
// Environment Variables:
//
//	SEOREDIRECT_CONFIG_FILE: Path to custom configuration file
//	SEOREDIRECT_SITE_BASE_URL: Override the published site base URL
//	SEOREDIRECT_OUTPUT_DIR: Override the output directory
//	SEOREDIRECT_OUTPUT_EXTENSIONLESS: Enable/disable extensionless page copies
//	And more following the SEOREDIRECT_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neflyte/seoredirect/internal/config"
	"github.com/neflyte/seoredirect/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seoredirect",
	Short: "Build-time redirect page generator for documentation sites",
	Long: `Seoredirect generates static HTTP redirect pages for documentation sites,
so old page and page-section URLs keep resolving after content moves.

Key Features:
  • Redirects declared in config, standalone YAML files, or in-document comments
  • Fragment-aware redirects (old anchors resolve to their new locations)
  • Sidecar fragment scripts for pages that still exist
  • Optional extensionless page copies for clean-URL servers
  • Watch mode for rebuilding while documentation is edited

Quick Start:
  seoredirect generate            Generate redirect pages
  seoredirect validate            Check redirect declarations without writing
  seoredirect inspect             Print the computed redirect table
  seoredirect doctor              Diagnose configuration and environment

Documentation: https://github.com/neflyte/seoredirect`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .seoredirect.yml, can also use SEOREDIRECT_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	AddFlagValidation(rootCmd, "config", ValidateFileExists)
	AddFlagValidation(rootCmd, "log-level", ValidateLogLevel)
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. SEOREDIRECT_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .seoredirect.yml in current directory
//
// The function also enables automatic environment variable binding for all
// configuration values with the SEOREDIRECT_ prefix
// (e.g., SEOREDIRECT_OUTPUT_DIR=site).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SEOREDIRECT_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".seoredirect")
	}

	viper.SetEnvPrefix("SEOREDIRECT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or broken config file is not fatal here; commands run on
	// defaults and report configuration problems themselves.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newCommandLogger builds the logger a command runs with from the loaded
// configuration. When a log directory is configured, output goes to both the
// console and a dated file; the returned closer releases the file.
func newCommandLogger(cfg *config.Config) (logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = level
	if cfg.Log.Format != "" {
		logConfig.Format = cfg.Log.Format
	}

	console := logging.NewLogger(logConfig)
	if cfg.Log.Dir == "" {
		return console, func() {}, nil
	}

	fileLogger, err := logging.NewFileLogger(logConfig, cfg.Log.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	closer := func() { _ = fileLogger.Close() }
	return logging.NewMultiLogger(console, fileLogger), closer, nil
}
