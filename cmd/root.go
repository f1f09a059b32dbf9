// =============================================================================
// Funding Autofiller - Root Command
// =============================================================================
//
// CLI entry point. Holds the persistent flags shared by every subcommand
// (config path, logging controls) and builds the logger the subcommands use.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	logLevel  string
	logFormat string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "autofiller",
	Short: "Fill funding claim forms from exported CSV data",
	Long: `Funding Autofiller matches rows of an exported funding CSV against the
rows of a claim form workbook and fills in the period and rate fields,
annotating each row with holiday and staleness information.

Rows whose source record carries more than one weekly total suspend the
run and ask the operator to choose; everything else runs unattended.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
}

// initConfig wires viper to the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("AUTOFILLER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Missing config file is fine, defaults cover everything.
	_ = viper.ReadInConfig()
}

// newLogger builds the run logger. Explicit --log-level wins, then the
// verbosity shorthands, then the environment, then info.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case logLevel != "":
		if parsed, err := zerolog.ParseLevel(strings.ToLower(logLevel)); err == nil {
			level = parsed
		}
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.ErrorLevel
	case viper.GetString("log-level") != "":
		if parsed, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("log-level"))); err == nil {
			level = parsed
		}
	}

	var logger zerolog.Logger
	if logFormat == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// configPath returns the config file to load, whether or not it exists.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return "config.yaml"
}
