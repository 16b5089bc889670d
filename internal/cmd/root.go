// Package cmd wires the pplx command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Krasnovvvvv/perplexity-go/internal/config"
	"github.com/Krasnovvvvv/perplexity-go/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// appConfig is loaded once by initConfig before any RunE fires.
	appConfig *config.Config

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pplx",
	Short: "Perplexity AI chat client",
	Long: `pplx talks to the Perplexity AI chat completions API with client-side
rate limiting, typed error reporting, retries with exponential backoff,
and a local journal of past requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/pplx/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from flag
		viper.SetConfigFile(cfgFile)
	} else {
		if dir := config.DefaultConfigDir(); dir != "" {
			viper.AddConfigPath(dir)
		}
		// Also search in current directory
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	// It's OK if the config file doesn't exist, we have defaults
	readErr := viper.ReadInConfig()
	if readErr != nil {
		if _, notFound := readErr.(viper.ConfigFileNotFoundError); notFound {
			readErr = nil
		} else if cfgFile == "" && os.IsNotExist(readErr) {
			readErr = nil
		}
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load configuration: %v\n", err)
		os.Exit(ExitConfiguration)
	}
	appConfig = cfg

	observability.InitCLILogger("pplx", cfg.Logging.Level, verbose)

	if readErr != nil {
		observability.CLILogger.Warn("Error reading config file", zap.Error(readErr))
	} else if used := viper.ConfigFileUsed(); used != "" {
		observability.CLILogger.Debug("Using config file", zap.String("path", used))
	}
}
