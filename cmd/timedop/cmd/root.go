package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/timedop/pkg/logging"
)

var (
	cfgFile     string
	logLevel    string
	logJSON     bool
	callTimeout time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "timedop",
	Short: "Stopwatches and deadline-bounded calls",
	Long: `timedop times operations and runs work under hard wall-clock deadlines.

A bounded call executes in an isolated worker process that is forcibly
killed if it overruns its deadline, so a hung operation can never wedge
the caller.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.timedop/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().DurationVar(&callTimeout, "timeout", 4*time.Second, "deadline for bounded calls")
}

// initConfig reads in config file and TIMEDOP_* environment variables.
// Precedence: flags > env > config file > defaults.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(filepath.Join(home, ".timedop"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("timedop")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if !rootCmd.PersistentFlags().Changed("timeout") && viper.IsSet("timeout") {
			callTimeout = viper.GetDuration("timeout")
		}
		if !rootCmd.PersistentFlags().Changed("log-level") && viper.IsSet("log_level") {
			logLevel = viper.GetString("log_level")
		}
		if !rootCmd.PersistentFlags().Changed("log-json") && viper.IsSet("log_json") {
			logJSON = viper.GetBool("log_json")
		}
	}
}

// newLogger builds the logger the way the flags and config ask for.
func newLogger() *logging.Logger {
	return logging.NewLogger(logging.ParseLevel(logLevel), logJSON)
}

// timeout returns the effective bounded-call deadline.
func timeout() time.Duration {
	return callTimeout
}
