package main

import (
	"booking-dialogue/internal/common/logger"

	"github.com/spf13/cobra"
)

var (
	catalogDir string
	logLevel   string
	plainText  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dialogue-cli",
	Short: "Talk to and inspect the booking assistants",
	Long: `dialogue-cli runs the booking dialogue engine locally against a catalog
directory. Use it to rehearse conversations, check workflow definition files
and see how free text maps onto rental categories.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog", "configs/agents", "agent catalog directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&plainText, "plain", false, "print replies without terminal styling")
}

func newLogger() logger.Logger {
	return logger.NewStructured(logLevel, "console")
}
