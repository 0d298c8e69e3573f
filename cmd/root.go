package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stheno-fuzz/stheno/logging"
)

// rootCmd is the root CLI command object. All other commands are attached to it.
var rootCmd = &cobra.Command{
	Use:           "stheno",
	Short:         "A call-sequence synthesizer for fuzz driver generation",
	Long:          "stheno synthesizes executable call sequences over a library's API for use as fuzz drivers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cmdLogger is the logger that will be used for the cmd package
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true).NewSubLogger("module", logging.CLI_SERVICE)

// Execute provides an exportable function that will execute the root command.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}
