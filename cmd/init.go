package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stheno-fuzz/stheno/logging/colors"
	"github.com/stheno-fuzz/stheno/synthesis/config"
)

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:           "init [library]",
	Short:         "Initializes a project configuration",
	Long:          `Initializes a project configuration for the named library`,
	Args:          cmdValidateInitArgs,
	RunE:          cmdRunInit,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Output path for the configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// Add the init command and its associated flags to the root command
	rootCmd.AddCommand(initCmd)
}

// cmdValidateInitArgs makes sure that at most one positional argument, the library name, is
// provided to the init command
func cmdValidateInitArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		err = fmt.Errorf("init accepts at most one positional argument, the library name")
		cmdLogger.Error("Failed to validate args to the init command", err)
		return err
	}
	return nil
}

// cmdRunInit executes the CLI init command: it writes a default project configuration for the
// optionally named library to the --out path, or to stheno.json in the working directory.
func cmdRunInit(cmd *cobra.Command, args []string) error {
	library := ""
	if len(args) == 1 {
		library = args[0]
	}

	// Resolve the output path
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}
	if outputPath == "" {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the init command", err)
			return err
		}
		outputPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Write the default configuration and tell the user where it went
	projectConfig := config.GetDefaultProjectConfig(library)
	if err = projectConfig.WriteToFile(outputPath); err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}
	cmdLogger.Info("Project configuration successfully created: ", colors.Bold, outputPath, colors.Reset)
	return nil
}
