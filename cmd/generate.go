package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stheno-fuzz/stheno/cmd/exitcodes"
	"github.com/stheno-fuzz/stheno/logging"
	"github.com/stheno-fuzz/stheno/logging/colors"
	"github.com/stheno-fuzz/stheno/synthesis"
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stheno-fuzz/stheno/synthesis/config"
)

// generateCmd represents the command provider for sequence generation
var generateCmd = &cobra.Command{
	Use:               "generate",
	Short:             "Synthesizes call sequences over a library catalog",
	Long:              `Synthesizes call sequences over a library catalog`,
	Args:              cmdValidateGenerateArgs,
	ValidArgsFunction: cmdValidGenerateArgs,
	RunE:              cmdRunGenerate,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the generate command
	err := addGenerateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the generate command", err)
	}

	// Add the generate command and its associated flags to the root command
	rootCmd.AddCommand(generateCmd)
}

// cmdValidGenerateArgs will return which flags and sub-commands are valid for dynamic completion
// for the generate command
func cmdValidGenerateArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateGenerateArgs makes sure that there are no positional arguments provided to the
// generate command
func cmdValidateGenerateArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("generate does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the generate command", err)
		return err
	}
	return nil
}

// cmdRunGenerate executes the CLI generate command and navigates through the following possibilities:
// #1: We will search for either a custom config file (via --config) or the default (stheno.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If stheno.json can't be found, use the default project configuration.
func cmdRunGenerate(cmd *cobra.Command, args []string) error {
	projectConfig, err := resolveProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithGenerateFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	synthesizer, catalogNames, err := setupSynthesizer(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	stats, err := synthesizer.Run()
	if err != nil {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeSynthesisError)
	}

	return writeSelection(cmd, synthesizer, catalogNames, stats)
}

// resolveProjectConfig locates and reads the project configuration the way every command does:
// an explicit --config path must exist, and an absent default stheno.json falls back to the
// default configuration.
func resolveProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If --config was not used, look for `stheno.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		return config.ReadProjectConfigFromFile(configPath)
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed {
		return nil, existenceError
	}

	// Possibility #3: --config flag was not used and stheno.json was not found, so use the default project config
	cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration instead", configPath))
	return config.GetDefaultProjectConfig(""), nil
}

// setupSynthesizer configures global logging from the project configuration, loads the catalog
// named by --catalog and creates a synthesizer over it. It returns the synthesizer together with
// the function-name resolver used when writing out the selection.
func setupSynthesizer(cmd *cobra.Command, projectConfig *config.ProjectConfig) (*synthesis.Synthesizer, func(int) string, error) {
	// Set up the global logger per the configuration, adding a structured file writer if a log
	// directory is configured.
	logging.GlobalLogger = logging.NewLogger(projectConfig.Logging.Level, projectConfig.Logging.EnableConsoleLogging)
	if projectConfig.Logging.LogDirectory != "" {
		if err := os.MkdirAll(projectConfig.Logging.LogDirectory, 0755); err != nil {
			return nil, nil, err
		}
		logFile, err := os.Create(filepath.Join(projectConfig.Logging.LogDirectory, "stheno.log"))
		if err != nil {
			return nil, nil, err
		}
		logging.GlobalLogger.AddWriter(logFile, logging.STRUCTURED)
	}

	catalogPath, err := cmd.Flags().GetString("catalog")
	if err != nil {
		return nil, nil, err
	}

	cat, oracle, conventions, err := loadCatalog(catalogPath, projectConfig)
	if err != nil {
		return nil, nil, err
	}
	if projectConfig.Library == "" {
		projectConfig.Library = cat.Library()
	}

	synthesizer, err := synthesis.NewSynthesizer(projectConfig, cat, oracle, catalog.DefaultSubstitution{}, conventions, logging.GlobalLogger)
	if err != nil {
		return nil, nil, err
	}
	nameOf := func(function int) string {
		return cat.Function(function).Name
	}
	return synthesizer, nameOf, nil
}
