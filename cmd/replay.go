package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stheno-fuzz/stheno/cmd/exitcodes"
	"github.com/stheno-fuzz/stheno/logging"
	"github.com/stheno-fuzz/stheno/synthesis/corpus"
)

// replayCmd represents the command provider for seed-chain replay
var replayCmd = &cobra.Command{
	Use:               "replay",
	Short:             "Seeds the sequence pool from mined call chains",
	Long:              `Seeds the sequence pool from mined call chains instead of running a forward search`,
	Args:              cmdValidateReplayArgs,
	ValidArgsFunction: cmdValidReplayArgs,
	RunE:              cmdRunReplay,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the replay command
	err := addReplayFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the replay command", err)
	}

	// Add the replay command and its associated flags to the root command
	rootCmd.AddCommand(replayCmd)
}

// cmdValidReplayArgs will return which flags and sub-commands are valid for dynamic completion
// for the replay command
func cmdValidReplayArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateReplayArgs makes sure that there are no positional arguments provided to the replay
// command
func cmdValidateReplayArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("replay does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the replay command", err)
		return err
	}
	return nil
}

// cmdRunReplay executes the CLI replay command: it resolves the project configuration and
// catalog the same way the generate command does, parses the seed-chain file named by --seeds,
// and replays its chains against the dependency graph before selecting driver-worthy sequences.
func cmdRunReplay(cmd *cobra.Command, args []string) error {
	projectConfig, err := resolveProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the replay command", err)
		return err
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithGenerateFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the replay command", err)
		return err
	}

	synthesizer, catalogNames, err := setupSynthesizer(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the replay command", err)
		return err
	}

	// Parse the seed chains
	seedsPath, err := cmd.Flags().GetString("seeds")
	if err != nil {
		cmdLogger.Error("Failed to run the replay command", err)
		return err
	}
	chains, err := corpus.ReadSeedFile(seedsPath)
	if err != nil {
		cmdLogger.Error("Failed to run the replay command", err)
		return err
	}

	maxChains, err := cmd.Flags().GetInt("max-chains")
	if err != nil {
		cmdLogger.Error("Failed to run the replay command", err)
		return err
	}

	replayStats, stats, err := synthesizer.ReplaySeeds(chains, maxChains)
	if err != nil {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeSynthesisError)
	}
	cmdLogger.Info("Replayed ", replayStats.ChainsReplayed, " of ", replayStats.ChainsParsed, " seed chains", logging.StructuredLogInfo{
		"dropped":   replayStats.ChainsDropped,
		"covered":   replayStats.FunctionsCovered,
		"uncovered": replayStats.FunctionsUncovered,
	})

	return writeSelection(cmd, synthesizer, catalogNames, stats)
}

// addReplayFlags adds the various flags for the replay command
func addReplayFlags() error {
	// Prevent alphabetical sorting of usage message
	replayCmd.Flags().SortFlags = false

	// Config file
	replayCmd.Flags().String("config", "", "path to config file")

	// Catalog file
	replayCmd.Flags().String("catalog", "", "path to the library catalog file (required)")
	if err := replayCmd.MarkFlagRequired("catalog"); err != nil {
		return err
	}

	// Seed chain file
	replayCmd.Flags().String("seeds", "", "path to the mined seed-chain file (required)")
	if err := replayCmd.MarkFlagRequired("seeds"); err != nil {
		return err
	}

	// Chain budget
	replayCmd.Flags().Int("max-chains", 0,
		"maximum number of seed chains to replay, sampled by occurrence frequency. 0 means all chains are replayed")

	// Shared generate flags that also apply to replay
	replayCmd.Flags().Int64("seed", 0, "seed for the randomized modes and the chain budget sampling")
	replayCmd.Flags().Bool("no-repair", false, "disable the coverage-repair pass run after replay")
	replayCmd.Flags().String("selection", "", "selection mode for driver-worthy sequences")
	replayCmd.Flags().Int("max-sequences", 0, "maximum number of selected sequences. 0 means that no bound is enforced")
	replayCmd.Flags().String("store", "", "path to a sequence store database persisting the selection across runs")
	replayCmd.Flags().String("out", "", "path the selected sequences are written to as JSON. Empty writes them to stdout")
	return nil
}
