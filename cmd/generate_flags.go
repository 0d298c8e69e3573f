package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stheno-fuzz/stheno/synthesis/config"
)

// addGenerateFlags adds the various flags for the generate command
func addGenerateFlags() error {
	// Get the default project config for flag descriptions
	defaultConfig := config.GetDefaultProjectConfig("")

	// Prevent alphabetical sorting of usage message
	generateCmd.Flags().SortFlags = false

	// Config file
	generateCmd.Flags().String("config", "", "path to config file")

	// Catalog file
	generateCmd.Flags().String("catalog", "", "path to the library catalog file (required)")
	if err := generateCmd.MarkFlagRequired("catalog"); err != nil {
		return err
	}

	// Strategy
	generateCmd.Flags().String("strategy", "",
		"synthesis strategy to run (unless a config file is provided, default is endpoint-stopping breadth-first search)")

	// Sequence length
	generateCmd.Flags().Int("seq-len", 0,
		fmt.Sprintf("maximum sequence length for breadth-first search (unless a config file is provided, default is %d)", defaultConfig.Synthesis.MaxSequenceLength))

	// Random walk budget
	generateCmd.Flags().Int("walk-steps", 0,
		fmt.Sprintf("extension attempt budget for the random walk strategy (unless a config file is provided, default is %d)", defaultConfig.Synthesis.RandomWalkSteps))

	// Random seed
	generateCmd.Flags().Int64("seed", 0,
		"seed for the randomized strategies and selection modes")

	// Coverage repair
	generateCmd.Flags().Bool("no-repair", false,
		"disable the coverage-repair pass run after the search strategy")

	// Selection mode
	generateCmd.Flags().String("selection", "",
		fmt.Sprintf("selection mode for driver-worthy sequences (unless a config file is provided, default is %q)", defaultConfig.Selection.Mode))

	// Selection bound
	generateCmd.Flags().Int("max-sequences", 0,
		"maximum number of selected sequences. 0 means that no bound is enforced")

	// Sequence store
	generateCmd.Flags().String("store", "",
		"path to a sequence store database persisting the selection across runs")

	// Output file
	generateCmd.Flags().String("out", "",
		"path the selected sequences are written to as JSON. Empty writes them to stdout")
	return nil
}

// updateProjectConfigWithGenerateFlags will update the given projectConfig with any CLI arguments
// that were provided to the generate command
func updateProjectConfigWithGenerateFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the strategy
	if cmd.Flags().Changed("strategy") {
		projectConfig.Synthesis.Strategy, err = cmd.Flags().GetString("strategy")
		if err != nil {
			return err
		}
	}

	// Update the sequence length
	if cmd.Flags().Changed("seq-len") {
		projectConfig.Synthesis.MaxSequenceLength, err = cmd.Flags().GetInt("seq-len")
		if err != nil {
			return err
		}
	}

	// Update the random walk budget
	if cmd.Flags().Changed("walk-steps") {
		projectConfig.Synthesis.RandomWalkSteps, err = cmd.Flags().GetInt("walk-steps")
		if err != nil {
			return err
		}
	}

	// Update the random seed
	if cmd.Flags().Changed("seed") {
		projectConfig.Synthesis.RandomSeed, err = cmd.Flags().GetInt64("seed")
		if err != nil {
			return err
		}
	}

	// Disable coverage repair
	if cmd.Flags().Changed("no-repair") {
		noRepair, err := cmd.Flags().GetBool("no-repair")
		if err != nil {
			return err
		}
		projectConfig.Synthesis.CoverageRepair = !noRepair
	}

	// Update the selection mode
	if cmd.Flags().Changed("selection") {
		projectConfig.Selection.Mode, err = cmd.Flags().GetString("selection")
		if err != nil {
			return err
		}
	}

	// Update the selection bound
	if cmd.Flags().Changed("max-sequences") {
		projectConfig.Selection.MaxSequences, err = cmd.Flags().GetInt("max-sequences")
		if err != nil {
			return err
		}
	}

	// Update the sequence store path
	if cmd.Flags().Changed("store") {
		projectConfig.Selection.StorePath, err = cmd.Flags().GetString("store")
		if err != nil {
			return err
		}
	}
	return nil
}
