package cmd

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stheno-fuzz/stheno/synthesis"
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stheno-fuzz/stheno/synthesis/config"
	"github.com/stheno-fuzz/stheno/synthesis/selection"
	"github.com/stheno-fuzz/stheno/utils"
)

// sequenceOutput is the JSON shape one selected sequence is written out as.
type sequenceOutput struct {
	ID        string   `json:"id"`
	Chain     string   `json:"chain"`
	Functions []string `json:"functions"`
	Unsafe    bool     `json:"unsafe,omitempty"`
	FixedLen  int      `json:"fixedByteLength"`
}

// selectionOutput is the JSON document the generate and replay commands write: the selected
// sequences plus the run statistics.
type selectionOutput struct {
	Library    string               `json:"library"`
	Sequences  []sequenceOutput     `json:"sequences"`
	Statistics selection.Statistics `json:"statistics"`
}

// loadCatalog reads the catalog interchange file at the given path, letting the project
// configuration supply the default concrete type when the file does not carry one.
func loadCatalog(path string, projectConfig *config.ProjectConfig) (*catalog.Catalog, *catalog.TableOracle, *catalog.ConventionTable, error) {
	if path == "" {
		return nil, nil, nil, errors.Errorf("a catalog file must be provided")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, errors.WithStack(err)
	}

	var file catalog.CatalogFile
	if err = json.Unmarshal(b, &file); err != nil {
		return nil, nil, nil, errors.WithStack(err)
	}
	if file.DefaultConcreteType == "" {
		file.DefaultConcreteType = projectConfig.Synthesis.DefaultConcreteType
	}
	return file.Materialize()
}

// writeSelection writes the selected sequences and run statistics as JSON to the path named by
// --out, or to stdout when the flag is unset.
func writeSelection(cmd *cobra.Command, synthesizer *synthesis.Synthesizer, nameOf func(int) string, stats selection.Statistics) error {
	output := selectionOutput{
		Library:    synthesizer.Graph().Catalog().Library(),
		Statistics: stats,
	}
	for _, sel := range synthesizer.Selected() {
		seq := sel.Sequence
		entry := sequenceOutput{
			ID:        sel.ID.String(),
			Unsafe:    seq.Unsafe(),
			FixedLen:  seq.FixedByteLength(),
			Chain:     seq.Describe(nameOf),
			Functions: utils.SliceSelect(seq.CoveredFunctions(), nameOf),
		}
		output.Sequences = append(output.Sequences, entry)
	}

	b, err := json.MarshalIndent(output, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return errors.WithStack(err)
	}
	if err = os.WriteFile(outPath, append(b, '\n'), 0644); err != nil {
		return errors.WithStack(err)
	}
	cmdLogger.Info("Wrote ", len(output.Sequences), " selected sequences to: ", outPath)
	return nil
}
