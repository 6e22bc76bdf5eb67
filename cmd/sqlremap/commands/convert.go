package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConvertCmd builds and returns the 'convert' cobra command.
func NewConvertCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "convert <mappings.xlsx>",
		Short: "Generate a YAML rules file from a mapping workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	return cmd
}

// runConvert is the entry point for the convert command.
func runConvert(workbookPath, outputPath string) error {
	log.Debug().Str("workbook", workbookPath).Str("output", outputPath).Msg("convert started")

	tableRows, columnRows, err := mapping.LoadWorkbook(workbookPath)
	if err != nil {
		return fmt.Errorf("reading workbook: %w", err)
	}

	// Run the rows through Build so the generated rules file carries the
	// same normalization (trimming, dropped rows, last-wins) a direct
	// workbook load would apply.
	set, err := mapping.Build(tableRows, columnRows)
	if err != nil {
		return fmt.Errorf("building mapping set: %w", err)
	}

	out := mapping.RulesFile{
		SQLRemap: mapping.Rules{Version: 1},
	}
	for oldName, newName := range set.Tables {
		out.SQLRemap.Tables = append(out.SQLRemap.Tables, mapping.TableRule{Old: oldName, New: newName})
	}
	for table, cols := range set.Columns {
		for oldCol, newCol := range cols {
			out.SQLRemap.Columns = append(out.SQLRemap.Columns, mapping.ColumnRule{Table: table, Old: oldCol, New: newCol})
		}
	}
	sortRules(&out.SQLRemap)

	// Marshal to YAML.
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshalling yaml: %w", err)
	}

	// Resolve output writer.
	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file %q: %w", outputPath, err)
		}
		defer f.Close()
		w = bufio.NewWriter(f)
		log.Debug().Str("path", outputPath).Msg("writing to file")
		defer w.(*bufio.Writer).Flush()
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	log.Debug().
		Int("tables", len(out.SQLRemap.Tables)).
		Int("columns", len(out.SQLRemap.Columns)).
		Msg("convert complete")
	return nil
}

// sortRules orders the generated rules so the output is stable across runs.
func sortRules(r *mapping.Rules) {
	sort.Slice(r.Tables, func(i, j int) bool {
		return r.Tables[i].Old < r.Tables[j].Old
	})
	sort.Slice(r.Columns, func(i, j int) bool {
		if r.Columns[i].Table != r.Columns[j].Table {
			return r.Columns[i].Table < r.Columns[j].Table
		}
		return r.Columns[i].Old < r.Columns[j].Old
	})
}
