package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/bfv/sqlremap/internal/rewrite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewFixCmd builds and returns the 'fix' cobra command.
func NewFixCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "fix <mappings.(yaml|xlsx)> <file.sql>",
		Short: "Apply rename mappings to a SQL file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bind the cobra flag into viper so it can be read uniformly.
			if err := viper.BindPFlag("output", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			return runFix(args[0], args[1], viper.GetString("output"))
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	return cmd
}

// runFix is the entry point for the fix command.
func runFix(mappingPath, sqlPath, outputPath string) error {
	log.Debug().Str("mappings", mappingPath).Str("sql", sqlPath).Str("output", outputPath).Msg("fix started")

	set, err := mapping.LoadSet(mappingPath)
	if err != nil {
		return fmt.Errorf("loading mappings: %w", err)
	}
	log.Debug().
		Int("tableRules", len(set.Tables)).
		Int("columnRules", set.ColumnCount()).
		Msg("mappings loaded")

	doc, err := readDocument(sqlPath)
	if err != nil {
		return err
	}

	corrected := rewrite.Apply(doc.Text, set)

	// Resolve output writer.
	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file %q: %w", outputPath, err)
		}
		defer f.Close()
		out = f
		log.Debug().Str("path", outputPath).Msg("writing to file")
	}

	if _, err := io.WriteString(out, corrected); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	log.Debug().Msg("fix complete")
	return nil
}
