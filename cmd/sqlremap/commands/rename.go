package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bfv/sqlremap/internal/rewrite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRenameCmd builds and returns the 'rename' cobra command. It is the flat
// update mode: a plain old=new list with no table scoping, reporting how
// many occurrences each rule replaced.
func NewRenameCmd() *cobra.Command {
	var sets []string
	var outputFile string

	cmd := &cobra.Command{
		Use:   "rename <file.sql> --set old=new [--set old=new ...]",
		Short: "Apply flat identifier renames to a SQL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(args[0], sets, outputFile)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Rename rule as old=new (repeatable)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	return cmd
}

// runRename is the entry point for the rename command.
func runRename(sqlPath string, sets []string, outputPath string) error {
	log.Debug().Str("sql", sqlPath).Strs("set", sets).Msg("rename started")

	if len(sets) == 0 {
		return fmt.Errorf("at least one --set old=new rule is required")
	}

	renames := make(map[string]string, len(sets))
	for _, s := range sets {
		oldName, newName, ok := strings.Cut(s, "=")
		oldName = strings.TrimSpace(oldName)
		newName = strings.TrimSpace(newName)
		if !ok || oldName == "" || newName == "" {
			return fmt.Errorf("invalid rename rule %q, expected old=new", s)
		}
		renames[oldName] = newName
	}

	doc, err := readDocument(sqlPath)
	if err != nil {
		return err
	}

	corrected, results := rewrite.ApplyFlat(doc.Text, renames)
	sort.Slice(results, func(i, j int) bool { return results[i].Old < results[j].Old })
	for _, res := range results {
		log.Info().
			Str("old", res.Old).
			Str("new", res.New).
			Int("occurrences", res.Occurrences).
			Msg("rename applied")
	}

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file %q: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	if _, err := io.WriteString(out, corrected); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	log.Debug().Msg("rename complete")
	return nil
}
