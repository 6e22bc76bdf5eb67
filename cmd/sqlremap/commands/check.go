package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/bfv/sqlremap/internal/review"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewCheckCmd builds and returns the 'check' cobra command.
func NewCheckCmd() *cobra.Command {
	var outputFile string
	var reportFile string

	cmd := &cobra.Command{
		Use:   "check <mappings.(yaml|xlsx)> <file.sql|dir>...",
		Short: "Analyze SQL files against rename mappings without rewriting them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], args[1:], outputFile, reportFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	cmd.Flags().StringVar(&reportFile, "report", "", "Write a JSON analysis report to this path")
	return cmd
}

// runCheck is the entry point for the check command.
func runCheck(mappingPath string, sqlPaths []string, outputPath, reportPath string) error {
	log.Debug().Str("mappings", mappingPath).Strs("sql", sqlPaths).Msg("check started")

	set, err := mapping.LoadSet(mappingPath)
	if err != nil {
		return fmt.Errorf("loading mappings: %w", err)
	}

	docs, err := collectDocuments(sqlPaths)
	if err != nil {
		return err
	}

	reviewer := review.New(set)
	var rows []findingRow
	var results []review.Result
	for _, doc := range docs {
		findings := reviewer.Analyze(doc.Text)
		results = append(results, review.Result{Name: doc.Name, Findings: findings})
		for _, f := range findings {
			rows = append(rows, findingRow{doc.Name, string(f.Severity), f.Message})
		}
	}

	if reportPath != "" {
		if err := writeReport(results, reportPath); err != nil {
			return err
		}
	}

	if len(rows) == 0 {
		fmt.Println("No issues found.")
		return nil
	}

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	printFindingsTable(out, rows)
	log.Debug().Int("findings", len(rows)).Msg("check complete")
	return nil
}

// findingRow holds one line of check output.
type findingRow struct {
	file     string
	severity string
	message  string
}

// printFindingsTable renders the findings as a fixed-column table.
func printFindingsTable(w io.Writer, rows []findingRow) {
	// Determine column widths dynamically.
	const (
		hFile     = "FILE"
		hSeverity = "SEVERITY"
		hMessage  = "MESSAGE"
	)

	wFile := len(hFile)
	wSeverity := len(hSeverity)

	for _, r := range rows {
		if len(r.file) > wFile {
			wFile = len(r.file)
		}
		if len(r.severity) > wSeverity {
			wSeverity = len(r.severity)
		}
	}

	// Add padding between columns.
	wFile += 2
	wSeverity += 2

	fmtRow := func(f, s, m string) {
		fmt.Fprintf(w, "%-*s%-*s%s\n", wFile, f, wSeverity, s, m)
	}

	fmtRow(hFile, hSeverity, hMessage)
	fmtRow(strings.Repeat("-", wFile-2), strings.Repeat("-", wSeverity-2), strings.Repeat("-", len(hMessage)))

	for _, r := range rows {
		fmtRow(r.file, r.severity, r.message)
	}
}

// writeReport renders the JSON analysis report for a set of results.
func writeReport(results []review.Result, path string) error {
	rep := review.BuildReport(results)
	data, err := rep.Marshal()
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %q: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("report written")
	return nil
}
