package commands

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/bfv/sqlremap/internal/review"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewReviewCmd builds and returns the 'review' cobra command.
func NewReviewCmd() *cobra.Command {
	var outDir string
	var zipFile string
	var reportFile string

	cmd := &cobra.Command{
		Use:   "review <mappings.(yaml|xlsx)> <file.sql|dir>...",
		Short: "Analyze and rewrite a batch of SQL files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("out-dir", cmd.Flags().Lookup("out-dir")); err != nil {
				return err
			}
			return runReview(args[0], args[1:], viper.GetString("out-dir"), zipFile, reportFile)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write corrected_<name> files into this directory")
	cmd.Flags().StringVar(&zipFile, "zip", "", "Bundle the corrected files into this zip archive")
	cmd.Flags().StringVar(&reportFile, "report", "", "Write a JSON analysis report to this path")
	return cmd
}

// runReview is the entry point for the review command.
func runReview(mappingPath string, sqlPaths []string, outDir, zipPath, reportPath string) error {
	log.Debug().Str("mappings", mappingPath).Strs("sql", sqlPaths).Msg("review started")

	set, err := mapping.LoadSet(mappingPath)
	if err != nil {
		return fmt.Errorf("loading mappings: %w", err)
	}
	log.Info().
		Int("tableRules", len(set.Tables)).
		Int("columnRules", set.ColumnCount()).
		Msg("mappings loaded")

	docs, err := collectDocuments(sqlPaths)
	if err != nil {
		return err
	}

	results := review.New(set).Process(docs)

	filesWithIssues := 0
	totalIssues := 0
	for _, res := range results {
		if res.HasIssues() {
			filesWithIssues++
		}
		totalIssues += len(res.Findings)
	}
	log.Info().
		Int("files", len(results)).
		Int("filesWithIssues", filesWithIssues).
		Int("issues", totalIssues).
		Msg("review complete")

	if outDir != "" {
		if err := writeCorrected(results, outDir); err != nil {
			return err
		}
	}
	if zipPath != "" {
		if err := writeZip(results, zipPath); err != nil {
			return err
		}
	}
	if reportPath != "" {
		if err := writeReport(results, reportPath); err != nil {
			return err
		}
	}
	return nil
}

// writeCorrected publishes each corrected document as corrected_<name>.
func writeCorrected(results []review.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %q: %w", dir, err)
	}
	for _, res := range results {
		path := filepath.Join(dir, correctedName(res.Name))
		if err := os.WriteFile(path, []byte(res.Corrected), 0o644); err != nil {
			return fmt.Errorf("writing %q: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("corrected file written")
	}
	return nil
}

// writeZip bundles the corrected documents into one archive.
func writeZip(results []review.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating zip %q: %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, res := range results {
		w, err := zw.Create(correctedName(res.Name))
		if err != nil {
			zw.Close()
			return fmt.Errorf("adding %q to zip: %w", res.Name, err)
		}
		if _, err := w.Write([]byte(res.Corrected)); err != nil {
			zw.Close()
			return fmt.Errorf("writing %q to zip: %w", res.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip: %w", err)
	}
	log.Debug().Str("path", path).Int("files", len(results)).Msg("zip written")
	return nil
}
