package review

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Report is the JSON analysis report for one batch run.
type Report struct {
	ID          string                `json:"id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Summary     Summary               `json:"analysis_summary"`
	Files       map[string]FileReport `json:"file_details"`
}

// Summary aggregates the batch.
type Summary struct {
	TotalFiles      int `json:"total_files"`
	FilesWithIssues int `json:"files_with_issues"`
	TotalIssues     int `json:"total_issues"`
}

// FileReport lists one document's findings.
type FileReport struct {
	IssueCount int      `json:"issues_count"`
	Issues     []string `json:"issues"`
}

// BuildReport assembles the report for a set of results.
func BuildReport(results []Result) *Report {
	rep := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Files:       make(map[string]FileReport, len(results)),
	}
	for _, res := range results {
		issues := make([]string, 0, len(res.Findings))
		for _, f := range res.Findings {
			issues = append(issues, f.String())
		}
		rep.Files[res.Name] = FileReport{IssueCount: len(issues), Issues: issues}

		rep.Summary.TotalFiles++
		rep.Summary.TotalIssues += len(issues)
		if len(issues) > 0 {
			rep.Summary.FilesWithIssues++
		}
	}
	return rep
}

// Marshal renders the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
