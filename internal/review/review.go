// Package review orchestrates the diagnostic and correction pipelines over a
// batch of SQL documents. Each document is processed independently and
// statelessly; a failure in one becomes a CRITICAL finding for that document
// only and never aborts the batch.
package review

import (
	"fmt"

	"github.com/bfv/sqlremap/internal/analyze"
	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/bfv/sqlremap/internal/rewrite"
	"github.com/rs/zerolog/log"
)

// Document is one SQL file to review. The name identifies it in reports;
// the engine never inspects it.
type Document struct {
	Name string
	Text string
}

// Result holds everything produced for one document.
type Result struct {
	Name      string
	Findings  []analyze.Finding
	Corrected string
}

// HasIssues reports whether any finding was recorded.
func (r Result) HasIssues() bool {
	return len(r.Findings) > 0
}

// Reviewer runs the analysis and correction pipelines against one mapping
// set. It holds no per-document state and is safe to reuse across a batch.
type Reviewer struct {
	set *mapping.Set
}

// New returns a Reviewer over the given mapping set.
func New(set *mapping.Set) *Reviewer {
	return &Reviewer{set: set}
}

// Analyze collects all findings for a document: structural checks, mapping
// audit, semantic audit. Stages never short-circuit each other.
func (r *Reviewer) Analyze(text string) []analyze.Finding {
	var findings []analyze.Finding
	findings = append(findings, analyze.Validate(text)...)
	findings = append(findings, analyze.AuditMappings(text, r.set)...)
	findings = append(findings, analyze.AuditSemantics(text)...)
	return findings
}

// Correct returns the rewritten text. Diagnostics never block it: the
// boundary rewrite does not require a successful parse.
func (r *Reviewer) Correct(text string) string {
	return rewrite.Apply(text, r.set)
}

// Process reviews a batch. Documents are independent; order is irrelevant
// and a panic while handling one is converted into a CRITICAL finding on its
// result, leaving the original text as the "corrected" output.
func (r *Reviewer) Process(docs []Document) []Result {
	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		results = append(results, r.processOne(doc))
	}
	return results
}

func (r *Reviewer) processOne(doc Document) (res Result) {
	defer func() {
		if cause := recover(); cause != nil {
			log.Error().Str("file", doc.Name).Any("cause", cause).Msg("document processing failed")
			res = Result{
				Name: doc.Name,
				Findings: []analyze.Finding{{
					Severity: analyze.SeverityCritical,
					Message:  fmt.Sprintf("failed to process file: %v", cause),
				}},
				Corrected: doc.Text,
			}
		}
	}()

	res = Result{
		Name:      doc.Name,
		Findings:  r.Analyze(doc.Text),
		Corrected: r.Correct(doc.Text),
	}
	log.Debug().Str("file", doc.Name).Int("findings", len(res.Findings)).Msg("document reviewed")
	return res
}
