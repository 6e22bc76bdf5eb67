// Package analyze runs the diagnostic passes over raw SQL text: structural
// sanity checks, un-migrated name detection against a mapping set, and
// best-effort semantic risk checks. Findings are accumulated and returned;
// no finding ever blocks the correction engine, which is a separate pipeline
// over the same input.
package analyze

// Severity classifies a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityError    Severity = "ERROR"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Finding is a single diagnostic record for one analyzed document. Findings
// are append-only: accumulated per document, never mutated.
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return string(f.Severity) + ": " + f.Message
}
