package analyze

import (
	"strings"

	"github.com/bfv/sqlremap/internal/sqlscan"
)

// Validate runs the cheap structural checks over a document. All checks
// always run; findings are appended, never short-circuited, and none of them
// halts the later stages.
func Validate(text string) []Finding {
	var findings []Finding

	if len(sqlscan.Statements(text)) == 0 {
		findings = append(findings, Finding{SeverityCritical, "parsing failed: no SQL statements found"})
	}

	upper := strings.ToUpper(text)
	if !strings.Contains(upper, "SELECT") {
		findings = append(findings, Finding{SeverityError, "missing SELECT clause"})
	}
	if !strings.Contains(upper, "FROM") {
		findings = append(findings, Finding{SeverityError, "missing FROM clause"})
	}
	if strings.Count(text, "(") != strings.Count(text, ")") {
		findings = append(findings, Finding{SeverityError, "unbalanced parentheses"})
	}

	return findings
}
