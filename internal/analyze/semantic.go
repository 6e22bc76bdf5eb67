package analyze

import (
	"fmt"
	"strings"

	"github.com/bfv/sqlremap/internal/sqlscan"
	"github.com/rs/zerolog/log"
)

// Date/time-like hints in a comparison's left operand suppress the
// string-comparison warning: dates routinely compare against quoted
// literals.
var temporalHints = []string{"DATE", "TIME", "TIMESTAMP"}

// AuditSemantics runs best-effort heuristic checks over a shallow parse of
// each statement: joins lacking an ON condition, and WHERE comparisons of a
// non-temporal operand against a quoted literal. The auditor is advisory
// only: a statement it cannot shallow-parse yields zero findings and never
// aborts the run.
func AuditSemantics(text string) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Any("cause", r).Msg("semantic check skipped")
			findings = nil
		}
	}()

	for _, stmt := range sqlscan.Statements(text) {
		for _, segment := range sqlscan.JoinSegments(stmt) {
			if !sqlscan.HasJoinCondition(segment) {
				findings = append(findings, Finding{SeverityWarning, "join without ON clause detected"})
			}
		}

		where := sqlscan.WhereClause(stmt)
		if where == "" {
			continue
		}
		for _, comp := range sqlscan.Comparisons(where) {
			if hasTemporalHint(comp.Left) {
				continue
			}
			findings = append(findings, Finding{
				SeverityWarning,
				fmt.Sprintf("possible string-to-other-type comparison: %s = %s", comp.Left, comp.Right),
			})
		}
	}

	return findings
}

func hasTemporalHint(name string) bool {
	upper := strings.ToUpper(name)
	for _, hint := range temporalHints {
		if strings.Contains(upper, hint) {
			return true
		}
	}
	return false
}
