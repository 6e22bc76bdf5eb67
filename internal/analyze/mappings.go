package analyze

import (
	"fmt"
	"maps"
	"slices"

	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/bfv/sqlremap/internal/match"
)

// AuditMappings reports SQL text still referencing OLD names the mapping set
// declares superseded. It is independent of whether a rewrite will be
// applied: one INFO finding per rule that matches at least once, never one
// per occurrence.
//
// The bare-column check is a co-occurrence heuristic, not scope resolution:
// the column must appear as a boundary-delimited token and the document's
// FROM probe must name the column's table (its post-rename name, which is
// what column rules are keyed by) anywhere in the text.
func AuditMappings(text string, set *mapping.Set) []Finding {
	var findings []Finding

	// Rules are visited in sorted order so finding order, and with it the
	// report output, is stable across runs.
	for _, oldTable := range slices.Sorted(maps.Keys(set.Tables)) {
		if match.NewIdent(oldTable).In(text) {
			findings = append(findings, Finding{
				SeverityInfo,
				fmt.Sprintf("table mapping: '%s' should be '%s'", oldTable, set.Tables[oldTable]),
			})
		}
	}

	for _, table := range slices.Sorted(maps.Keys(set.Columns)) {
		cols := set.Columns[table]
		for _, oldCol := range slices.Sorted(maps.Keys(cols)) {
			if columnReferenced(text, table, oldCol) {
				findings = append(findings, Finding{
					SeverityInfo,
					fmt.Sprintf("column mapping: '%s' should be '%s' (in table '%s')", oldCol, cols[oldCol], table),
				})
			}
		}
	}

	return findings
}

func columnReferenced(text, table, oldCol string) bool {
	// Qualified form: table.old_column.
	if match.NewIdent(table + "." + oldCol).In(text) {
		return true
	}
	// Bare form, anchored by a FROM clause naming the table anywhere in the
	// document.
	return match.NewIdent(oldCol).In(text) && match.MentionsInFrom(text, table)
}
