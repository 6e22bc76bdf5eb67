// Package rewrite produces corrected SQL text from a mapping set. The
// engine is a pure fold over immutable text values: the table pass completes
// before the column pass begins, each rule application takes and returns a
// new string, and the input is never mutated. Applying the engine twice to
// an already-corrected document is a no-op as long as no rule's new name
// collides with another rule's old name.
package rewrite

import (
	"maps"
	"slices"
	"strings"

	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/bfv/sqlremap/internal/match"
	"github.com/rs/zerolog/log"
)

// Apply rewrites table references, then column references, and returns the
// corrected text. Diagnostics are a separate pipeline; the engine reports
// nothing back but the text.
func Apply(text string, set *mapping.Set) string {
	// The original input is the snapshot the column pass probes for old
	// table names: the table pass has already renamed them in the working
	// text, and probing that would mis-attribute freshly-renamed tables.
	snapshot := text
	text = applyTables(text, set)
	return applyColumns(text, snapshot, set)
}

// Rules apply in sorted order so the same mapping set always yields the
// same output text.
func applyTables(text string, set *mapping.Set) string {
	for _, oldTable := range slices.Sorted(maps.Keys(set.Tables)) {
		text = match.NewIdent(oldTable).Replace(text, set.Tables[oldTable])
	}
	return text
}

func applyColumns(text, snapshot string, set *mapping.Set) string {
	for _, newTable := range slices.Sorted(maps.Keys(set.Columns)) {
		cols := set.Columns[newTable]
		oldTable, ok := set.ReverseTables[newTable]
		if !ok {
			// Nothing anchors the co-occurrence check for this group.
			log.Debug().Str("table", newTable).Msg("column group has no table rule, skipped")
			continue
		}
		for _, oldCol := range slices.Sorted(maps.Keys(cols)) {
			text = applyColumn(text, snapshot, oldTable, oldCol, cols[oldCol])
		}
	}
	return text
}

// applyColumn rewrites one column rule. Alias-qualified occurrences are
// rewritten unconditionally: the qualification already disambiguates scope.
// Bare occurrences are rewritten line by line, and only when
//   - the match is not followed by '(' (a function call, not a column),
//   - the snapshot's FROM probe names the old table, and
//   - the line carries no already-qualified reference to the same column,
//     which the alias rule owns; rewriting both would corrupt the suffix.
//
// The qualified-reference guard is deliberately per-line so it cannot block
// renames on unrelated lines.
func applyColumn(text, snapshot, oldTable, oldCol, newCol string) string {
	qualified := match.NewQualified(oldCol)
	text = qualified.Rewrite(text, newCol)

	if !match.MentionsInFrom(snapshot, oldTable) {
		return text
	}

	bare := match.NewIdent(oldCol)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !bare.In(line) || qualified.In(line) {
			continue
		}
		lines[i] = bare.ReplaceBare(line, newCol)
	}
	return strings.Join(lines, "\n")
}

// FlatResult reports one flat rename rule's outcome.
type FlatResult struct {
	Old         string
	New         string
	Occurrences int
}

// ApplyFlat is the single-mapping "update" mode: a flat old -> new list with
// no table scoping. Every boundary-delimited occurrence is replaced, and the
// count returned for each rule is taken with the same pattern that performed
// the substitution, so counts always equal replacements.
func ApplyFlat(text string, renames map[string]string) (string, []FlatResult) {
	results := make([]FlatResult, 0, len(renames))
	for _, oldName := range slices.Sorted(maps.Keys(renames)) {
		newName := renames[oldName]
		ident := match.NewIdent(oldName)
		n := ident.Count(text)
		if n > 0 {
			text = ident.Replace(text, newName)
		}
		results = append(results, FlatResult{Old: oldName, New: newName, Occurrences: n})
	}
	return text, results
}
