// Package match builds boundary-safe, case-insensitive patterns for SQL
// identifiers. A match requires a word boundary on both sides so that a
// rename rule for "order" never touches "orders" or "reorder_log". The same
// pattern drives both occurrence counting and substitution, so reported
// counts always equal performed replacements.
package match

import (
	"regexp"
	"strings"
)

// aliasExpr matches a bare word token usable as a table alias prefix.
const aliasExpr = `[A-Za-z_][A-Za-z0-9_]*`

// Ident is a compiled boundary-safe pattern for a single identifier.
type Ident struct {
	re *regexp.Regexp
}

// NewIdent compiles the pattern for name. The name is quoted literally, so
// dotted names like "prod.inventory" are matched as-is.
func NewIdent(name string) *Ident {
	return &Ident{re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)}
}

// In reports whether the identifier occurs in text.
func (m *Ident) In(text string) bool {
	return m.re.MatchString(text)
}

// Count returns the number of boundary-delimited occurrences in text.
func (m *Ident) Count(text string) int {
	return len(m.re.FindAllStringIndex(text, -1))
}

// Replace substitutes every occurrence with repl, inserted verbatim. The
// replacement's declared case always wins over the case variant matched.
func (m *Ident) Replace(text, repl string) string {
	return m.re.ReplaceAllLiteralString(text, repl)
}

// ReplaceBare substitutes occurrences in line that are NOT followed by an
// opening parenthesis (ignoring whitespace). This keeps function calls whose
// name coincides with a column name untouched. RE2 has no lookahead, so the
// guard is an explicit scan after each match.
func (m *Ident) ReplaceBare(line, repl string) string {
	locs := m.re.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return line
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		if followedByParen(line[loc[1]:]) {
			continue
		}
		b.WriteString(line[prev:loc[0]])
		b.WriteString(repl)
		prev = loc[1]
	}
	b.WriteString(line[prev:])
	return b.String()
}

func followedByParen(rest string) bool {
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case ' ', '\t':
			continue
		case '(':
			return true
		default:
			return false
		}
	}
	return false
}

// Qualified is a compiled pattern for `<alias>.<column>` references, where
// the alias is any bare word token.
type Qualified struct {
	re *regexp.Regexp
}

// NewQualified compiles the alias-qualified pattern for column.
func NewQualified(column string) *Qualified {
	return &Qualified{re: regexp.MustCompile(`(?i)\b(` + aliasExpr + `)\.` + regexp.QuoteMeta(column) + `\b`)}
}

// In reports whether any alias-qualified occurrence exists in text.
func (q *Qualified) In(text string) bool {
	return q.re.MatchString(text)
}

// Rewrite replaces every `<alias>.<old>` occurrence with `<alias>.<newCol>`,
// preserving the alias as written.
func (q *Qualified) Rewrite(text, newCol string) string {
	return q.re.ReplaceAllString(text, "${1}."+escapeRepl(newCol))
}

// escapeRepl protects literal dollar signs from template expansion.
func escapeRepl(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// MentionsInFrom reports whether the text contains a FROM clause that names
// table. The probe scans the whole document, not the enclosing statement:
// in a multi-statement document a FROM clause in one statement can satisfy
// the check for another. That matches the documented heuristic and is not
// tightened here.
func MentionsInFrom(text, table string) bool {
	re := regexp.MustCompile(`(?is)\bFROM\b.*\b` + regexp.QuoteMeta(table) + `\b`)
	return re.MatchString(text)
}
