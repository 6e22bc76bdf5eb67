// Package sqlscan is a light tokenizer over raw SQL text. It produces a flat
// list of statements plus shallow clause probes; it is not a SQL parser and
// performs no scope resolution.
package sqlscan

import (
	"regexp"
	"strings"
)

// Statements splits text into individual statements on semicolons that sit
// outside string literals and comments. A trailing statement without a
// terminator is kept. Whitespace-only fragments are dropped, so an empty or
// blank document yields no statements.
func Statements(text string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := byte(0)
	inLineComment := false
	inBlockComment := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		var next byte
		if i+1 < len(text) {
			next = text[i+1]
		}

		if !inString {
			if ch == '-' && next == '-' && !inBlockComment {
				inLineComment = true
			}
			if ch == '/' && next == '*' && !inLineComment {
				inBlockComment = true
			}
			if ch == '*' && next == '/' && inBlockComment {
				inBlockComment = false
				current.WriteByte(ch)
				current.WriteByte(next)
				i++
				continue
			}
			if ch == '\n' && inLineComment {
				inLineComment = false
			}
		}

		if !inLineComment && !inBlockComment {
			if (ch == '\'' || ch == '"') && !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar && inString {
				inString = false
			}
		}

		if ch == ';' && !inString && !inLineComment && !inBlockComment {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

var (
	reJoin       = regexp.MustCompile(`(?i)\b(?:(?:inner|left|right|full|cross)\s+(?:outer\s+)?)?join\b`)
	reOn         = regexp.MustCompile(`(?i)\bon\b`)
	reWhere      = regexp.MustCompile(`(?i)\bwhere\b`)
	reClauseEnd  = regexp.MustCompile(`(?is)\b(?:group\s+by|order\s+by|having|limit|offset|union|window)\b`)
	reComparison = regexp.MustCompile(`(?i)([A-Za-z_][A-Za-z0-9_.]*)\s*(=|<>|!=|<=|>=|<|>)\s*('[^']*')`)
)

// JoinSegments returns, for each join keyword in the statement, the text
// between that keyword and the next join keyword (or the end of the
// statement). The segment is where the join's ON condition would appear.
func JoinSegments(stmt string) []string {
	locs := reJoin.FindAllStringIndex(stmt, -1)
	if len(locs) == 0 {
		return nil
	}
	segments := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(stmt)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, stmt[loc[1]:end])
	}
	return segments
}

// HasJoinCondition reports whether a join segment carries an ON keyword.
func HasJoinCondition(segment string) bool {
	return reOn.MatchString(segment)
}

// WhereClause returns the body of the statement's WHERE clause, or "" when
// the statement has none. The clause is cut off at the next major clause
// keyword; nested subquery clauses are not distinguished.
func WhereClause(stmt string) string {
	loc := reWhere.FindStringIndex(stmt)
	if loc == nil {
		return ""
	}
	body := stmt[loc[1]:]
	if end := reClauseEnd.FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}
	return body
}

// Comparison is a single shallow-parsed comparison from a WHERE clause.
type Comparison struct {
	Left  string
	Op    string
	Right string
}

// Comparisons extracts `<name> <op> <'literal'>` comparisons from a WHERE
// clause body. Only comparisons whose right-hand side is a quoted literal
// are reported; anything the pattern cannot read is skipped.
func Comparisons(whereBody string) []Comparison {
	matches := reComparison.FindAllStringSubmatch(whereBody, -1)
	if len(matches) == 0 {
		return nil
	}
	comps := make([]Comparison, 0, len(matches))
	for _, m := range matches {
		comps = append(comps, Comparison{Left: m[1], Op: m[2], Right: m[3]})
	}
	return comps
}
