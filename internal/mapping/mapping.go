// Package mapping normalizes and indexes rename rules for SQL identifiers.
// A Set is built once per run from two relational record sets (table rules
// and column rules), is immutable afterwards, and is discarded when the run
// ends. Nothing is persisted.
package mapping

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Required field names of the two record sets. Column rules are keyed by the
// table's NEW name, matching the workbook layout the rules come from.
const (
	FieldOldTable  = "OldTableName"
	FieldNewTable  = "NewTableName"
	FieldTable     = "TableName"
	FieldOldColumn = "OldColumnName"
	FieldNewColumn = "NewColumnName"
)

// Record is one parsed rule row, keyed by field name. Parsing rows out of
// workbooks or rules files is the loader's job; Build only consumes them.
type Record map[string]string

// ConfigError reports a malformed mapping input. It is fatal to the whole
// run: no correction can proceed without a usable rule set.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "mapping configuration: " + e.Reason
}

// Set is the fully indexed, run-scoped collection of rename rules.
// The maps are read-only after Build.
type Set struct {
	// Tables maps old table name to new table name.
	Tables map[string]string
	// ReverseTables maps new table name back to old, used to anchor column
	// lookups (column rules name the new table).
	ReverseTables map[string]string
	// Columns maps new table name to its old-column -> new-column renames.
	Columns map[string]map[string]string
}

// Build normalizes the rule rows into an indexed Set. Every name field is
// whitespace-trimmed; rows missing a required value are dropped. Duplicate
// old names are resolved last-wins, matching the source workbooks' observed
// behavior; the auditor makes the overwrite visible rather than erroring.
// A required field name absent from a record set entirely is a ConfigError
// and no partial Set is returned.
func Build(tableRows, columnRows []Record) (*Set, error) {
	if err := requireFields(tableRows, "table rules", FieldOldTable, FieldNewTable); err != nil {
		return nil, err
	}
	if err := requireFields(columnRows, "column rules", FieldTable, FieldOldColumn, FieldNewColumn); err != nil {
		return nil, err
	}

	s := &Set{
		Tables:        make(map[string]string, len(tableRows)),
		ReverseTables: make(map[string]string, len(tableRows)),
		Columns:       make(map[string]map[string]string),
	}

	dropped := 0
	for _, row := range tableRows {
		oldName := strings.TrimSpace(row[FieldOldTable])
		newName := strings.TrimSpace(row[FieldNewTable])
		if oldName == "" || newName == "" {
			dropped++
			continue
		}
		s.Tables[oldName] = newName
	}
	// Reverse entries follow declaration order, not map order: when several
	// old tables consolidate into one new name, the last declared old name
	// is the anchor.
	for _, row := range tableRows {
		oldName := strings.TrimSpace(row[FieldOldTable])
		newName := strings.TrimSpace(row[FieldNewTable])
		if oldName == "" || newName == "" || s.Tables[oldName] != newName {
			continue
		}
		s.ReverseTables[newName] = oldName
	}

	for _, row := range columnRows {
		table := strings.TrimSpace(row[FieldTable])
		oldCol := strings.TrimSpace(row[FieldOldColumn])
		newCol := strings.TrimSpace(row[FieldNewColumn])
		if table == "" || oldCol == "" || newCol == "" {
			dropped++
			continue
		}
		cols, ok := s.Columns[table]
		if !ok {
			cols = make(map[string]string)
			s.Columns[table] = cols
		}
		cols[oldCol] = newCol
	}

	log.Debug().
		Int("tables", len(s.Tables)).
		Int("columnGroups", len(s.Columns)).
		Int("droppedRows", dropped).
		Msg("mapping set built")
	return s, nil
}

// ColumnCount returns the total number of column rules across all tables.
func (s *Set) ColumnCount() int {
	n := 0
	for _, cols := range s.Columns {
		n += len(cols)
	}
	return n
}

// requireFields checks that each required field name occurs in at least one
// record of a non-empty set. Empty record sets are allowed (an empty Set is
// still usable; it just renames nothing).
func requireFields(rows []Record, what string, fields ...string) error {
	if len(rows) == 0 {
		return nil
	}
	for _, field := range fields {
		found := false
		for _, row := range rows {
			if _, ok := row[field]; ok {
				found = true
				break
			}
		}
		if !found {
			return &ConfigError{Reason: what + " are missing required field '" + field + "'"}
		}
	}
	return nil
}
