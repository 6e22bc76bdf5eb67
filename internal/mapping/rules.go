package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RulesFile is the top-level structure of the rules YAML.
type RulesFile struct {
	SQLRemap Rules `yaml:"sqlremap"`
}

// Rules contains the full rename configuration.
type Rules struct {
	Version float64      `yaml:"version"`
	Tables  []TableRule  `yaml:"tables"`
	Columns []ColumnRule `yaml:"columns"`
}

// TableRule renames one table.
type TableRule struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// ColumnRule renames one column. Table is the NEW table name.
type ColumnRule struct {
	Table string `yaml:"table"`
	Old   string `yaml:"old"`
	New   string `yaml:"new"`
}

// Records converts the rules into the relational record sets Build consumes.
func (r *Rules) Records() (tableRows, columnRows []Record) {
	for _, t := range r.Tables {
		tableRows = append(tableRows, Record{
			FieldOldTable: t.Old,
			FieldNewTable: t.New,
		})
	}
	for _, c := range r.Columns {
		columnRows = append(columnRows, Record{
			FieldTable:     c.Table,
			FieldOldColumn: c.Old,
			FieldNewColumn: c.New,
		})
	}
	return tableRows, columnRows
}

// LoadRules reads and unmarshals the YAML rules file.
func LoadRules(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

// LoadSet builds a mapping Set from either a YAML rules file or an .xlsx
// workbook with TableMappings/ColumnMappings sheets, chosen by extension.
func LoadSet(path string) (*Set, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		tableRows, columnRows, err := LoadWorkbook(path)
		if err != nil {
			return nil, fmt.Errorf("reading workbook %q: %w", path, err)
		}
		return Build(tableRows, columnRows)
	}

	rules, err := LoadRules(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %q: %w", path, err)
	}
	tableRows, columnRows := rules.SQLRemap.Records()
	return Build(tableRows, columnRows)
}
