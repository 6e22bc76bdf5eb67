package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableRow(oldName, newName string) Record {
	return Record{FieldOldTable: oldName, FieldNewTable: newName}
}

func columnRow(table, oldCol, newCol string) Record {
	return Record{FieldTable: table, FieldOldColumn: oldCol, FieldNewColumn: newCol}
}

func TestBuildIndexesRules(t *testing.T) {
	set, err := Build(
		[]Record{tableRow("customers", "client"), tableRow("orders_legacy", "transactions")},
		[]Record{columnRow("client", "cust_id", "client_id"), columnRow("client", "name", "client_name")},
	)
	require.NoError(t, err)

	assert.Equal(t, "client", set.Tables["customers"])
	assert.Equal(t, "customers", set.ReverseTables["client"])
	assert.Equal(t, "client_id", set.Columns["client"]["cust_id"])
	assert.Equal(t, 2, set.ColumnCount())
}

func TestBuildTrimsWhitespace(t *testing.T) {
	set, err := Build(
		[]Record{tableRow("  customers ", " client\t")},
		[]Record{columnRow(" client ", " cust_id", "client_id ")},
	)
	require.NoError(t, err)

	assert.Equal(t, "client", set.Tables["customers"])
	assert.Equal(t, "client_id", set.Columns["client"]["cust_id"])
}

func TestBuildDropsIncompleteRows(t *testing.T) {
	set, err := Build(
		[]Record{tableRow("customers", "client"), tableRow("orphan", ""), tableRow("", "new")},
		[]Record{columnRow("client", "", "client_id")},
	)
	require.NoError(t, err)

	assert.Len(t, set.Tables, 1)
	assert.Empty(t, set.Columns)
}

func TestBuildDuplicateOldNameLastWins(t *testing.T) {
	set, err := Build(
		[]Record{tableRow("customers", "client"), tableRow("customers", "client_v2")},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, "client_v2", set.Tables["customers"])
	assert.Equal(t, "customers", set.ReverseTables["client_v2"])
}

func TestBuildConsolidatedTablesReverseAnchor(t *testing.T) {
	set, err := Build(
		[]Record{tableRow("customers", "client"), tableRow("clients_old", "client")},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, "client", set.Tables["customers"])
	assert.Equal(t, "client", set.Tables["clients_old"])
	// Two old tables consolidating into one new name: the last declared old
	// name anchors the reverse lookup, regardless of map iteration order.
	assert.Equal(t, "clients_old", set.ReverseTables["client"])
}

func TestBuildMissingRequiredField(t *testing.T) {
	_, err := Build([]Record{{"WrongField": "x"}}, nil)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), FieldOldTable)

	_, err = Build(nil, []Record{{FieldTable: "t", FieldOldColumn: "a"}})
	require.ErrorAs(t, err, &cfgErr)
}

func TestBuildEmptyInputs(t *testing.T) {
	set, err := Build(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, set.Tables)
	assert.Empty(t, set.Columns)
}

func TestRulesRecords(t *testing.T) {
	rules := Rules{
		Tables:  []TableRule{{Old: "customers", New: "client"}},
		Columns: []ColumnRule{{Table: "client", Old: "cust_id", New: "client_id"}},
	}
	tableRows, columnRows := rules.Records()
	require.Len(t, tableRows, 1)
	require.Len(t, columnRows, 1)
	assert.Equal(t, "customers", tableRows[0][FieldOldTable])
	assert.Equal(t, "client_id", columnRows[0][FieldNewColumn])
}

func TestLoadSetFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `sqlremap:
  version: 1
  tables:
    - old: customers
      new: client
  columns:
    - table: client
      old: cust_id
      new: client_id
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadSet(path)
	require.NoError(t, err)
	assert.Equal(t, "client", set.Tables["customers"])
	assert.Equal(t, "client_id", set.Columns["client"]["cust_id"])
}

func TestLoadSetMissingFile(t *testing.T) {
	_, err := LoadSet(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
