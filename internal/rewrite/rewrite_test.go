package rewrite

import (
	"sort"
	"testing"

	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSet(t *testing.T, tableRows, columnRows []mapping.Record) *mapping.Set {
	t.Helper()
	set, err := mapping.Build(tableRows, columnRows)
	require.NoError(t, err)
	return set
}

func customerSet(t *testing.T) *mapping.Set {
	return buildSet(t,
		[]mapping.Record{
			{mapping.FieldOldTable: "customers", mapping.FieldNewTable: "client"},
		},
		[]mapping.Record{
			{mapping.FieldTable: "client", mapping.FieldOldColumn: "cust_id", mapping.FieldNewColumn: "client_id"},
		},
	)
}

func TestApplyRenamesTablesAndColumns(t *testing.T) {
	set := customerSet(t)

	got := Apply("SELECT c.cust_id FROM customers c", set)
	assert.Equal(t, "SELECT c.client_id FROM client c", got)
}

func TestApplyBoundarySafety(t *testing.T) {
	set := buildSet(t,
		[]mapping.Record{{mapping.FieldOldTable: "order", mapping.FieldNewTable: "orders_v2"}},
		nil,
	)

	got := Apply("SELECT * FROM order JOIN reorder_log ON 1=1; SELECT * FROM orders", set)
	assert.Equal(t, "SELECT * FROM orders_v2 JOIN reorder_log ON 1=1; SELECT * FROM orders", got)
}

func TestApplyIdempotent(t *testing.T) {
	set := customerSet(t)
	text := "SELECT c.cust_id, cust_id FROM customers c WHERE cust_id > 5"

	once := Apply(text, set)
	twice := Apply(once, set)
	assert.Equal(t, once, twice)
}

func TestApplyReplacementCaseWins(t *testing.T) {
	set := customerSet(t)

	got := Apply("SELECT * FROM Customers", set)
	assert.Equal(t, "SELECT * FROM client", got)

	got = Apply("SELECT * FROM CUSTOMERS", set)
	assert.Equal(t, "SELECT * FROM client", got)
}

func TestApplyBareColumnRequiresTableInFrom(t *testing.T) {
	set := customerSet(t)

	// The old table never appears in a FROM clause, so bare cust_id may
	// belong to some other table and stays untouched.
	got := Apply("SELECT cust_id FROM suppliers", set)
	assert.Equal(t, "SELECT cust_id FROM suppliers", got)

	// Qualified references are rewritten regardless: the alias already
	// pins the scope.
	got = Apply("SELECT x.cust_id FROM suppliers x", set)
	assert.Equal(t, "SELECT x.client_id FROM suppliers x", got)
}

func TestApplyBareColumnWithTableInFrom(t *testing.T) {
	set := customerSet(t)

	got := Apply("SELECT cust_id FROM customers WHERE cust_id > 5", set)
	assert.Equal(t, "SELECT client_id FROM client WHERE client_id > 5", got)
}

func TestApplyProbesOriginalTableName(t *testing.T) {
	set := customerSet(t)

	// The table pass renames customers before the column pass runs; the
	// FROM probe must still recognize the document as selecting from the
	// mapped table.
	got := Apply("SELECT cust_id\nFROM customers", set)
	assert.Equal(t, "SELECT client_id\nFROM client", got)
}

func TestApplySkipsFunctionCalls(t *testing.T) {
	set := customerSet(t)

	got := Apply("SELECT cust_id(7), cust_id FROM customers", set)
	assert.Equal(t, "SELECT cust_id(7), client_id FROM client", got)
}

func TestApplyMixedQualifiedAndBareLine(t *testing.T) {
	set := customerSet(t)

	got := Apply("SELECT c.cust_id, cust_id FROM customers c", set)
	assert.Equal(t, "SELECT c.client_id, client_id FROM client c", got)
}

func TestApplyConsolidatedTablesDeterministic(t *testing.T) {
	// Two old tables map onto one new name; the last declared one anchors
	// the bare-column probe, so repeated builds must all rewrite the same
	// way.
	for i := 0; i < 50; i++ {
		set := buildSet(t,
			[]mapping.Record{
				{mapping.FieldOldTable: "clients_old", mapping.FieldNewTable: "client"},
				{mapping.FieldOldTable: "customers", mapping.FieldNewTable: "client"},
			},
			[]mapping.Record{
				{mapping.FieldTable: "client", mapping.FieldOldColumn: "cust_id", mapping.FieldNewColumn: "client_id"},
			},
		)
		got := Apply("SELECT cust_id FROM customers", set)
		require.Equal(t, "SELECT client_id FROM client", got)
	}
}

func TestApplyColumnGroupWithoutTableRuleSkipped(t *testing.T) {
	set := buildSet(t,
		nil,
		[]mapping.Record{
			{mapping.FieldTable: "client", mapping.FieldOldColumn: "cust_id", mapping.FieldNewColumn: "client_id"},
		},
	)

	got := Apply("SELECT cust_id FROM client", set)
	assert.Equal(t, "SELECT cust_id FROM client", got)
}

func TestApplyEmptyMappingSet(t *testing.T) {
	set := buildSet(t, nil, nil)
	text := "SELECT cust_id FROM customers"
	assert.Equal(t, text, Apply(text, set))
}

func TestApplyFlat(t *testing.T) {
	text := "SELECT cust_id FROM customers WHERE cust_id > 5"
	got, results := ApplyFlat(text, map[string]string{
		"cust_id":   "client_id",
		"customers": "client",
		"absent":    "whatever",
	})

	assert.Equal(t, "SELECT client_id FROM client WHERE client_id > 5", got)

	sort.Slice(results, func(i, j int) bool { return results[i].Old < results[j].Old })
	require.Len(t, results, 3)
	assert.Equal(t, FlatResult{Old: "absent", New: "whatever", Occurrences: 0}, results[0])
	assert.Equal(t, FlatResult{Old: "cust_id", New: "client_id", Occurrences: 2}, results[1])
	assert.Equal(t, FlatResult{Old: "customers", New: "client", Occurrences: 1}, results[2])
}
