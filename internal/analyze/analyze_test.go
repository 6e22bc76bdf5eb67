package analyze

import (
	"testing"

	"github.com/bfv/sqlremap/internal/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(t *testing.T) *mapping.Set {
	t.Helper()
	set, err := mapping.Build(
		[]mapping.Record{
			{mapping.FieldOldTable: "customers", mapping.FieldNewTable: "client"},
			{mapping.FieldOldTable: "orders_legacy", mapping.FieldNewTable: "transactions"},
		},
		[]mapping.Record{
			{mapping.FieldTable: "client", mapping.FieldOldColumn: "cust_id", mapping.FieldNewColumn: "client_id"},
		},
	)
	require.NoError(t, err)
	return set
}

func messages(findings []Finding) []string {
	msgs := make([]string, 0, len(findings))
	for _, f := range findings {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

func TestValidateMissingClauses(t *testing.T) {
	findings := Validate("UPDATE foo SET x=1")
	require.Len(t, findings, 2)
	assert.Contains(t, messages(findings), "missing SELECT clause")
	assert.Contains(t, messages(findings), "missing FROM clause")
	for _, f := range findings {
		assert.Equal(t, SeverityError, f.Severity)
	}
}

func TestValidateUnbalancedParentheses(t *testing.T) {
	findings := Validate("SELECT (1+2 FROM t")
	require.Len(t, findings, 1)
	assert.Equal(t, "unbalanced parentheses", findings[0].Message)
}

func TestValidateEmptyDocument(t *testing.T) {
	findings := Validate("")
	require.NotEmpty(t, findings)
	assert.Equal(t, SeverityCritical, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "parsing failed")
	// All checks still run; nothing short-circuits.
	assert.Contains(t, messages(findings), "missing SELECT clause")
	assert.Contains(t, messages(findings), "missing FROM clause")
}

func TestValidateCleanDocument(t *testing.T) {
	assert.Empty(t, Validate("SELECT (a) FROM t"))
}

func TestAuditMappingsOneFindingPerRule(t *testing.T) {
	set := testSet(t)

	// Two occurrences of the same old table yield exactly one finding.
	findings := AuditMappings("SELECT * FROM customers; SELECT id FROM customers", set)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityInfo, findings[0].Severity)
	assert.Equal(t, "table mapping: 'customers' should be 'client'", findings[0].Message)
}

func TestAuditMappingsBoundarySafe(t *testing.T) {
	set := testSet(t)
	assert.Empty(t, AuditMappings("SELECT * FROM customers_archive", set))
}

func TestAuditMappingsQualifiedColumn(t *testing.T) {
	set := testSet(t)

	findings := AuditMappings("SELECT client.cust_id FROM somewhere", set)
	require.Len(t, findings, 1)
	assert.Equal(t, "column mapping: 'cust_id' should be 'client_id' (in table 'client')", findings[0].Message)
}

func TestAuditMappingsBareColumnNeedsFromClause(t *testing.T) {
	set := testSet(t)

	findings := AuditMappings("SELECT cust_id FROM client", set)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "cust_id")

	// Without the table in a FROM clause the bare column is not flagged.
	assert.Empty(t, AuditMappings("SELECT cust_id FROM other_table", set))
}

func TestAuditMappingsStableFindingOrder(t *testing.T) {
	set, err := mapping.Build(
		[]mapping.Record{
			{mapping.FieldOldTable: "zebra", mapping.FieldNewTable: "zebra_v2"},
			{mapping.FieldOldTable: "apple", mapping.FieldNewTable: "apple_v2"},
		},
		nil,
	)
	require.NoError(t, err)

	// Findings come out in sorted rule order, not map order, so report
	// output is reproducible across runs.
	findings := AuditMappings("SELECT * FROM zebra, apple", set)
	require.Len(t, findings, 2)
	assert.Contains(t, findings[0].Message, "'apple'")
	assert.Contains(t, findings[1].Message, "'zebra'")
}

func TestAuditSemanticsJoinWithoutOn(t *testing.T) {
	findings := AuditSemantics("SELECT * FROM a JOIN b")
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.Equal(t, "join without ON clause detected", findings[0].Message)

	assert.Empty(t, AuditSemantics("SELECT * FROM a JOIN b ON a.id = b.id"))

	// One warning per join construct lacking a condition.
	findings = AuditSemantics("SELECT * FROM a JOIN b ON a.x = b.x JOIN c")
	assert.Len(t, findings, 1)
}

func TestAuditSemanticsStringComparison(t *testing.T) {
	findings := AuditSemantics("SELECT * FROM t WHERE status = 'active'")
	require.Len(t, findings, 1)
	assert.Equal(t, "possible string-to-other-type comparison: status = 'active'", findings[0].Message)
}

func TestAuditSemanticsTemporalHintSuppressesWarning(t *testing.T) {
	assert.Empty(t, AuditSemantics("SELECT * FROM t WHERE order_date = '2024-01-01'"))
	assert.Empty(t, AuditSemantics("SELECT * FROM t WHERE created_TIMESTAMP = '2024-01-01'"))
}

func TestAuditSemanticsNonLiteralComparison(t *testing.T) {
	assert.Empty(t, AuditSemantics("SELECT * FROM t WHERE a = b AND amount > 10"))
}
