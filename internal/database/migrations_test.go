package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing-service/internal/gst"
)

func TestSplitSQLStatements(t *testing.T) {
	sql := `INSERT INTO t (a) VALUES ('x;y');
-- comment
UPDATE t SET a = 'z';

`
	stmts := splitSQLStatements(sql)
	require.Len(t, stmts, 2)
	assert.Equal(t, "INSERT INTO t (a) VALUES ('x;y')", stmts[0])
	assert.Equal(t, "UPDATE t SET a = 'z'", stripComments(stmts[1]))
}

func TestStripComments(t *testing.T) {
	assert.Equal(t, "", stripComments("-- only a comment\n  -- another"))
	assert.Equal(t, "SELECT 1", stripComments("-- header\nSELECT 1"))
}

func TestMigrationFiles_Sorted(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"002_seed_gst_states.sql", "003_amount_constraints.sql"}, files)
}

func TestGSTStateSeed_CoversEveryStateCode(t *testing.T) {
	content, err := migrationsFS.ReadFile("migrations/002_seed_gst_states.sql")
	require.NoError(t, err)

	seed := string(content)
	for _, s := range gst.States {
		assert.True(t, strings.Contains(seed, "('"+s.Code+"', '"+s.Name+"'"), "missing seed for %s", s.Name)
	}
}

func TestModels_IncludesEveryTable(t *testing.T) {
	names := make([]string, 0)
	for _, m := range Models() {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "InvoiceSequence")
	assert.Contains(t, names, "PaymentOrder")
	assert.Len(t, names, 10)
}
