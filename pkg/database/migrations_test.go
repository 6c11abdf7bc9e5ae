package database_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "..", "migrations", name))
	require.NoError(t, err)
	return string(b)
}

// tableBlock returns the CREATE TABLE statement for table.
func tableBlock(t *testing.T, sql, table string) string {
	t.Helper()
	start := strings.Index(sql, "CREATE TABLE IF NOT EXISTS "+table+" (")
	require.NotEqual(t, -1, start, "table %s not found", table)
	end := strings.Index(sql[start:], ");")
	require.NotEqual(t, -1, end)
	return sql[start : start+end]
}

func TestInitMigration_TwoFactorCodesMayRepeatAcrossEmails(t *testing.T) {
	up := readMigration(t, "000001_init.up.sql")
	tokens := tableBlock(t, up, "email_tokens")

	for _, line := range strings.Split(tokens, "\n") {
		if strings.Contains(line, "token_hash") {
			assert.NotContains(t, line, "UNIQUE", "token_hash must not be globally unique")
		}
	}
	assert.Contains(t, tokens, "UNIQUE (kind, email)")
	assert.Contains(t, up, "ON email_tokens (kind, token_hash) WHERE kind <> 'two_factor'")
}

func TestInitMigration_DownDropsEveryTable(t *testing.T) {
	up := readMigration(t, "000001_init.up.sql")
	down := readMigration(t, "000001_init.down.sql")

	for _, table := range []string{"users", "accounts", "email_tokens", "two_factor_confirmations", "products"} {
		tableBlock(t, up, table)
		assert.Contains(t, down, "DROP TABLE IF EXISTS "+table+";")
	}
}
