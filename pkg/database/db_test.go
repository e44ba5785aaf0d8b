package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryIsMigrated(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"articles", "clients", "admins"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n), table)
		assert.Zero(t, n)
	}

	// writes stay visible across statements: the pool is pinned to one
	// connection, otherwise each memory connection is a separate database
	_, err = db.Exec(`INSERT INTO articles (title, images) VALUES ('persisted', '[]')`)
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDSNCarriesPragmas(t *testing.T) {
	got := dsn("/tmp/x.db")
	assert.Contains(t, got, "file:/tmp/x.db?")
	assert.Contains(t, got, "_foreign_keys=on")
	assert.Contains(t, got, "_journal_mode=WAL")
	assert.Contains(t, got, "_busy_timeout=5000")
}
