package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(t *testing.T, path, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestChinookDB(t *testing.T) {
	path := ChinookDB(t)

	assert.Equal(t, ChinookTrackCount, count(t, path, "Track"))
	assert.Equal(t, 3, count(t, path, "Artist"))
	assert.Equal(t, 3, count(t, path, "Customer"))
}

func TestUniversityDB(t *testing.T) {
	path := UniversityDB(t)

	assert.Equal(t, 3, count(t, path, "Student"))
	assert.Equal(t, 3, count(t, path, "Course"))
	assert.Equal(t, 6, count(t, path, "Enrollment"))
}

func TestConfig(t *testing.T) {
	cfg := Config(t)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"chinook", "university"}, cfg.DatasetNames())
	assert.NotEqual(t, "nlsql-history.db", cfg.HistoryDB)
}
