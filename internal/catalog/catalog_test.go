package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/config"
	"github.com/roach88/nlsql/internal/testutil"
)

func openFixture(t *testing.T, path string) *DB {
	t.Helper()
	cat, err := Open(config.DataSource{Name: "fixture", Driver: config.DriverSQLite, DSN: config.SQLiteReadOnlyDSN(path)})
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestListTables(t *testing.T) {
	ctx := context.Background()

	tables, err := openFixture(t, testutil.ChinookDB(t)).ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.ChinookTables, tables)

	tables, err = openFixture(t, testutil.UniversityDB(t)).ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.UniversityTables, tables)
}

func TestColumns(t *testing.T) {
	cat := openFixture(t, testutil.ChinookDB(t))

	cols, err := cat.Columns(context.Background(), "Track")
	require.NoError(t, err)
	require.Len(t, cols, 7)

	assert.Equal(t, Column{Name: "TrackId", Type: "INTEGER", Nullable: true, PrimaryKey: true}, cols[0])
	assert.Equal(t, "Name", cols[1].Name)
	assert.False(t, cols[1].Nullable)
	assert.True(t, cols[2].Nullable, "AlbumId is nullable")

	require.NotNil(t, cols[3].Default)
	assert.Equal(t, "1", *cols[3].Default)
	assert.Nil(t, cols[4].Default)
}

func TestColumns_UnknownTable(t *testing.T) {
	cat := openFixture(t, testutil.UniversityDB(t))

	_, err := cat.Columns(context.Background(), "Nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestColumns_QuotedIdentifier(t *testing.T) {
	cat := openFixture(t, testutil.UniversityDB(t))

	_, err := cat.Columns(context.Background(), `Student"); DROP TABLE Student; --`)
	require.ErrorIs(t, err, ErrUnknownTable)

	tables, err := cat.ListTables(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tables, "Student")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DataSource{Name: "x", Driver: "oracle"})
	require.Error(t, err)
}

func TestListTables_MissingFile(t *testing.T) {
	cat := openFixture(t, t.TempDir()+"/missing.db")

	_, err := cat.ListTables(context.Background())
	require.Error(t, err)
}
