// Package catalog lists the tables and columns of a dataset.
//
// The table list is the only schema knowledge the resolver consults; the
// column listing backs table-schema answers and the /schema endpoint.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/nlsql/internal/config"
)

// ErrUnknownTable is returned by Columns for a table that does not exist.
var ErrUnknownTable = errors.New("unknown table")

// Column describes one column of a table.
type Column struct {
	Name       string  `json:"column"`
	Type       string  `json:"type"`
	Nullable   bool    `json:"nullable"`
	Default    *string `json:"default"`
	PrimaryKey bool    `json:"primary_key"`
}

// Catalog reads schema metadata from a dataset.
type Catalog interface {
	// ListTables returns user table names in ascending order.
	ListTables(ctx context.Context) ([]string, error)
	// Columns returns the columns of table in declaration order.
	Columns(ctx context.Context, table string) ([]Column, error)
}

// DB is a Catalog over an open database handle.
type DB struct {
	db      *sql.DB
	dialect dialect
}

type dialect interface {
	listTables(ctx context.Context, db *sql.DB) ([]string, error)
	columns(ctx context.Context, db *sql.DB, table string) ([]Column, error)
}

// Open opens a catalog for the data source. The caller must Close it.
func Open(ds config.DataSource) (*DB, error) {
	var d dialect
	switch ds.Driver {
	case config.DriverSQLite:
		d = sqliteDialect{}
	case config.DriverPostgres:
		d = postgresDialect{}
	default:
		return nil, fmt.Errorf("catalog: unsupported driver %q", ds.Driver)
	}

	db, err := sql.Open(ds.Driver, ds.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ds.Name, err)
	}
	db.SetMaxOpenConns(1)

	return &DB{db: db, dialect: d}, nil
}

// Close releases the underlying handle.
func (c *DB) Close() error {
	return c.db.Close()
}

// ListTables implements Catalog.
func (c *DB) ListTables(ctx context.Context) ([]string, error) {
	tables, err := c.dialect.listTables(ctx, c.db)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// Columns implements Catalog.
func (c *DB) Columns(ctx context.Context, table string) ([]Column, error) {
	cols, err := c.dialect.columns(ctx, c.db, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return cols, nil
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
