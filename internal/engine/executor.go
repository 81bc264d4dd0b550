package engine

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/nlsql/internal/config"
)

// Result is a fully materialized result set.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Executor runs one statement against a data source.
type Executor interface {
	Execute(ctx context.Context, ds config.DataSource, sqlText string) (Result, error)
}

// SQLExecutor opens the data source for every call, runs the statement on
// a single dedicated connection, reads every row and releases the
// connection before returning. It never retries.
type SQLExecutor struct{}

// NewSQLExecutor creates an executor.
func NewSQLExecutor() *SQLExecutor {
	return &SQLExecutor{}
}

// Execute implements Executor. A query matching nothing returns columns
// and an empty, non-nil Rows. Every failure is an *Error with
// ErrCodeExecution.
func (x *SQLExecutor) Execute(ctx context.Context, ds config.DataSource, sqlText string) (Result, error) {
	db, err := sql.Open(ds.Driver, ds.DSN)
	if err != nil {
		return Result{}, NewExecutionError(ds.Name, sqlText, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return Result{}, NewExecutionError(ds.Name, sqlText, err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, NewExecutionError(ds.Name, sqlText, err)
	}
	defer rows.Close()

	res, err := materialize(rows)
	if err != nil {
		return Result{}, NewExecutionError(ds.Name, sqlText, err)
	}
	return res, nil
}

func materialize(rows *sql.Rows) (Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}

	out := [][]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	return Result{Columns: cols, Rows: out}, nil
}
