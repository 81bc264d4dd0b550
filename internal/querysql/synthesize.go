package querysql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/nlsql/internal/strategy"
)

var (
	// ErrNoTables is returned for a strategy without a FROM table.
	ErrNoTables = errors.New("no tables selected for SQL generation")

	// ErrNoProjection is returned for a strategy with neither select
	// columns nor aggregations.
	ErrNoProjection = errors.New("no select columns or aggregations defined")
)

// Synthesize renders s as a single SQL statement terminated by ";".
func Synthesize(s strategy.Strategy) (string, error) {
	if len(s.Tables) == 0 {
		return "", ErrNoTables
	}

	projection, err := selectClause(s)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(projection)
	sb.WriteString(" FROM ")
	sb.WriteString(s.Tables[0])

	for _, j := range s.Joins {
		fmt.Fprintf(&sb, " %s JOIN %s ON %s = %s", joinKind(j.Kind), j.Table, j.LeftKey, j.RightKey)
	}

	if len(s.Filters) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(s.Filters, " AND "))
	}

	if len(s.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(s.GroupBy, ", "))
	}

	if s.Having != "" {
		sb.WriteString(" HAVING ")
		sb.WriteString(s.Having)
	}

	if s.OrderBy != nil && s.OrderBy.Expr != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderByClause(*s.OrderBy))
	}

	if s.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(s.Limit))
	}

	sb.WriteString(";")
	return sb.String(), nil
}

// selectClause prefers select columns over aggregations.
func selectClause(s strategy.Strategy) (string, error) {
	switch {
	case len(s.SelectColumns) > 0:
		return strings.Join(s.SelectColumns, ", "), nil
	case len(s.Aggregations) > 0:
		return strings.Join(s.Aggregations, ", "), nil
	default:
		return "", ErrNoProjection
	}
}

func joinKind(k strategy.JoinKind) string {
	if k == "" {
		return string(strategy.JoinInner)
	}
	return string(k)
}

func orderByClause(o strategy.OrderBy) string {
	if o.Direction == "" {
		return o.Expr
	}
	return o.Expr + " " + string(o.Direction)
}
