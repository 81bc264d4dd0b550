package strategy

// JoinKind is the SQL join type.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
)

// Join joins Table on LeftKey = RightKey.
type Join struct {
	Kind     JoinKind `json:"type"`
	Table    string   `json:"table"`
	LeftKey  string   `json:"from"`
	RightKey string   `json:"to"`
}

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// OrderBy orders the result by a single expression.
type OrderBy struct {
	Expr      string    `json:"expr"`
	Direction Direction `json:"direction"`
}

// MetaType identifies a question about the schema itself.
type MetaType string

const (
	MetaListTables    MetaType = "list_tables"
	MetaTableSchema   MetaType = "table_schema"
	MetaTableRowCount MetaType = "table_row_count"
)

// Meta marks a strategy as a metadata request. Table is set for
// MetaTableSchema; Tables is set for MetaTableRowCount.
type Meta struct {
	Type   MetaType `json:"type"`
	Table  string   `json:"table,omitempty"`
	Tables []string `json:"tables,omitempty"`
}

// Strategy describes one candidate query.
//
// Tables[0] is the FROM target; an empty Tables means no mapping was found
// and RiskNotes says why. Exactly one of SelectColumns and Aggregations is
// non-empty on a resolved data strategy. Having is only valid together with
// GroupBy. When Meta is set, the remaining query fields are unused.
type Strategy struct {
	Tables        []string `json:"tables"`
	Joins         []Join   `json:"joins"`
	Filters       []string `json:"filters"`
	GroupBy       []string `json:"group_by"`
	SelectColumns []string `json:"select_columns"`
	Aggregations  []string `json:"aggregations,omitempty"`
	OrderBy       *OrderBy `json:"order_by"`
	Limit         int      `json:"limit,omitempty"`
	Having        string   `json:"having,omitempty"`
	Meta          *Meta    `json:"meta,omitempty"`
	RiskNotes     []string `json:"risk_notes"`
}

// New returns an empty strategy with non-nil slices, so traces render
// empty lists rather than null.
func New() Strategy {
	return Strategy{
		Tables:        []string{},
		Joins:         []Join{},
		Filters:       []string{},
		GroupBy:       []string{},
		SelectColumns: []string{},
		RiskNotes:     []string{},
	}
}

// Resolved reports whether the strategy maps to at least one table.
func (s Strategy) Resolved() bool {
	return len(s.Tables) > 0
}

// IsMeta reports whether the strategy is a metadata request.
func (s Strategy) IsMeta() bool {
	return s.Meta != nil
}

// Clone returns a deep copy that shares no state with s.
func (s Strategy) Clone() Strategy {
	c := s
	c.Tables = append([]string{}, s.Tables...)
	c.Joins = append([]Join{}, s.Joins...)
	c.Filters = append([]string{}, s.Filters...)
	c.GroupBy = append([]string{}, s.GroupBy...)
	c.SelectColumns = append([]string{}, s.SelectColumns...)
	if s.Aggregations != nil {
		c.Aggregations = append([]string{}, s.Aggregations...)
	}
	c.RiskNotes = append([]string{}, s.RiskNotes...)
	if s.OrderBy != nil {
		ob := *s.OrderBy
		c.OrderBy = &ob
	}
	if s.Meta != nil {
		m := *s.Meta
		m.Tables = append([]string(nil), s.Meta.Tables...)
		c.Meta = &m
	}
	return c
}

// Sanitize returns a copy with every filter removed and the limit forced to
// limit. It is the shape used for the one-time retry after a failed execution.
func (s Strategy) Sanitize(limit int) Strategy {
	c := s.Clone()
	c.Filters = []string{}
	c.Limit = limit
	return c
}
