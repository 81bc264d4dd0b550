package strategy

import (
	"log/slog"
	"strings"

	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/planner"
)

// UnmappedNote is the risk note attached when no branch matches.
const UnmappedNote = "cannot safely map this question to the schema"

// Resolver turns questions into strategies.
//
// Meta questions are answered first, then "how many <table>" counts. Other
// questions are matched against the template library in order: the first
// template whose Match accepts the normalized text and whose Build succeeds
// wins, provided its strategy passes Validate. Templates that need tables
// missing from the catalog are skipped. When nothing fits, the strategy is
// left unresolved with UnmappedNote.
//
// It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	templates []Template
	log       *slog.Logger
}

// NewResolver creates a resolver over the given template library.
// With no templates, DefaultTemplates is used.
func NewResolver(log *slog.Logger, templates ...Template) *Resolver {
	if len(templates) == 0 {
		templates = DefaultTemplates()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{templates: templates, log: log}
}

// Resolve maps question onto tables, the catalog's table names. It always
// returns a strategy: a meta strategy, a resolved data strategy, or an
// unresolved strategy carrying risk notes. The intent and plan are recorded
// for diagnostics only.
func (r *Resolver) Resolve(question string, in intent.Classification, plan planner.Plan, tables []string) Strategy {
	pq := prepareQuestion(question)
	q := pq.Text
	log := r.log.With("intent", in.Type, "plan_strategy", plan.Strategy)

	if s, ok := resolveMeta(q, tables); ok {
		log.Debug("pipeline: meta strategy", "meta", s.Meta.Type)
		return s
	}

	if s, ok := resolveCount(q, tables); ok {
		log.Debug("pipeline: count strategy", "table", s.Tables[0])
		return s
	}

	available := make(map[string]bool, len(tables))
	for _, t := range tables {
		available[t] = true
	}

	for _, tmpl := range r.templates {
		if !hasTables(available, tmpl.Tables) || !tmpl.Match(q) {
			continue
		}
		s := New()
		if !tmpl.Build(pq, &s) {
			continue
		}
		if res := Validate(s); !res.Valid {
			log.Warn("pipeline: template produced an unsafe strategy", "template", tmpl.Name, "problems", res.Problems)
			rejected := New()
			rejected.RiskNotes = append(rejected.RiskNotes, res.Problems...)
			return rejected
		}
		log.Debug("pipeline: template matched", "template", tmpl.Name)
		return s
	}

	s := New()
	s.RiskNotes = append(s.RiskNotes, UnmappedNote)
	log.Debug("pipeline: no template matched")
	return s
}

// resolveMeta detects questions about the schema itself.
func resolveMeta(q string, tables []string) (Strategy, bool) {
	s := New()
	switch {
	case strings.Contains(q, "most rows"):
		s.Meta = &Meta{Type: MetaTableRowCount, Tables: append([]string{}, tables...)}
		return s, true
	case containsAny(q, "what tables", "list tables"):
		s.Meta = &Meta{Type: MetaListTables}
		return s, true
	case containsAny(q, "schema", "columns"):
		if t, ok := findTable(q, tables); ok {
			s.Meta = &Meta{Type: MetaTableSchema, Table: t}
			return s, true
		}
	}
	return Strategy{}, false
}

// resolveCount handles "how many <table>" questions.
func resolveCount(q string, tables []string) (Strategy, bool) {
	if !strings.HasPrefix(q, "how many") {
		return Strategy{}, false
	}
	t, ok := findTable(q, tables)
	if !ok {
		return Strategy{}, false
	}
	s := New()
	s.Tables = []string{t}
	s.SelectColumns = []string{"COUNT(*)"}
	return s, true
}

// findTable returns the first catalog table whose lowercase name occurs in q.
func findTable(q string, tables []string) (string, bool) {
	for _, t := range tables {
		if strings.Contains(q, strings.ToLower(t)) {
			return t, true
		}
	}
	return "", false
}

func hasTables(available map[string]bool, needed []string) bool {
	for _, t := range needed {
		if !available[t] {
			return false
		}
	}
	return true
}
