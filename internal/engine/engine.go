package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/nlsql/internal/catalog"
	"github.com/roach88/nlsql/internal/config"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/interpret"
	"github.com/roach88/nlsql/internal/planner"
	"github.com/roach88/nlsql/internal/querysql"
	"github.com/roach88/nlsql/internal/store"
	"github.com/roach88/nlsql/internal/strategy"
)

// UnsupportedAnswer is the answer for questions no strategy covers.
const UnsupportedAnswer = "This question cannot be answered using the current database schema."

// Status is the kind of outcome.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

// Trace is the diagnostic record of one run.
type Trace struct {
	TraceID  string                `json:"trace_id"`
	Question string                `json:"question"`
	Dataset  string                `json:"dataset"`
	Intent   intent.Classification `json:"intent"`
	Plan     planner.Plan          `json:"plan"`
	Strategy strategy.Strategy     `json:"strategy"`
	SQL      string                `json:"sql,omitempty"`
	Attempts int                   `json:"attempts"`
}

// Outcome is what a caller receives for a question. Data carries the
// structured answer of meta questions.
type Outcome struct {
	Status  Status   `json:"status"`
	Answer  string   `json:"answer"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Trace   Trace    `json:"trace"`
}

// HistoryRecorder persists answered questions.
type HistoryRecorder interface {
	Record(ctx context.Context, e store.Entry) (int64, error)
}

// CatalogHandle is a catalog that must be closed after use.
type CatalogHandle interface {
	catalog.Catalog
	Close() error
}

// CatalogOpener opens the catalog of a data source.
type CatalogOpener func(ds config.DataSource) (CatalogHandle, error)

func openSQLCatalog(ds config.DataSource) (CatalogHandle, error) {
	c, err := catalog.Open(ds)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Engine answers questions against configured datasets.
//
// A run is sequential: classify, plan, resolve, then either answer a meta
// question from the catalog or synthesize, execute and interpret SQL. Runs
// share nothing but the counters in Metrics and the injected history
// recorder, so one Engine is safe for concurrent use by many callers.
//
// Execution is bounded per run by an AttemptQuota of MaxAttempts:
//   - attempt 1 runs the resolved strategy as-is
//   - attempt 2 runs the sanitized strategy (filters cleared, limit capped)
//
// A strategy without tables never reaches synthesis; it is reported as
// StatusUnsupported.
type Engine struct {
	cfg         *config.Config
	resolver    *strategy.Resolver
	interpreter *interpret.Interpreter
	planner     planner.Planner
	exec        Executor
	openCatalog CatalogOpener
	history     HistoryRecorder
	metrics     *Metrics
	traceIDs    TraceIDGenerator
	now         func() time.Time
	log         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlanner sets the advisory planner. Without one every run uses the
// fallback plan.
func WithPlanner(p planner.Planner) Option {
	return func(e *Engine) { e.planner = p }
}

// WithExecutor replaces the SQL executor.
func WithExecutor(x Executor) Option {
	return func(e *Engine) { e.exec = x }
}

// WithCatalogOpener replaces how dataset catalogs are opened.
func WithCatalogOpener(open CatalogOpener) Option {
	return func(e *Engine) { e.openCatalog = open }
}

// WithHistory records successful answers in h.
func WithHistory(h HistoryRecorder) Option {
	return func(e *Engine) { e.history = h }
}

// WithMetrics shares counters with the caller.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTraceIDGenerator sets how trace IDs are produced.
func WithTraceIDGenerator(g TraceIDGenerator) Option {
	return func(e *Engine) { e.traceIDs = g }
}

// WithResolver replaces the strategy resolver.
func WithResolver(r *strategy.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithInterpreter replaces the result interpreter.
func WithInterpreter(in *interpret.Interpreter) Option {
	return func(e *Engine) { e.interpreter = in }
}

// WithNow sets the wall clock used for history timestamps.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine over cfg.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		interpreter: interpret.New(interpret.DefaultVocabulary()),
		exec:        NewSQLExecutor(),
		openCatalog: openSQLCatalog,
		metrics:     NewMetrics(),
		traceIDs:    UUIDv7Generator{},
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = strategy.NewResolver(e.log)
	}
	return e
}

// Metrics returns the engine's counters.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Ask answers one question against dataset.
//
// An unknown dataset returns a nil Outcome and a configuration error. An
// unsupported question is an Outcome with StatusUnsupported and a nil
// error. Catalog, synthesis and execution failures return an Outcome with
// StatusFailed and the error.
func (e *Engine) Ask(ctx context.Context, question, dataset string) (*Outcome, error) {
	q := strings.TrimSpace(question)
	e.metrics.total.Add(1)

	tr := Trace{TraceID: e.traceIDs.Generate(), Question: q, Dataset: dataset}
	log := e.log.With("trace_id", tr.TraceID, "dataset", dataset)

	ds, err := e.cfg.DataSource(dataset)
	if err != nil {
		e.metrics.failed.Add(1)
		log.Warn("pipeline: unknown dataset")
		return nil, &Error{Code: ErrCodeConfiguration, Message: "unknown dataset", Dataset: dataset, Err: err}
	}

	cat, err := e.openCatalog(ds)
	if err != nil {
		return e.fail(&tr, &Error{Code: ErrCodeCatalog, Message: "open catalog", Dataset: dataset, Err: err}, log)
	}
	defer cat.Close()

	tables, err := cat.ListTables(ctx)
	if err != nil {
		return e.fail(&tr, &Error{Code: ErrCodeCatalog, Message: "list tables", Dataset: dataset, Err: err}, log)
	}

	tr.Intent = intent.Classify(q)
	if tr.Intent.Type == intent.TypeMeta {
		tr.Plan = planner.Fallback()
	} else {
		tr.Plan = planner.PlanOrFallback(ctx, e.planner, q, log)
	}

	s := e.resolver.Resolve(q, tr.Intent, tr.Plan, tables)
	tr.Strategy = s
	log.Debug("pipeline: strategy resolved", "intent", tr.Intent.Type, "plan", tr.Plan.Strategy, "tables", s.Tables)

	if s.IsMeta() {
		out, err := e.answerMeta(ctx, ds, cat, tables, s.Meta, &tr)
		if err != nil {
			return e.fail(&tr, err, log)
		}
		e.succeed(ctx, out, false, log)
		return out, nil
	}

	if !s.Resolved() {
		e.metrics.failed.Add(1)
		log.Info("pipeline: unsupported question", "risk_notes", s.RiskNotes)
		return &Outcome{Status: StatusUnsupported, Answer: UnsupportedAnswer, Trace: tr}, nil
	}

	res, retried, err := e.execute(ctx, ds, s, &tr, log)
	if err != nil {
		return e.fail(&tr, err, log)
	}

	out := &Outcome{
		Status:  StatusOK,
		Answer:  e.interpreter.Interpret(q, res.Columns, res.Rows),
		Columns: res.Columns,
		Rows:    res.Rows,
		Trace:   tr,
	}
	e.succeed(ctx, out, retried, log)
	return out, nil
}

// execute runs s, retrying once with the sanitized strategy after an
// execution failure. Synthesis failures are returned at once.
func (e *Engine) execute(ctx context.Context, ds config.DataSource, s strategy.Strategy, tr *Trace, log *slog.Logger) (Result, bool, error) {
	quota := NewAttemptQuota(MaxAttempts)

	var lastErr error
	for {
		if err := quota.Check(tr.TraceID); err != nil {
			log.Warn("pipeline: retry budget exhausted", "error", err)
			return Result{}, true, errors.Join(lastErr, err)
		}
		attempt := quota.Current()
		if attempt > 1 {
			s = s.Sanitize(e.cfg.SafetyLimit)
			e.metrics.autoRetries.Add(1)
			log.Info("pipeline: retrying with sanitized strategy", "attempt", attempt, "limit", s.Limit)
		}

		sqlText, err := querysql.Synthesize(s)
		if err != nil {
			return Result{}, attempt > 1, &Error{Code: ErrCodeSynthesis, Message: "malformed strategy", Dataset: ds.Name, Err: err}
		}
		tr.Strategy = s
		tr.SQL = sqlText
		tr.Attempts = attempt

		log.Debug("pipeline: executing", "attempt", attempt, "sql", sqlText)
		res, err := e.exec.Execute(ctx, ds, sqlText)
		if err == nil {
			return res, attempt > 1, nil
		}
		if !IsExecutionError(err) {
			err = NewExecutionError(ds.Name, sqlText, err)
		}
		lastErr = err
		log.Warn("pipeline: execution failed", "attempt", attempt, "sql", sqlText, "error", err)
	}
}

func (e *Engine) answerMeta(ctx context.Context, ds config.DataSource, cat catalog.Catalog, tables []string, m *strategy.Meta, tr *Trace) (*Outcome, error) {
	out := &Outcome{Status: StatusOK, Trace: *tr}

	switch m.Type {
	case strategy.MetaListTables:
		out.Data = tables
		out.Answer = strings.Join(tables, ", ")

	case strategy.MetaTableSchema:
		cols, err := cat.Columns(ctx, m.Table)
		if err != nil {
			return nil, &Error{Code: ErrCodeCatalog, Message: "read columns", Dataset: ds.Name, Err: err}
		}
		out.Data = cols
		out.Answer = describeColumns(m.Table, cols)

	case strategy.MetaTableRowCount:
		counts := make(map[string]int64, len(m.Tables))
		best, bestCount := "", int64(-1)
		for _, t := range m.Tables {
			n, err := e.countRows(ctx, ds, t)
			if err != nil {
				return nil, err
			}
			counts[t] = n
			if n > bestCount {
				best, bestCount = t, n
			}
		}
		out.Data = counts
		if best == "" {
			out.Answer = interpret.NoMatches
		} else {
			out.Answer = fmt.Sprintf("%s has the most rows (%d)", best, bestCount)
		}

	default:
		return nil, &Error{Code: ErrCodeSynthesis, Message: fmt.Sprintf("unknown meta type %q", m.Type), Dataset: ds.Name}
	}
	return out, nil
}

func (e *Engine) countRows(ctx context.Context, ds config.DataSource, table string) (int64, error) {
	sqlText := fmt.Sprintf("SELECT COUNT(*) FROM %s;", quoteIdent(table))
	res, err := e.exec.Execute(ctx, ds, sqlText)
	if err != nil {
		if !IsExecutionError(err) {
			err = NewExecutionError(ds.Name, sqlText, err)
		}
		return 0, err
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return 0, nil
	}
	switch v := res.Rows[0][0].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, NewExecutionError(ds.Name, sqlText, fmt.Errorf("unexpected count type %T", v))
	}
}

func (e *Engine) succeed(ctx context.Context, out *Outcome, retried bool, log *slog.Logger) {
	e.metrics.successful.Add(1)
	log.Info("pipeline: answered", "attempts", out.Trace.Attempts, "retried", retried)

	if e.history == nil {
		return
	}
	_, err := e.history.Record(ctx, store.Entry{
		TraceID:   out.Trace.TraceID,
		Dataset:   out.Trace.Dataset,
		Question:  out.Trace.Question,
		SQL:       out.Trace.SQL,
		Answer:    out.Answer,
		Retried:   retried,
		CreatedAt: e.now(),
	})
	if err != nil {
		log.Warn("pipeline: failed to record history", "error", err)
	}
}

func (e *Engine) fail(tr *Trace, err error, log *slog.Logger) (*Outcome, error) {
	e.metrics.failed.Add(1)
	log.Error("pipeline: failed", "error", err)
	return &Outcome{Status: StatusFailed, Error: err.Error(), Trace: *tr}, err
}

// Schema returns every table of dataset with its columns.
func (e *Engine) Schema(ctx context.Context, dataset string) (map[string][]catalog.Column, error) {
	ds, err := e.cfg.DataSource(dataset)
	if err != nil {
		return nil, &Error{Code: ErrCodeConfiguration, Message: "unknown dataset", Dataset: dataset, Err: err}
	}

	cat, err := e.openCatalog(ds)
	if err != nil {
		return nil, &Error{Code: ErrCodeCatalog, Message: "open catalog", Dataset: dataset, Err: err}
	}
	defer cat.Close()

	tables, err := cat.ListTables(ctx)
	if err != nil {
		return nil, &Error{Code: ErrCodeCatalog, Message: "list tables", Dataset: dataset, Err: err}
	}

	schema := make(map[string][]catalog.Column, len(tables))
	for _, t := range tables {
		cols, err := cat.Columns(ctx, t)
		if err != nil {
			return nil, &Error{Code: ErrCodeCatalog, Message: "read columns", Dataset: dataset, Err: err}
		}
		schema[t] = cols
	}
	return schema, nil
}

func describeColumns(table string, cols []catalog.Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s (%s)", c.Name, c.Type)
	}
	return fmt.Sprintf("%s: %s", table, strings.Join(parts, ", "))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
