package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/nlsql/internal/engine"
)

// Asker answers questions. *engine.Engine implements it.
type Asker interface {
	Ask(ctx context.Context, question, dataset string) (*engine.Outcome, error)
}

// Result is the outcome of running one scenario.
type Result struct {
	Scenario string          `json:"scenario"`
	Pass     bool            `json:"pass"`
	Errors   []string        `json:"errors,omitempty"`
	Outcome  *engine.Outcome `json:"outcome,omitempty"`
}

func newResult(name string) *Result {
	return &Result{Scenario: name, Pass: true, Errors: []string{}}
}

// AddError records a failed expectation.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run asks the scenario's question and checks the expectations. A pipeline
// error that still produced an outcome is checked like any other outcome;
// an error with no outcome (an unknown dataset) is returned.
func Run(ctx context.Context, a Asker, s *Scenario) (*Result, error) {
	out, err := a.Ask(ctx, s.Question, s.Dataset)
	if out == nil {
		if err == nil {
			err = fmt.Errorf("no outcome")
		}
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := newResult(s.Name)
	result.Outcome = out
	checkOutcome(s.Expect, out, result)
	return result, nil
}

// RunAll runs scenarios in order and stops at the first scenario that
// cannot produce an outcome.
func RunAll(ctx context.Context, a Asker, scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	for _, s := range scenarios {
		r, err := Run(ctx, a, s)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

func checkOutcome(want Expect, out *engine.Outcome, r *Result) {
	if string(out.Status) != want.Status {
		r.AddError("status: got %q, want %q (answer: %s%s)", out.Status, want.Status, out.Answer, out.Error)
	}
	if want.SQL != "" && out.Trace.SQL != want.SQL {
		r.AddError("sql: got %q, want %q", out.Trace.SQL, want.SQL)
	}
	if want.Answer != "" && out.Answer != want.Answer {
		r.AddError("answer: got %q, want %q", out.Answer, want.Answer)
	}
	for _, fragment := range want.AnswerContains {
		if !strings.Contains(out.Answer, fragment) {
			r.AddError("answer: %q does not contain %q", out.Answer, fragment)
		}
	}
	if want.Attempts != 0 && out.Trace.Attempts != want.Attempts {
		r.AddError("attempts: got %d, want %d", out.Trace.Attempts, want.Attempts)
	}
	if want.RowCount != nil && len(out.Rows) != *want.RowCount {
		r.AddError("row_count: got %d, want %d", len(out.Rows), *want.RowCount)
	}
}
