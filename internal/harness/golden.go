package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/nlsql/internal/engine"
)

// Snapshot is the part of an outcome kept in golden files. Trace IDs,
// plans and rows are left out so snapshots survive fixture reshuffles.
type Snapshot struct {
	Scenario string        `json:"scenario"`
	Status   engine.Status `json:"status"`
	SQL      string        `json:"sql,omitempty"`
	Answer   string        `json:"answer"`
}

// NewSnapshot builds the snapshot of a scenario result.
func NewSnapshot(r *Result) Snapshot {
	return Snapshot{
		Scenario: r.Scenario,
		Status:   r.Outcome.Status,
		SQL:      r.Outcome.Trace.SQL,
		Answer:   r.Outcome.Answer,
	}
}

// RunWithGolden runs the scenario, fails t on unmet expectations and
// compares the snapshot with testdata/golden/<name>.golden.
func RunWithGolden(t *testing.T, a Asker, s *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), a, s)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Errorf("%s: %s", s.Name, e)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.AssertJson(t, s.Name, NewSnapshot(result))
	return nil
}
