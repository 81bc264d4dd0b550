package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM returns responses in order and counts calls.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	var resp string
	var err error
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return resp, err
}

func newTestPlanner(llm LLMClient) *LLMPlanner {
	p := NewLLMPlanner(llm, nil)
	p.NewBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return p
}

func TestParsePlan(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		goal string
	}{
		{
			name: "plain json",
			raw:  `{"goal":"count tracks","steps":["find track table"],"strategy":"count","assumptions":[]}`,
			goal: "count tracks",
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"goal\":\"fenced\",\"steps\":[],\"strategy\":\"s\"}\n```",
			goal: "fenced",
		},
		{
			name: "json embedded in prose",
			raw:  "Here is the plan: {\"goal\":\"embedded\",\"steps\":[\"a\",\"b\"],\"strategy\":\"s\"} hope it helps",
			goal: "embedded",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := parsePlan(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.goal, plan.Goal)
		})
	}
}

func TestParsePlan_Malformed(t *testing.T) {
	_, err := parsePlan("no json here")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPlan)
}

func TestLLMPlanner_RetriesTransportErrors(t *testing.T) {
	llm := &scriptedLLM{
		responses: []string{"", "", `{"goal":"g","steps":["s1"],"strategy":"join"}`},
		errs:      []error{errors.New("timeout"), errors.New("overloaded"), nil},
	}
	p := newTestPlanner(llm)

	plan, err := p.Plan(context.Background(), "Which artist has the most tracks?")
	require.NoError(t, err)
	assert.Equal(t, "g", plan.Goal)
	assert.Equal(t, []string{"s1"}, plan.Steps)
	assert.Equal(t, 3, llm.calls)
}

func TestLLMPlanner_GivesUpAfterMaxTries(t *testing.T) {
	boom := errors.New("unavailable")
	llm := &scriptedLLM{errs: []error{boom, boom, boom, boom}}
	p := newTestPlanner(llm)

	_, err := p.Plan(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, DefaultMaxTries, llm.calls)
}

func TestLLMPlanner_MalformedIsNotRetried(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"I cannot help", `{"goal":"late"}`}}
	p := newTestPlanner(llm)

	_, err := p.Plan(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPlan)
	assert.Equal(t, 1, llm.calls)
}

type failingPlanner struct{}

func (failingPlanner) Plan(ctx context.Context, question string) (Plan, error) {
	return Plan{}, errors.New("service down")
}

func TestPlanOrFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("nil planner", func(t *testing.T) {
		assert.Equal(t, Fallback(), PlanOrFallback(ctx, nil, "q", nil))
	})

	t.Run("failing planner", func(t *testing.T) {
		assert.Equal(t, Fallback(), PlanOrFallback(ctx, failingPlanner{}, "q", nil))
	})

	t.Run("malformed llm output", func(t *testing.T) {
		p := newTestPlanner(&scriptedLLM{responses: []string{"garbage"}})
		plan := PlanOrFallback(ctx, p, "q", nil)
		assert.Equal(t, "heuristic", plan.Goal)
		assert.Equal(t, "fallback", plan.Strategy)
		assert.Empty(t, plan.Steps)
	})

	t.Run("nil steps normalised", func(t *testing.T) {
		p := newTestPlanner(&scriptedLLM{responses: []string{`{"goal":"g","strategy":"s"}`}})
		plan := PlanOrFallback(ctx, p, "q", nil)
		assert.Equal(t, "g", plan.Goal)
		assert.NotNil(t, plan.Steps)
	})
}

func TestCachingPlanner(t *testing.T) {
	llm := &scriptedLLM{responses: []string{`{"goal":"first","steps":[],"strategy":"s"}`, `{"goal":"second","steps":[],"strategy":"s"}`}}
	c := NewCachingPlanner(newTestPlanner(llm), time.Minute)
	defer c.Close()

	ctx := context.Background()
	p1, err := c.Plan(ctx, "How many tracks?")
	require.NoError(t, err)
	p2, err := c.Plan(ctx, "  how many TRACKS?  ")
	require.NoError(t, err)

	assert.Equal(t, "first", p1.Goal)
	assert.Equal(t, "first", p2.Goal)
	assert.Equal(t, 1, llm.calls)
}

func TestCachingPlanner_DoesNotCacheFailures(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"garbage", `{"goal":"ok","steps":[],"strategy":"s"}`}}
	c := NewCachingPlanner(newTestPlanner(llm), time.Minute)
	defer c.Close()

	ctx := context.Background()
	_, err := c.Plan(ctx, "q")
	require.Error(t, err)

	plan, err := c.Plan(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", plan.Goal)
}
