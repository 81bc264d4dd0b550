package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cenkalti/backoff/v5"
)

const systemPrompt = `You are a database reasoning planner.

Your task is to create a STEP-BY-STEP PLAN to answer the user question.
DO NOT write SQL.
DO NOT assume table names unless obvious.
Focus on reasoning like a human analyst.

Return ONLY valid JSON in this format:

{
  "goal": "",
  "steps": [],
  "strategy": "",
  "assumptions": []
}

Guidelines:
- Break complex problems into logical steps
- Mention joins, filters, grouping conceptually
- If assumptions are required, list them
- Keep steps concise and ordered`

// ErrMalformedPlan is returned when the LLM response holds no parsable plan.
var ErrMalformedPlan = errors.New("planner returned no valid JSON plan")

// DefaultMaxTries bounds LLM calls per question.
const DefaultMaxTries = 3

// LLMPlanner asks an LLM for a plan.
type LLMPlanner struct {
	llm      LLMClient
	log      *slog.Logger
	maxTries uint

	// NewBackOff builds the retry schedule for one Plan call.
	// Defaults to exponential backoff.
	NewBackOff func() backoff.BackOff
}

// NewLLMPlanner creates a planner backed by llm.
func NewLLMPlanner(llm LLMClient, log *slog.Logger) *LLMPlanner {
	if log == nil {
		log = slog.Default()
	}
	return &LLMPlanner{
		llm:      llm,
		log:      log,
		maxTries: DefaultMaxTries,
		NewBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Plan requests a plan for question. Transport errors are retried with
// backoff; malformed responses are not.
func (p *LLMPlanner) Plan(ctx context.Context, question string) (Plan, error) {
	attempt := 0
	plan, err := backoff.Retry(ctx, func() (Plan, error) {
		attempt++
		if attempt > 1 {
			p.log.Debug("planner: retrying", "attempt", attempt)
		}
		raw, err := p.llm.Complete(ctx, systemPrompt, "User question:\n"+question)
		if err != nil {
			return Plan{}, err
		}
		plan, err := parsePlan(raw)
		if err != nil {
			return Plan{}, backoff.Permanent(err)
		}
		return plan, nil
	}, backoff.WithBackOff(p.NewBackOff()), backoff.WithMaxTries(p.maxTries))
	if err != nil {
		return Plan{}, fmt.Errorf("create plan: %w", err)
	}
	return plan, nil
}

// parsePlan decodes a plan from raw LLM output. It tries the whole text, then
// the body of a ``` fence, then the span from the first '{' to the last '}'.
func parsePlan(raw string) (Plan, error) {
	raw = strings.TrimSpace(raw)

	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err == nil {
		return plan, nil
	}

	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) > 2 {
			endIdx := len(lines) - 1
			for i := len(lines) - 1; i > 0; i-- {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
					endIdx = i
					break
				}
			}
			body := strings.Join(lines[1:endIdx], "\n")
			if err := json.Unmarshal([]byte(body), &plan); err == nil {
				return plan, nil
			}
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &plan); err == nil {
			return plan, nil
		}
	}

	return Plan{}, fmt.Errorf("%w: %s", ErrMalformedPlan, truncateForError(raw))
}

func truncateForError(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
