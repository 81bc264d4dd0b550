// Package planner produces advisory reasoning plans for a question.
//
// Plans are non-binding guidance recorded in the query trace. Nothing in the
// strategy resolver depends on their content, and every failure to obtain a
// plan is absorbed by substituting Fallback.
package planner

import (
	"context"
	"log/slog"
)

// Plan is a step-by-step reasoning plan for answering a question.
type Plan struct {
	Goal        string   `json:"goal"`
	Steps       []string `json:"steps"`
	Strategy    string   `json:"strategy"`
	Assumptions []string `json:"assumptions,omitempty"`
}

// Fallback returns the plan used whenever no advisory plan is available.
func Fallback() Plan {
	return Plan{Goal: "heuristic", Steps: []string{}, Strategy: "fallback"}
}

// Planner produces a plan for a question.
type Planner interface {
	Plan(ctx context.Context, question string) (Plan, error)
}

// PlanOrFallback asks p for a plan and substitutes Fallback on any failure,
// including a nil planner. It never returns an error.
func PlanOrFallback(ctx context.Context, p Planner, question string, log *slog.Logger) Plan {
	if p == nil {
		return Fallback()
	}
	plan, err := p.Plan(ctx, question)
	if err != nil {
		if log != nil {
			log.Warn("pipeline: advisory plan unavailable, using fallback", "error", err)
		}
		return Fallback()
	}
	if plan.Steps == nil {
		plan.Steps = []string{}
	}
	return plan
}
