package strategy

import "fmt"

// ValidationResult lists the problems found in a strategy.
type ValidationResult struct {
	Valid    bool
	Problems []string
}

// Validate checks the structural invariants of a resolved data strategy:
//
//   - HAVING requires GROUP BY
//   - exactly one of select columns and aggregations is set
//   - the limit is not negative
//
// Meta and unresolved strategies are always valid. Validate is a pure
// function.
func Validate(s Strategy) ValidationResult {
	var problems []string
	if s.IsMeta() || !s.Resolved() {
		return ValidationResult{Valid: true}
	}

	if s.Having != "" && len(s.GroupBy) == 0 {
		problems = append(problems, "HAVING without GROUP BY is unsafe.")
	}
	switch {
	case len(s.SelectColumns) == 0 && len(s.Aggregations) == 0:
		problems = append(problems, "strategy selects no columns or aggregations")
	case len(s.SelectColumns) > 0 && len(s.Aggregations) > 0:
		problems = append(problems, "strategy sets both select columns and aggregations")
	}
	if s.Limit < 0 {
		problems = append(problems, fmt.Sprintf("negative limit %d", s.Limit))
	}

	return ValidationResult{Valid: len(problems) == 0, Problems: problems}
}
