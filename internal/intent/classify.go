// Package intent assigns a coarse intent category and risk flags to a question.
//
// Classification is a pure function of the lowercased question text. Rules are
// evaluated in priority order and the first matching rule wins, so a question
// that mentions both "tables" and "most" is always a meta question.
package intent

import "strings"

// Type is the coarse intent category of a question.
type Type string

const (
	TypeMeta      Type = "meta"
	TypeAmbiguous Type = "ambiguous"
	TypeMultiStep Type = "multi_step"
	TypeModerate  Type = "moderate"
	TypeSimple    Type = "simple"
)

// Risk is the estimated risk of answering the question incorrectly.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Classification is the immutable result of classifying one question.
type Classification struct {
	Type                   Type `json:"intent_type"`
	NeedsSchemaExploration bool `json:"needs_schema_exploration"`
	NeedsClarification     bool `json:"needs_clarification"`
	Risk                   Risk `json:"risk_level"`
}

// rule maps a keyword set to a classification.
type rule struct {
	keywords []string
	result   Classification
}

// rules is ordered by priority.
var rules = []rule{
	{
		keywords: []string{"table", "tables", "schema", "column", "columns"},
		result:   Classification{Type: TypeMeta, NeedsSchemaExploration: true, Risk: RiskLow},
	},
	{
		keywords: []string{"best", "recent", "top"},
		result:   Classification{Type: TypeAmbiguous, NeedsClarification: true, Risk: RiskMedium},
	},
	{
		keywords: []string{"never", "not enrolled", "no purchase"},
		result:   Classification{Type: TypeMultiStep, NeedsSchemaExploration: true, Risk: RiskMedium},
	},
	{
		keywords: []string{"most", "total", "count"},
		result:   Classification{Type: TypeModerate, NeedsSchemaExploration: true, Risk: RiskLow},
	},
}

// Classify returns the classification of the first rule whose keywords appear
// in the question, or a low-risk simple classification.
func Classify(question string) Classification {
	q := strings.ToLower(question)
	for _, r := range rules {
		if containsAny(q, r.keywords) {
			return r.result
		}
	}
	return Classification{Type: TypeSimple, Risk: RiskLow}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
