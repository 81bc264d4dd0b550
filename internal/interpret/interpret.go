// Package interpret renders query results as a plain-language answer.
package interpret

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CountColumn is the column name produced by the count shortcut.
const CountColumn = "COUNT(*)"

// NoMatches is the answer for an empty result with no domain explanation.
const NoMatches = "No matching records were found."

// Vocabulary holds the domain-specific phrases used by the interpreter.
type Vocabulary struct {
	// CountEntity names what a "... from <place>" count refers to.
	CountEntity string

	// EmptyTriggers are keyword groups; when every keyword of a group occurs
	// in the question, an empty result is explained with EmptyExplanation.
	EmptyTriggers [][]string

	EmptyExplanation string
}

// DefaultVocabulary is the music-store customer vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		CountEntity:   "customers",
		EmptyTriggers: [][]string{{"never", "purchase"}},
		EmptyExplanation: "All customers in the database have made at least one purchase. " +
			"There are no customers without an invoice.",
	}
}

// Interpreter turns (question, columns, rows) into an answer.
// It is safe for concurrent use.
type Interpreter struct {
	vocab Vocabulary
}

// New creates an interpreter with the given vocabulary.
func New(vocab Vocabulary) *Interpreter {
	return &Interpreter{vocab: vocab}
}

// Interpret renders the answer. It is deterministic and never fails.
func (in *Interpreter) Interpret(question string, columns []string, rows [][]any) string {
	q := strings.ToLower(question)

	if len(columns) == 1 && columns[0] == CountColumn {
		var count any = 0
		if len(rows) > 0 && len(rows[0]) > 0 {
			count = rows[0][0]
		}
		if i := strings.LastIndex(q, "from"); i >= 0 {
			entity := strings.ReplaceAll(q[i+len("from"):], "?", "")
			entity = cases.Title(language.English).String(strings.TrimSpace(entity))
			return fmt.Sprintf("There are %s %s from %s.", FormatValue(count), in.vocab.CountEntity, entity)
		}
		return fmt.Sprintf("The result count is %s.", FormatValue(count))
	}

	if len(rows) == 0 {
		for _, group := range in.vocab.EmptyTriggers {
			if containsAll(q, group) {
				return in.vocab.EmptyExplanation
			}
		}
		return NoMatches
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		fields := make([]string, len(row))
		for j, v := range row {
			fields[j] = FormatValue(v)
		}
		lines[i] = strings.Join(fields, ", ")
	}
	return "Results:\n" + strings.Join(lines, "\n")
}

// FormatValue renders a single scanned column value.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func containsAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return len(keywords) > 0
}
