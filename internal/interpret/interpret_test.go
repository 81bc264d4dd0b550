package interpret

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	in := New(DefaultVocabulary())

	testCases := []struct {
		name     string
		question string
		columns  []string
		rows     [][]any
		want     string
	}{
		{
			name:     "count",
			question: "How many tracks are there?",
			columns:  []string{"COUNT(*)"},
			rows:     [][]any{{int64(3503)}},
			want:     "The result count is 3503.",
		},
		{
			name:     "count with no rows",
			question: "How many tracks are there?",
			columns:  []string{"COUNT(*)"},
			rows:     [][]any{},
			want:     "The result count is 0.",
		},
		{
			name:     "count from place",
			question: "How many customers are from new york?",
			columns:  []string{"COUNT(*)"},
			rows:     [][]any{{int64(2)}},
			want:     "There are 2 customers from New York.",
		},
		{
			name:     "count uses last from",
			question: "How many customers from work are from brazil ?",
			columns:  []string{"COUNT(*)"},
			rows:     [][]any{{int64(5)}},
			want:     "There are 5 customers from Brazil.",
		},
		{
			name:     "empty with domain explanation",
			question: "Which customers never made a purchase?",
			columns:  []string{"FirstName"},
			rows:     [][]any{},
			want:     DefaultVocabulary().EmptyExplanation,
		},
		{
			name:     "empty",
			question: "Which tracks are by Nobody?",
			columns:  []string{"Name"},
			rows:     nil,
			want:     "No matching records were found.",
		},
		{
			name:     "rows",
			question: "Which artist has the most tracks?",
			columns:  []string{"Name", "TrackCount"},
			rows:     [][]any{{"Iron Maiden", int64(213)}, {[]byte("U2"), int64(135)}},
			want:     "Results:\nIron Maiden, 213\nU2, 135",
		},
		{
			name:     "values",
			question: "prices",
			columns:  []string{"Name", "UnitPrice", "Composer"},
			rows:     [][]any{{"Song", 0.99, nil}},
			want:     "Results:\nSong, 0.99, NULL",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, in.Interpret(tc.question, tc.columns, tc.rows))
		})
	}
}

func TestInterpret_CustomVocabulary(t *testing.T) {
	in := New(Vocabulary{
		CountEntity:      "students",
		EmptyTriggers:    [][]string{{"not enrolled"}},
		EmptyExplanation: "Every student is enrolled in at least one course.",
	})

	assert.Equal(t, "There are 4 students from Oslo.",
		in.Interpret("How many students from oslo?", []string{"COUNT(*)"}, [][]any{{int64(4)}}))
	assert.Equal(t, "Every student is enrolled in at least one course.",
		in.Interpret("Students not enrolled anywhere", []string{"Name"}, nil))
	assert.Equal(t, NoMatches,
		in.Interpret("Which customers never made a purchase?", []string{"Name"}, nil))
}
