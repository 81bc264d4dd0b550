package strategy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// synonym is a literal substring replacement.
type synonym struct {
	from, to string
}

// synonyms are applied in order; later replacements see the output of
// earlier ones.
var synonyms = []synonym{
	{"highest", "most"},
	{"maximum", "most"},
	{"top", "most"},
	{"albums", "album"},
	{"artists", "artist"},
	{"tracks", "track"},
	{"courses", "course"},
	{"students", "student"},
	{"playlists", "playlist"},
}

// Question is a question prepared for template evaluation.
//
// Text is lowercased and rewritten through the synonym table; keyword
// predicates run against it. Raw is lowercased only. Names are extracted
// from Raw so that a synonym never rewrites part of a proper noun
// ("toploader" must not become "mostloader").
type Question struct {
	Text string
	Raw  string
}

func prepareQuestion(question string) Question {
	raw := strings.ToLower(norm.NFC.String(question))
	text := raw
	for _, s := range synonyms {
		text = strings.ReplaceAll(text, s.from, s.to)
	}
	return Question{Text: text, Raw: raw}
}

// normalizeQuestion lowercases the question and applies the synonym table.
func normalizeQuestion(question string) string {
	return prepareQuestion(question).Text
}

// normalizeName prepares text taken from a question for exact comparison
// against an upper-cased column value.
func normalizeName(s string) string {
	s = strings.ReplaceAll(s, "?", "")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// nameAfter extracts the normalized name following the last occurrence of
// the word-bounded keyword in raw. It reports false when the keyword does
// not occur or nothing follows it.
func nameAfter(raw, keyword string) (string, bool) {
	sep := " " + keyword + " "
	i := strings.LastIndex(raw, sep)
	if i < 0 {
		return "", false
	}
	name := normalizeName(raw[i+len(sep):])
	return name, name != ""
}

// wordBetween extracts the single normalized word between the last
// word-bounded before and the following word-bounded after. Phrases of more
// than one word are rejected.
func wordBetween(raw, before, after string) (string, bool) {
	j := strings.Index(raw, " "+after)
	if j < 0 {
		return "", false
	}
	sep := " " + before + " "
	i := strings.LastIndex(raw[:j+1], sep)
	if i < 0 || i+len(sep) > j {
		return "", false
	}
	name := normalizeName(raw[i+len(sep) : j])
	if name == "" || strings.Contains(name, " ") {
		return "", false
	}
	return name, true
}

// containsAll reports whether every keyword occurs in s.
func containsAll(s string, keywords ...string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}

// containsAny reports whether any keyword occurs in s.
func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// mentioned returns the vocabulary entries whose lowercase form occurs in q,
// in vocabulary order.
func mentioned(q string, vocabulary []string) []string {
	var found []string
	for _, v := range vocabulary {
		if strings.Contains(q, strings.ToLower(v)) {
			found = append(found, v)
		}
	}
	return found
}

// quoteList renders values as a comma-separated list of SQL literals.
func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteLiteral(v)
	}
	return strings.Join(quoted, ", ")
}
