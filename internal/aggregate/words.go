package aggregate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/metascope/internal/cleaning"
	"github.com/KaramelBytes/metascope/internal/dataset"
)

// DefaultTopWords is the number of words reported when no limit is configured.
const DefaultTopWords = 50

// Field names a free-text column that words can be counted from.
type Field string

const (
	FieldTitle    Field = "title"
	FieldAbstract Field = "abstract"
)

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldTitle, "":
		return FieldTitle, nil
	case FieldAbstract:
		return FieldAbstract, nil
	default:
		return "", fmt.Errorf("unsupported word field: %s (use title|abstract)", s)
	}
}

func (f Field) pick(r cleaning.CleanedRecord) dataset.Nullable[string] {
	if f == FieldAbstract {
		return r.Abstract
	}
	return r.Title
}

// Stopwords are dropped before counting.
var Stopwords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "in": {}, "to": {},
	"a": {}, "for": {}, "on": {}, "with": {}, "by": {},
}

// wordRE matches runs of Unicode letters, digits and underscores.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lower-cases text and splits it into words, dropping stopwords.
func Tokenize(text string) []string {
	lower := cases.Lower(language.Und).String(text)
	words := wordRE.FindAllString(lower, -1)
	out := words[:0]
	for _, w := range words {
		if _, stop := Stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// TopWords returns the n most frequent words of the given field; n <= 0
// returns every word. Equal counts keep the order in which words were first
// seen.
func TopWords(records []cleaning.CleanedRecord, field Field, n int) []CategoryCount {
	counts := map[string]int{}
	var order []string
	for _, r := range records {
		text, ok := field.pick(r).Get()
		if !ok {
			continue
		}
		for _, w := range Tokenize(text) {
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}
	}
	out := make([]CategoryCount, len(order))
	for i, w := range order {
		out[i] = CategoryCount{Value: w, Count: counts[w]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
