package music

import (
	"strings"
	"unicode"
)

// MaxPosition is the highest list position a spoken selection may name.
const MaxPosition = 5

// DefaultOrdinalWords maps ordinal words to 1-based positions.
var DefaultOrdinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"1st": 1, "2nd": 2, "3rd": 3, "4th": 4, "5th": 5,
	"pertama": 1, "kedua": 2, "ketiga": 3, "keempat": 4, "kelima": 5,
}

// DefaultCardinalWords maps cardinal words and digits to 1-based positions.
var DefaultCardinalWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"satu": 1, "dua": 2, "tiga": 3, "empat": 4, "lima": 5,
	"1": 1, "2": 2, "3": 3, "4": 4, "5": 5,
}

// DefaultSelectorWords are nouns that introduce a number ("number two",
// "nomor dua").
var DefaultSelectorWords = []string{
	"number", "no", "track", "song", "option", "nomor", "lagu", "pilihan",
}

// DefaultGuardedWords are cardinals that double as pronouns. They only count
// directly after a selector word or as the whole utterance.
var DefaultGuardedWords = []string{"one"}

// Ordinals resolves spoken selections to zero-based list indices.
type Ordinals struct {
	ordinals  map[string]int
	cardinals map[string]int
	selectors map[string]bool
	guarded   map[string]bool
}

// NewOrdinals builds a resolver. Positions outside 1..MaxPosition are ignored.
func NewOrdinals(ordinals, cardinals map[string]int, selectors, guarded []string) *Ordinals {
	o := &Ordinals{
		ordinals:  normalizeWords(ordinals),
		cardinals: normalizeWords(cardinals),
		selectors: wordSet(selectors),
		guarded:   wordSet(guarded),
	}
	return o
}

// DefaultOrdinals returns the English and Indonesian resolver.
func DefaultOrdinals() *Ordinals {
	return NewOrdinals(DefaultOrdinalWords, DefaultCardinalWords, DefaultSelectorWords, DefaultGuardedWords)
}

// Resolve maps an utterance to a zero-based index. Ordinal words win over
// cardinals and digits; within each class the first word in the utterance
// wins.
func (o *Ordinals) Resolve(utterance string) (int, bool) {
	words := tokenize(utterance)
	if len(words) == 0 {
		return 0, false
	}

	for _, w := range words {
		if pos, ok := o.ordinals[w]; ok {
			return pos - 1, true
		}
	}

	for i, w := range words {
		pos, ok := o.cardinals[w]
		if !ok {
			continue
		}
		if o.guarded[w] && len(words) > 1 && (i == 0 || !o.selectors[words[i-1]]) {
			continue
		}
		return pos - 1, true
	}
	return 0, false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalizeWords(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for word, pos := range in {
		if pos < 1 || pos > MaxPosition {
			continue
		}
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		out[word] = pos
	}
	return out
}

func wordSet(words []string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out[w] = true
		}
	}
	return out
}
