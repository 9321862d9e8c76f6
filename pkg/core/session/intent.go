package session

import (
	"sort"
	"strings"
	"unicode"
)

// Intent is the classification of one utterance.
type Intent string

const (
	IntentNone   Intent = "none"
	IntentExit   Intent = "exit"
	IntentMusic  Intent = "music"
	IntentChat   Intent = "chat"
	IntentCancel Intent = "cancel"
	IntentSelect Intent = "select"
)

// normalize lowercases text and collapses whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// firstContained returns the first phrase, in the given order, that occurs
// anywhere in text. Matching is plain substring matching, so when several
// phrases are present the earlier one in the list wins.
func firstContained(text string, phrases []string) (string, bool) {
	for _, p := range phrases {
		p = normalize(p)
		if p != "" && strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// firstWords returns the first phrase, in the given order, whose words
// appear as a contiguous run of whole words in text. Unlike firstContained
// it never matches inside a longer word.
func firstWords(text string, phrases []string) (string, bool) {
	words := splitWords(text)
	for _, p := range phrases {
		pw := splitWords(normalize(p))
		if len(pw) == 0 {
			continue
		}
		for i := range words {
			if matchAt(words, i, [][]string{pw}) > 0 {
				return strings.Join(pw, " "), true
			}
		}
	}
	return "", false
}

// classify decides what an utterance in NORMAL state asks for.
func classify(text string, p Phrases) (Intent, string) {
	if text == "" {
		return IntentNone, ""
	}
	if _, ok := firstWords(text, p.Exit); ok {
		return IntentExit, ""
	}
	if trigger, ok := firstContained(text, p.Triggers); ok {
		return IntentMusic, trigger
	}
	return IntentChat, ""
}

// extractQuery removes every trigger phrase from text and trims filler
// words from both ends of what remains.
func extractQuery(text string, triggers, fillers []string) string {
	words := splitWords(text)

	phrases := make([][]string, 0, len(triggers))
	for _, t := range triggers {
		if w := splitWords(strings.ToLower(t)); len(w) > 0 {
			phrases = append(phrases, w)
		}
	}
	// Longest first so "play song" is removed before "play".
	sort.SliceStable(phrases, func(i, j int) bool { return len(phrases[i]) > len(phrases[j]) })

	kept := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		if n := matchAt(words, i, phrases); n > 0 {
			i += n
			continue
		}
		kept = append(kept, words[i])
		i++
	}

	filler := make(map[string]bool, len(fillers))
	for _, f := range fillers {
		filler[strings.ToLower(strings.TrimSpace(f))] = true
	}
	for len(kept) > 0 && filler[kept[0]] {
		kept = kept[1:]
	}
	for len(kept) > 0 && filler[kept[len(kept)-1]] {
		kept = kept[:len(kept)-1]
	}
	return strings.Join(kept, " ")
}

func matchAt(words []string, i int, phrases [][]string) int {
	for _, p := range phrases {
		if i+len(p) > len(words) {
			continue
		}
		match := true
		for j, w := range p {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return len(p)
		}
	}
	return 0
}

// splitWords splits on whitespace and sentence punctuation, keeping
// apostrophes and hyphens inside titles.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(".,!?;:\"", r)
	})
}
