package voice

import (
	"strings"
)

// DefaultChunkChars is the target size of one synthesized clip.
const DefaultChunkChars = 240

var abbreviations = []string{
	"Dr.", "Mr.", "Mrs.", "Ms.", "Jr.", "Sr.", "St.",
	"Prof.", "Inc.", "Ltd.", "Co.", "vs.", "etc.",
	"i.e.", "e.g.", "a.m.", "p.m.", "U.S.", "U.K.",
	"No.", "Jl.", "Bpk.", "Sdr.", "dll.", "dsb.",
}

// SentenceBuffer accumulates text and extracts complete sentences.
type SentenceBuffer struct {
	buffer strings.Builder
}

// NewSentenceBuffer creates a new sentence buffer.
func NewSentenceBuffer() *SentenceBuffer {
	return &SentenceBuffer{}
}

// Add adds text to the buffer and returns any complete sentences.
func (b *SentenceBuffer) Add(text string) []string {
	b.buffer.WriteString(text)

	content := b.buffer.String()
	var sentences []string

	lastEnd := 0
	for i := 0; i < len(content); i++ {
		if !isSentenceEnd(content, i) {
			continue
		}
		if sentence := strings.TrimSpace(content[lastEnd : i+1]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		lastEnd = i + 1
	}

	if lastEnd > 0 {
		b.buffer.Reset()
		b.buffer.WriteString(content[lastEnd:])
	}
	return sentences
}

// Flush returns any remaining text and clears the buffer.
func (b *SentenceBuffer) Flush() string {
	result := strings.TrimSpace(b.buffer.String())
	b.buffer.Reset()
	return result
}

// SplitSpeech breaks a reply into clips of whole sentences, each at most
// maxChars long unless a single sentence is longer.
func SplitSpeech(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}

	b := NewSentenceBuffer()
	sentences := b.Add(strings.Join(strings.Fields(text), " "))
	if rest := b.Flush(); rest != "" {
		sentences = append(sentences, rest)
	}

	var (
		chunks  []string
		current strings.Builder
	)
	for _, s := range sentences {
		if current.Len() > 0 && current.Len()+1+len(s) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(s)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// isSentenceEnd checks if position i is a sentence boundary.
func isSentenceEnd(s string, i int) bool {
	c := s[i]
	if c != '.' && c != '!' && c != '?' {
		return false
	}
	if c == '.' && isAbbreviation(s, i) {
		return false
	}
	// Require whitespace or end of text after the mark ("3.14", "v1.2").
	if i+1 < len(s) && s[i+1] != ' ' && s[i+1] != '\n' && s[i+1] != '\r' && s[i+1] != '\t' {
		return false
	}
	return true
}

// isAbbreviation checks if the period at position i likely ends an
// abbreviation or an initial.
func isAbbreviation(s string, i int) bool {
	if i < 1 {
		return false
	}

	start := i
	for start > 0 && s[start-1] != ' ' && s[start-1] != '\n' {
		start--
	}
	word := s[start : i+1]
	for _, abbr := range abbreviations {
		if strings.EqualFold(word, abbr) {
			return true
		}
	}

	// Single uppercase letter: "J. Lennon".
	return s[i-1] >= 'A' && s[i-1] <= 'Z' && (i < 2 || s[i-2] == ' ' || s[i-2] == '\n')
}
