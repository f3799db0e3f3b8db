package factcheck

import (
	"strings"
	"unicode"
)

// SplitSentences splits a paragraph into sentences. A sentence ends at a run
// of sentence-final punctuation (. ! ?) followed by whitespace or the end of
// the text. Punctuation not followed by whitespace (e.g. "3.14") does not
// terminate a sentence.
func SplitSentences(text string) []string {
	var out []string
	rs := []rune(text)
	start := 0

	for i := 0; i < len(rs); i++ {
		if !isTerminal(rs[i]) {
			continue
		}
		// Extend over the punctuation run ("...", "?!").
		j := i
		for j+1 < len(rs) && isTerminal(rs[j+1]) {
			j++
		}
		if j+1 < len(rs) && !unicode.IsSpace(rs[j+1]) {
			i = j
			continue
		}
		if s := strings.TrimSpace(string(rs[start : j+1])); s != "" {
			out = append(out, s)
		}
		i = j + 1
		for i < len(rs) && unicode.IsSpace(rs[i]) {
			i++
		}
		start = i
		i--
	}

	if start < len(rs) {
		if s := strings.TrimSpace(string(rs[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ContainsNumeral reports whether the sentence contains at least one numeral
// character, the trigger for fact verification.
func ContainsNumeral(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
