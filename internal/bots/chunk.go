package bots

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage splits text that exceeds limit into multiple messages, breaking
// on paragraph boundaries (double line-breaks). Texts within the limit are
// returned as a single message. A single paragraph longer than the limit is
// hard-split at the limit so every returned chunk fits.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, p := range paragraphs {
		// Oversized paragraph: hard-split on a rune boundary.
		for len(p) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(p[cut]) {
				cut--
			}
			if cut == 0 { // limit smaller than one rune
				cut = limit
			}
			chunks = append(chunks, p[:cut])
			p = p[cut:]
		}

		joined := current.Len() + len(p)
		if current.Len() > 0 {
			joined += 2 // separator
		}
		if joined > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	return chunks
}
