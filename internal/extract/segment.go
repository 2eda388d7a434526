package extract

import (
	"strings"
	"unicode"
)

// SplitSentences breaks text into trimmed, non-empty sentences.
//
// A sentence ends at a newline, after a CJK terminator (。！？), or after
// Latin terminators (. ! ?) followed by whitespace. Closing quotes and
// brackets directly after a terminator stay with the sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush()
			continue
		}
		current.WriteRune(r)

		if !isTerminator(r) {
			continue
		}
		// Keep runs like "?!" and trailing closers together.
		for i+1 < len(runes) && (isTerminator(runes[i+1]) || isCloser(runes[i+1])) {
			i++
			current.WriteRune(runes[i])
		}
		if isCJKTerminator(r) || i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()
	return sentences
}

func isCJKTerminator(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || isCJKTerminator(r)
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’', '」', '』', '）':
		return true
	}
	return false
}
