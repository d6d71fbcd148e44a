package documents

import (
	"strings"
	"unicode/utf8"
)

const (
	// fragmentContext is how many characters are kept on each side of the
	// first match when building a relevance fragment.
	fragmentContext = 100
	// summaryLimit bounds the fallback preview of the extracted text.
	summaryLimit = 200
)

// Summary returns the leading portion of text for previews. Texts within
// the limit come back whole; longer ones are cut to 197 characters plus an
// ellipsis marker. Limits count characters, not bytes, so accented text is
// never split mid-rune.
func Summary(text string) string {
	if utf8.RuneCountInString(text) <= summaryLimit {
		return text
	}
	return string([]rune(text)[:summaryLimit-3]) + "..."
}

// Fragment returns the window of text surrounding the first case-insensitive
// occurrence of term, with ellipsis markers where the window does not touch
// the text bounds. Without a term, or when the term cannot be located, it
// falls back to Summary.
func Fragment(text, term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return Summary(text)
	}

	pos := runeIndex(strings.ToLower(text), strings.ToLower(term))
	if pos == -1 {
		return Summary(text)
	}

	runes := []rune(text)
	start := pos - fragmentContext
	if start < 0 {
		start = 0
	}
	end := pos + utf8.RuneCountInString(term) + fragmentContext
	if end > len(runes) {
		end = len(runes)
	}

	fragment := string(runes[start:end])
	if start > 0 {
		fragment = "..." + fragment
	}
	if end < len(runes) {
		fragment = fragment + "..."
	}
	return fragment
}

// runeIndex returns the character offset of the first occurrence of sub in s,
// or -1 when absent.
func runeIndex(s, sub string) int {
	byteIdx := strings.Index(s, sub)
	if byteIdx == -1 {
		return -1
	}
	return utf8.RuneCountInString(s[:byteIdx])
}
