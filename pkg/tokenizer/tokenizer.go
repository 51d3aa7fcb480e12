// Package tokenizer estimates prompt sizes for text generation calls.
package tokenizer

import (
	"strings"
	"unicode"
)

// CountTokens is a rough estimate: about four tokens per three words.
func CountTokens(text string) int {
	words := strings.Fields(text)
	return max(len(words)*4/3, 1)
}

// Truncate keeps the leading words of text that fit in maxTokens by the
// CountTokens estimate. Whitespace inside the kept prefix is preserved.
func Truncate(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || CountTokens(text) <= maxTokens {
		return text, false
	}
	maxWords := maxTokens * 3 / 4

	words := 0
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			if words == maxWords {
				return strings.TrimRightFunc(text[:i], unicode.IsSpace), true
			}
			words++
			inWord = true
		}
	}
	return text, false
}
