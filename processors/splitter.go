package processors

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators mirror the recursive character splitter this system was
// tuned against: paragraph, line, word, then rune-by-rune as a last resort.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// SplitText splits text into pieces of at most chunkSize characters with
// neighbors overlapping by up to chunkOverlap characters. Lengths are counted
// in runes, so a split can never land inside a codepoint. Every returned
// piece is a contiguous substring of the input.
func SplitText(text string, chunkSize, chunkOverlap int) []string {
	if text == "" {
		return nil
	}
	return splitRecursive(text, defaultSeparators, chunkSize, chunkOverlap)
}

func splitRecursive(text string, separators []string, chunkSize, chunkOverlap int) []string {
	sep := separators[len(separators)-1]
	var remaining []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			remaining = separators[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		splits = splitEveryRune(text)
	} else {
		splits = strings.Split(text, sep)
	}

	// Splits that fit are merged into chunks; oversized ones recurse on the
	// finer separators first.
	var final []string
	var pending []string
	for _, s := range splits {
		if utf8.RuneCountInString(s) <= chunkSize {
			pending = append(pending, s)
			continue
		}
		if len(pending) > 0 {
			final = append(final, mergeSplits(pending, sep, chunkSize, chunkOverlap)...)
			pending = nil
		}
		if len(remaining) == 0 {
			final = append(final, s)
		} else {
			final = append(final, splitRecursive(s, remaining, chunkSize, chunkOverlap)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, mergeSplits(pending, sep, chunkSize, chunkOverlap)...)
	}
	return final
}

// mergeSplits packs consecutive splits into chunks of at most chunkSize
// characters, carrying chunkOverlap characters of trailing context into the
// next chunk.
func mergeSplits(splits []string, sep string, chunkSize, chunkOverlap int) []string {
	sepLen := utf8.RuneCountInString(sep)

	var chunks []string
	var current []string
	total := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(current, sep))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, s := range splits {
		sLen := utf8.RuneCountInString(s)
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+sLen+extra > chunkSize && len(current) > 0 {
			flush()
			// Drop leading splits until the retained tail fits the overlap
			// budget and leaves room for the incoming split.
			for len(current) > 0 && (total > chunkOverlap ||
				(total+sLen+sepLen > chunkSize && total > 0)) {
				head := utf8.RuneCountInString(current[0])
				total -= head
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, s)
		total += sLen
	}
	flush()
	return chunks
}

func splitEveryRune(text string) []string {
	out := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}
