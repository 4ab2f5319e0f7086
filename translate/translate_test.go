package translate

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitRunes(t *testing.T) {
	chunks := splitRunes("abcdefgh", 3)
	want := []string{"abc", "def", "gh"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %v", len(want), chunks)
	}
	for i, w := range want {
		if chunks[i] != w {
			t.Errorf("chunk %d: expected %q, got %q", i, w, chunks[i])
		}
	}
}

func TestSplitRunesMultibyte(t *testing.T) {
	text := strings.Repeat("日本語", 4)
	chunks := splitRunes(text, 5)
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid UTF-8", i)
		}
		if utf8.RuneCountInString(c) > 5 {
			t.Errorf("chunk %d exceeds the rune limit", i)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks should reassemble the input")
	}
}

func TestSplitRunesEmpty(t *testing.T) {
	chunks := splitRunes("", 10)
	if len(chunks) != 1 || chunks[0] != "" {
		t.Errorf("empty input should yield one empty chunk, got %v", chunks)
	}
}
