package youtube

import (
	"testing"

	"videoChat/core"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?t=30", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"  https://www.youtube.com/watch?v=dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
	}
	for _, c := range cases {
		got, err := ExtractVideoID(c.in)
		if err != nil {
			t.Errorf("ExtractVideoID(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractVideoIDRejectsForeignURLs(t *testing.T) {
	for _, in := range []string{
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/feed/subscriptions",
		"https://www.youtube.com/watch",
	} {
		_, err := ExtractVideoID(in)
		if err == nil {
			t.Errorf("ExtractVideoID(%q) should fail", in)
			continue
		}
		if !core.IsKind(err, core.KindInvalidInput) {
			t.Errorf("ExtractVideoID(%q): expected KindInvalidInput, got %v", in, err)
		}
	}
}

func TestValidateVideoID(t *testing.T) {
	if !ValidateVideoID("dQw4w9WgXcQ") {
		t.Error("a canonical 11-char ID should validate")
	}
	for _, id := range []string{"", "short", "dQw4w9WgXcQextra", "has space!!"} {
		if ValidateVideoID(id) {
			t.Errorf("ValidateVideoID(%q) should be false", id)
		}
	}
}

func TestWatchURL(t *testing.T) {
	got := WatchURL("dQw4w9WgXcQ")
	if got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("WatchURL = %q", got)
	}
	// Round trip through the extractor.
	id, err := ExtractVideoID(got)
	if err != nil || id != "dQw4w9WgXcQ" {
		t.Errorf("round trip failed: %q, %v", id, err)
	}
}

func TestTimestampURL(t *testing.T) {
	got := TimestampURL("dQw4w9WgXcQ", 125.7)
	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=125s"
	if got != want {
		t.Errorf("TimestampURL = %q, want %q", got, want)
	}
}
