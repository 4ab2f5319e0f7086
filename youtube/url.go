package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"videoChat/core"
)

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
var looseIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ExtractVideoID pulls the 11-character video ID out of the common YouTube
// URL forms (watch, youtu.be, embed, /v/), a bare ID, or a URL missing its
// scheme.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		switch {
		case strings.HasPrefix(raw, "www."),
			strings.HasPrefix(raw, "youtube.com"),
			strings.HasPrefix(raw, "youtu.be"),
			strings.HasPrefix(raw, "m.youtube.com"):
			raw = "https://" + raw
		default:
			if len(raw) == 11 && looseIDPattern.MatchString(raw) {
				return raw, nil
			}
			raw = "https://www.youtube.com/watch?v=" + raw
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", core.Wrap(core.KindInvalidInput, err, "could not parse URL %q", raw)
	}

	switch u.Hostname() {
	case "www.youtube.com", "youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			if v := u.Query().Get("v"); v != "" {
				return v, nil
			}
		}
		if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
			return strings.SplitN(rest, "/", 2)[0], nil
		}
		if rest, ok := strings.CutPrefix(u.Path, "/v/"); ok {
			return strings.SplitN(rest, "/", 2)[0], nil
		}
	case "youtu.be":
		if id := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]; id != "" {
			return id, nil
		}
	}

	return "", core.E(core.KindInvalidInput, "could not extract video ID from URL: %s", raw)
}

// ValidateVideoID reports whether id looks like a YouTube video ID.
func ValidateVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// TimestampURL returns a watch URL that deep-links to a start offset.
func TimestampURL(videoID string, start float64) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", videoID, int(start))
}
