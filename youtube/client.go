package youtube

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"videoChat/core"
)

const timedtextURL = "https://www.youtube.com/api/timedtext"

// TranscriptSource lists and fetches timestamped transcripts for a video.
type TranscriptSource interface {
	ListTranscripts(videoID string) ([]core.TranscriptInfo, error)
	FetchTranscript(videoID, languageCode string) ([]core.Segment, error)
}

// Client talks to YouTube's timedtext endpoint. Calls are wrapped in the
// transcript retry profile, so transient quota/gateway failures are retried
// before they surface.
type Client struct {
	httpClient *http.Client
	retry      core.RetryProfile
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      core.TranscriptRetryProfile(),
	}
}

type trackList struct {
	XMLName xml.Name `xml:"transcript_list"`
	Tracks  []track  `xml:"track"`
}

type track struct {
	LangCode       string `xml:"lang_code,attr"`
	LangTranslated string `xml:"lang_translated,attr"`
	LangOriginal   string `xml:"lang_original,attr"`
	Kind           string `xml:"kind,attr"`
}

// ListTranscripts returns the transcript tracks available for a video.
// A video with captions disabled yields a NotFound error.
func (c *Client) ListTranscripts(videoID string) ([]core.TranscriptInfo, error) {
	fmt.Printf("Checking available transcripts for video: %s\n", videoID)

	q := url.Values{}
	q.Set("type", "list")
	q.Set("v", videoID)

	var body []byte
	err := core.Retry(func() error {
		var err error
		body, err = c.get(timedtextURL + "?" + q.Encode())
		return err
	}, c.retry)
	if err != nil {
		return nil, core.Wrap(core.KindUpstreamPermanent, err, "failed to get transcript list for %s", videoID)
	}

	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil || len(list.Tracks) == 0 {
		return nil, core.E(core.KindNotFound, "no captions available for video %s", videoID)
	}

	infos := make([]core.TranscriptInfo, 0, len(list.Tracks))
	for _, t := range list.Tracks {
		name := t.LangTranslated
		if name == "" {
			name = t.LangOriginal
		}
		infos = append(infos, core.TranscriptInfo{
			LanguageCode:   t.LangCode,
			Language:       name,
			IsGenerated:    t.Kind == "asr",
			IsTranslatable: true,
		})
	}
	fmt.Printf("Found %d available transcripts\n", len(infos))
	return infos, nil
}

// timedtext fmt=json3 payload.
type timedtextResponse struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// FetchTranscript downloads the transcript for one language as timestamped
// segments. Absence of the language (or captions entirely) is NotFound.
func (c *Client) FetchTranscript(videoID, languageCode string) ([]core.Segment, error) {
	tracks, err := c.ListTranscripts(videoID)
	if err != nil {
		return nil, err
	}
	found := false
	asr := false
	for _, t := range tracks {
		if t.LanguageCode == languageCode {
			found = true
			asr = t.IsGenerated
			break
		}
	}
	if !found {
		return nil, core.E(core.KindNotFound, "no %s transcript for video %s", languageCode, videoID)
	}

	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", languageCode)
	q.Set("fmt", "json3")
	if asr {
		q.Set("kind", "asr")
	}

	var body []byte
	err = core.Retry(func() error {
		var err error
		body, err = c.get(timedtextURL + "?" + q.Encode())
		return err
	}, c.retry)
	if err != nil {
		return nil, core.Wrap(core.KindUpstreamPermanent, err, "failed to fetch %s transcript for %s", languageCode, videoID)
	}

	var tt timedtextResponse
	if err := json.Unmarshal(body, &tt); err != nil {
		return nil, core.Wrap(core.KindUpstreamPermanent, err, "malformed transcript payload for %s", videoID)
	}

	segments := make([]core.Segment, 0, len(tt.Events))
	for _, ev := range tt.Events {
		var sb strings.Builder
		for _, s := range ev.Segs {
			sb.WriteString(s.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(sb.String(), "\n", " "))
		if text == "" {
			continue
		}
		segments = append(segments, core.Segment{
			Text:     text,
			Start:    float64(ev.StartMs) / 1000.0,
			Duration: float64(ev.DurationMs) / 1000.0,
		})
	}
	if len(segments) == 0 {
		return nil, core.E(core.KindNotFound, "empty %s transcript for video %s", languageCode, videoID)
	}
	fmt.Printf("Transcript extracted: %d segments\n", len(segments))
	return segments, nil
}

func (c *Client) get(u string) ([]byte, error) {
	resp, err := c.httpClient.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		// Status text carries the 429/502 tokens the retry matchers look for.
		return nil, fmt.Errorf("timedtext request failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// JoinSegments concatenates segment texts with single spaces, the canonical
// transcript form the chunker's position map is built against.
func JoinSegments(segments []core.Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
