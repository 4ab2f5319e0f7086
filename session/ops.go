package session

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"videoChat/core"
	"videoChat/processors"
	"videoChat/youtube"
)

// Ask answers a question about a processed video.
func (m *Manager) Ask(ctx context.Context, videoID, question string) (string, error) {
	s, ok := m.Get(videoID)
	if !ok {
		return "", core.E(core.KindNotFound, "video %s not found, process it first", videoID)
	}
	return s.Synth.Answer(ctx, question)
}

// AskWithTimestamps answers a question and reports which parts of the video
// the answer was grounded in.
func (m *Manager) AskWithTimestamps(ctx context.Context, videoID, question string) (core.TimestampedAnswer, error) {
	s, ok := m.Get(videoID)
	if !ok {
		return core.TimestampedAnswer{}, core.E(core.KindNotFound, "video %s not found, process it first", videoID)
	}
	return s.Synth.AnswerWithTimestamps(ctx, question)
}

// BatchQuestions answers several questions in order.
func (m *Manager) BatchQuestions(ctx context.Context, videoID string, questions []string) ([][2]string, error) {
	results := make([][2]string, 0, len(questions))
	for _, q := range questions {
		answer, err := m.Ask(ctx, videoID, q)
		if err != nil {
			return results, err
		}
		results = append(results, [2]string{q, answer})
	}
	return results, nil
}

// FormatAnswerWithTimestamps renders an answer as markdown with clickable
// deep links into the source video.
func (m *Manager) FormatAnswerWithTimestamps(ctx context.Context, videoID, question string) (string, error) {
	result, err := m.AskWithTimestamps(ctx, videoID, question)
	if err != nil {
		return "", err
	}
	if len(result.Timestamps) == 0 {
		return result.Answer + "\n\n**Source Timestamps:** No specific timestamps available.", nil
	}

	var sb strings.Builder
	sb.WriteString(result.Answer)
	sb.WriteString("\n\n**Source Timestamps:**\n")
	for _, ts := range result.Timestamps {
		snippet := ts.TextSegment
		if r := []rune(snippet); len(r) > 100 {
			snippet = string(r[:100])
		}
		fmt.Fprintf(&sb, "- [%s](%s) - %s...\n", ts.Formatted, youtube.TimestampURL(videoID, ts.StartTime), snippet)
	}
	return sb.String(), nil
}

// Analytics returns a video's processing metadata and interaction counters.
func (m *Manager) Analytics(videoID string) (core.Analytics, error) {
	s, ok := m.Get(videoID)
	if !ok {
		return core.Analytics{}, core.E(core.KindNotFound, "video %s not found", videoID)
	}
	return s.Analytics(), nil
}

// Sentiment re-fetches the raw transcript and scores it with the keyword
// counter. A failed re-fetch scores the empty transcript, which comes out
// neutral. Degraded, not fatal.
func (m *Manager) Sentiment(videoID string) (core.SentimentReport, error) {
	if _, ok := m.Get(videoID); !ok {
		return core.SentimentReport{}, core.E(core.KindNotFound, "video %s not processed", videoID)
	}
	transcript := ""
	if segments, err := m.source.FetchTranscript(videoID, "en"); err == nil {
		transcript = youtube.JoinSegments(segments)
	}
	return processors.AnalyzeSentiment(transcript), nil
}

// Summary generates the multi-level structured summary for a video.
func (m *Manager) Summary(ctx context.Context, videoID string) (core.StructuredSummary, error) {
	s, ok := m.Get(videoID)
	if !ok {
		return core.StructuredSummary{}, core.E(core.KindNotFound, "video %s not processed", videoID)
	}
	return processors.GenerateStructuredSummary(ctx, synthAnswerer{s: s})
}

type synthAnswerer struct {
	s *Session
}

func (a synthAnswerer) Answer(ctx context.Context, question string) (string, error) {
	return a.s.Synth.Answer(ctx, question)
}

// SearchAcrossVideos fans one query out over the given sessions (all of them
// when videoIDs is empty) and ranks the answers. Per-video failures are
// skipped, not fatal.
func (m *Manager) SearchAcrossVideos(ctx context.Context, query string, videoIDs []string) ([]core.SearchResult, int) {
	targets := videoIDs
	if len(targets) == 0 {
		targets = m.List()
	}

	var results []core.SearchResult
	searched := 0
	for _, id := range targets {
		answer, err := m.Ask(ctx, id, query)
		if err != nil {
			continue
		}
		searched++
		results = append(results, core.SearchResult{
			VideoID:    id,
			Answer:     answer,
			Confidence: 0.8,
			Relevant:   true,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Confidence > results[j].Confidence })
	return results, searched
}

// Export bundles analytics, sentiment and the structured summary for a video.
func (m *Manager) Export(ctx context.Context, videoID string) (core.AnalyticsExport, error) {
	analytics, err := m.Analytics(videoID)
	if err != nil {
		return core.AnalyticsExport{}, err
	}
	sentiment, err := m.Sentiment(videoID)
	if err != nil {
		return core.AnalyticsExport{}, err
	}
	summary, err := m.Summary(ctx, videoID)
	if err != nil {
		return core.AnalyticsExport{}, err
	}
	return core.AnalyticsExport{
		VideoID:           videoID,
		Analytics:         analytics,
		SentimentAnalysis: sentiment,
		AutoSummary:       summary,
		ExportTimestamp:   core.Now(),
	}, nil
}
