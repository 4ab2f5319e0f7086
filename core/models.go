package core

import "time"

// Segment is one timestamped unit from the transcript source.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the absolute end time of the segment.
func (s Segment) End() float64 { return s.Start + s.Duration }

// TimestampRef is a segment reference attached to a chunk, keyed by its
// absolute (start, end) interval.
type TimestampRef struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	TextSegment string  `json:"text_segment"`
}

// Chunk is the unit of retrieval: a bounded slice of transcript text with
// the timestamp provenance of every segment it overlaps. Timestamps are
// sorted by start and deduplicated by (start, end); they are fixed at
// construction and never attached later.
type Chunk struct {
	Text       string         `json:"text"`
	Timestamps []TimestampRef `json:"timestamps"`
	StartTime  float64        `json:"start_time"`
	EndTime    float64        `json:"end_time"`
}

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// TimestampInfo is the formatted timestamp entry returned by the
// timestamp-aware ask path.
type TimestampInfo struct {
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Formatted   string  `json:"formatted"`
	TextSegment string  `json:"text_segment"`
}

// TranscriptInfo describes one available transcript track for a video.
type TranscriptInfo struct {
	LanguageCode   string `json:"language_code"`
	Language       string `json:"language"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`
}

// TimestampedAnswer is the result of an ask-with-timestamps call.
type TimestampedAnswer struct {
	Answer     string          `json:"answer"`
	Timestamps []TimestampInfo `json:"timestamps"`
	VideoID    string          `json:"video_id"`
	Question   string          `json:"question"`
}

// VideoStats is the per-video processing metadata block.
type VideoStats struct {
	VideoID          string  `json:"video_id"`
	LanguageCode     string  `json:"language_code"`
	Translated       bool    `json:"translated"`
	ProcessedAt      float64 `json:"processed_at"`
	TranscriptLength int     `json:"transcript_length"`
	WordCount        int     `json:"word_count"`
	ChunkCount       int     `json:"chunk_count"`
	ProcessingTime   float64 `json:"processing_time"`
}

// InteractionStats is the per-video interaction counter block.
type InteractionStats struct {
	TotalQuestions int64 `json:"total_questions"`
}

// Analytics combines processing metadata and interaction counters.
type Analytics struct {
	VideoStats       VideoStats       `json:"video_stats"`
	InteractionStats InteractionStats `json:"interaction_stats"`
}

// WordAnalysis holds the raw keyword counts behind a sentiment report.
type WordAnalysis struct {
	PositiveWords    int `json:"positive_words"`
	NegativeWords    int `json:"negative_words"`
	EducationalWords int `json:"educational_words"`
	TotalWords       int `json:"total_words"`
}

// SentimentReport is the keyword-based sentiment result.
type SentimentReport struct {
	OverallSentiment string       `json:"overall_sentiment"`
	EmotionalTone    []string     `json:"emotional_tone"`
	ConfidenceScore  float64      `json:"confidence_score"`
	WordAnalysis     WordAnalysis `json:"word_analysis"`
}

// StructuredSummary is the multi-level summary block.
type StructuredSummary struct {
	BriefSummary      string   `json:"brief_summary"`
	DetailedSummary   string   `json:"detailed_summary"`
	KeyTakeaways      []string `json:"key_takeaways"`
	TechnicalConcepts []string `json:"technical_concepts"`
	GeneratedAt       float64  `json:"generated_at"`
}

// SearchResult is one cross-video search hit.
type SearchResult struct {
	VideoID    string  `json:"video_id"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Relevant   bool    `json:"relevant"`
}

// AnalyticsExport bundles everything known about a video for export.
type AnalyticsExport struct {
	VideoID           string            `json:"video_id"`
	Analytics         Analytics         `json:"analytics"`
	SentimentAnalysis SentimentReport   `json:"sentiment_analysis"`
	AutoSummary       StructuredSummary `json:"auto_summary"`
	ExportTimestamp   float64           `json:"export_timestamp"`
}

// Now returns the current time as unix seconds with fraction, the timestamp
// representation used across analytics payloads.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second.Nanoseconds())
}
