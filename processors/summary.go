package processors

import (
	"context"
	"strings"

	"videoChat/core"
)

// Answerer is the slice of the answer synthesizer the summary generator needs.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Fixed prompts behind the multi-level summary.
const (
	briefSummaryPrompt      = "Provide a brief 30-word summary of this video."
	detailedSummaryPrompt   = "Provide a detailed 200-word summary covering all main points."
	keyTakeawaysPrompt      = "List the top 5 key takeaways from this video in bullet points."
	technicalConceptsPrompt = "What technical concepts or terminology are explained in this video?"
)

// GenerateStructuredSummary asks the synthesizer for four fixed summaries and
// returns them verbatim, splitting the list-shaped answers on newlines.
func GenerateStructuredSummary(ctx context.Context, answerer Answerer) (core.StructuredSummary, error) {
	brief, err := answerer.Answer(ctx, briefSummaryPrompt)
	if err != nil {
		return core.StructuredSummary{}, err
	}
	detailed, err := answerer.Answer(ctx, detailedSummaryPrompt)
	if err != nil {
		return core.StructuredSummary{}, err
	}
	takeaways, err := answerer.Answer(ctx, keyTakeawaysPrompt)
	if err != nil {
		return core.StructuredSummary{}, err
	}
	concepts, err := answerer.Answer(ctx, technicalConceptsPrompt)
	if err != nil {
		return core.StructuredSummary{}, err
	}

	return core.StructuredSummary{
		BriefSummary:      brief,
		DetailedSummary:   detailed,
		KeyTakeaways:      splitLines(takeaways),
		TechnicalConcepts: splitLines(concepts),
		GeneratedAt:       core.Now(),
	}, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
