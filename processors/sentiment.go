package processors

import (
	"math"
	"strings"

	"videoChat/core"
)

// Keyword lists for the naive sentiment scorer. Matching is substring
// containment per token, not exact word match; callers depend on these exact
// thresholds, so do not "improve" this.
var (
	positiveWords = []string{"good", "great", "excellent", "amazing",
		"wonderful", "love", "like", "best", "awesome", "fantastic"}
	negativeWords = []string{"bad", "terrible", "awful", "hate", "worst",
		"horrible", "disappointing", "sad", "angry", "frustrated"}
	educationalWords = []string{"learn", "tutorial", "guide", "explain",
		"understand", "concept", "example", "demonstration"}
)

// AnalyzeSentiment scores a transcript by keyword counting. Majority of
// positive vs negative tokens decides the overall sentiment; confidence is
// the winning share, 0.5 when neither appears. A video whose tokens are more
// than 1% educational is tagged "educational".
func AnalyzeSentiment(transcript string) core.SentimentReport {
	words := strings.Fields(strings.ToLower(transcript))

	positive := countMatches(words, positiveWords)
	negative := countMatches(words, negativeWords)
	educational := countMatches(words, educationalWords)

	total := positive + negative

	var sentiment string
	var confidence float64
	switch {
	case total == 0:
		sentiment = "neutral"
		confidence = 0.5
	case positive > negative:
		sentiment = "positive"
		confidence = float64(positive) / float64(total)
	default:
		sentiment = "negative"
		confidence = float64(negative) / float64(total)
	}

	var tone []string
	if float64(educational) > float64(len(words))*0.01 {
		tone = append(tone, "educational")
	}
	if positive > negative {
		tone = append(tone, "uplifting")
	} else {
		tone = append(tone, "serious")
	}

	return core.SentimentReport{
		OverallSentiment: sentiment,
		EmotionalTone:    tone,
		ConfidenceScore:  math.Round(confidence*100) / 100,
		WordAnalysis: core.WordAnalysis{
			PositiveWords:    positive,
			NegativeWords:    negative,
			EducationalWords: educational,
			TotalWords:       len(words),
		},
	}
}

func countMatches(words, keywords []string) int {
	count := 0
	for _, w := range words {
		for _, k := range keywords {
			if strings.Contains(w, k) {
				count++
				break
			}
		}
	}
	return count
}
