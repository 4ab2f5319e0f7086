package processors

import "testing"

func TestAnalyzeSentimentPositiveMajority(t *testing.T) {
	r := AnalyzeSentiment("good good bad")
	if r.OverallSentiment != "positive" {
		t.Errorf("expected positive, got %q", r.OverallSentiment)
	}
	if r.ConfidenceScore != 0.67 {
		t.Errorf("expected confidence 0.67, got %v", r.ConfidenceScore)
	}
	if r.WordAnalysis.PositiveWords != 2 || r.WordAnalysis.NegativeWords != 1 {
		t.Errorf("unexpected word counts: %+v", r.WordAnalysis)
	}
	if len(r.EmotionalTone) != 1 || r.EmotionalTone[0] != "uplifting" {
		t.Errorf("expected tone [uplifting], got %v", r.EmotionalTone)
	}
}

func TestAnalyzeSentimentNegativeMajority(t *testing.T) {
	r := AnalyzeSentiment("this was terrible and awful but had a good moment")
	if r.OverallSentiment != "negative" {
		t.Errorf("expected negative, got %q", r.OverallSentiment)
	}
	if r.ConfidenceScore != 0.67 {
		t.Errorf("expected confidence 0.67, got %v", r.ConfidenceScore)
	}
	if r.EmotionalTone[len(r.EmotionalTone)-1] != "serious" {
		t.Errorf("expected serious tone, got %v", r.EmotionalTone)
	}
}

func TestAnalyzeSentimentNeutral(t *testing.T) {
	r := AnalyzeSentiment("the weather report for today")
	if r.OverallSentiment != "neutral" {
		t.Errorf("expected neutral, got %q", r.OverallSentiment)
	}
	if r.ConfidenceScore != 0.5 {
		t.Errorf("expected confidence 0.5, got %v", r.ConfidenceScore)
	}
}

func TestAnalyzeSentimentEmptyTranscript(t *testing.T) {
	r := AnalyzeSentiment("")
	if r.OverallSentiment != "neutral" || r.ConfidenceScore != 0.5 {
		t.Errorf("empty transcript should be neutral/0.5, got %q/%v", r.OverallSentiment, r.ConfidenceScore)
	}
	if r.WordAnalysis.TotalWords != 0 {
		t.Errorf("expected 0 total words, got %d", r.WordAnalysis.TotalWords)
	}
}

func TestAnalyzeSentimentEducationalTone(t *testing.T) {
	r := AnalyzeSentiment("learn this tutorial guide to understand the concept")
	if len(r.EmotionalTone) == 0 || r.EmotionalTone[0] != "educational" {
		t.Errorf("expected educational tone first, got %v", r.EmotionalTone)
	}
	if r.WordAnalysis.EducationalWords != 5 {
		t.Errorf("expected 5 educational words, got %d", r.WordAnalysis.EducationalWords)
	}
}

func TestAnalyzeSentimentSubstringContainment(t *testing.T) {
	// "goodness" contains "good" and counts, matching is not exact-word.
	r := AnalyzeSentiment("goodness gracious")
	if r.WordAnalysis.PositiveWords != 1 {
		t.Errorf("expected substring containment to count, got %d", r.WordAnalysis.PositiveWords)
	}
	if r.OverallSentiment != "positive" {
		t.Errorf("expected positive, got %q", r.OverallSentiment)
	}
}
