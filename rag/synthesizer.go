// Package rag implements the retrieval-then-generate answer path: embed the
// question, pull the nearest transcript chunks, and condition one generation
// call on them.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"videoChat/core"
	"videoChat/llm"
	"videoChat/storage"
)

const noContextSentinel = "No relevant context found."

// promptTemplate is the fixed instruction block. Callers depend on its exact
// wording, so it is reproduced as-is from the system it replaces.
const promptTemplate = `You are an intelligent and articulate assistant who has watched the entire video and internalized its content. Based on that, answer the following user question in your own words, with clarity, precision, and relevance.

	📌 OBJECTIVE:
	Your goal is to provide clear, helpful, and engaging answers grounded in the video content — as if you’re summarizing or explaining it to a curious learner.

	🎯 INSTRUCTIONS:
	- Begin with a direct answer — avoid unnecessary greetings or filler like “Sure”, “Of course”, or “Here’s the answer.”
	- Respond in a natural, confident tone while staying informative and structured.
	- Use everyday, human-like language, but stay focused on the point.
	- Tailor the response to the type of question:
	    - **"What is the video about?"** → Give a short, structured overview with key points.
	    - **"What is X?"** → Define and explain the concept based on the video.
	    - **"Explain roadmap" or steps** → List key steps clearly and in order.
	    - **"Are there any examples?"** → Briefly mention specific ones from the video if available.
	- Avoid simply rephrasing transcript lines — instead, internalize and explain.
	- Avoid excessive repetition or generic phrases like “the video talks about…” unless needed.
	- If the question is vague or open-ended, summarize the most relevant highlights.

	🧠 KNOWLEDGE SOURCE:
	Below is the full transcript of the video. Treat it as your internal memory — don’t quote directly, explain as if it’s your own knowledge.

	--- VIDEO TRANSCRIPT START ---
	{context}
	--- VIDEO TRANSCRIPT END ---

	❓ USER QUESTION:
	{question}

	💬 YOUR ANSWER:`

// Synthesizer answers questions about one processed video. Every Answer or
// AnswerWithTimestamps call bumps the owning session's question counter
// exactly once, whether or not generation succeeds; generation failures come
// back as error-text answers rather than errors.
type Synthesizer struct {
	VideoID   string
	Embedder  llm.Embedder
	Generator llm.Generator
	Store     storage.VectorStore
	K         int

	// Questions is the owning session's counter.
	Questions *atomic.Int64

	// GenRetry wraps the generation call. Zero value means no retries, which
	// tests use; NewSynthesizer installs the generation profile.
	GenRetry core.RetryProfile
}

func NewSynthesizer(videoID string, embedder llm.Embedder, generator llm.Generator, store storage.VectorStore, k int, questions *atomic.Int64) *Synthesizer {
	return &Synthesizer{
		VideoID:   videoID,
		Embedder:  embedder,
		Generator: generator,
		Store:     store,
		K:         k,
		Questions: questions,
		GenRetry:  core.GenerationRetryProfile(),
	}
}

// Answer retrieves the top-K chunks for the question and generates a single
// answer conditioned on them.
func (s *Synthesizer) Answer(ctx context.Context, question string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	s.Questions.Add(1)

	hits, err := s.retrieve(ctx, question)
	if err != nil {
		return fmt.Sprintf("Error generating answer: %v", err), nil
	}
	answer, err := s.generate(ctx, question, hits)
	if err != nil {
		return fmt.Sprintf("Error generating answer: %v", err), nil
	}
	return answer, nil
}

// AnswerWithTimestamps additionally aggregates the retrieved chunks'
// timestamp provenance, deduplicated across chunks and sorted by start time.
func (s *Synthesizer) AnswerWithTimestamps(ctx context.Context, question string) (core.TimestampedAnswer, error) {
	if err := s.ready(); err != nil {
		return core.TimestampedAnswer{}, err
	}
	s.Questions.Add(1)

	result := core.TimestampedAnswer{VideoID: s.VideoID, Question: question}

	hits, err := s.retrieve(ctx, question)
	if err != nil {
		result.Answer = fmt.Sprintf("Error generating answer: %v", err)
		result.Timestamps = []core.TimestampInfo{}
		return result, nil
	}
	result.Timestamps = collectTimestamps(hits)

	answer, err := s.generate(ctx, question, hits)
	if err != nil {
		result.Answer = fmt.Sprintf("Error generating answer: %v", err)
		return result, nil
	}
	result.Answer = answer
	return result, nil
}

func (s *Synthesizer) ready() error {
	if s.Store == nil || s.Embedder == nil || s.Generator == nil {
		return core.E(core.KindNotReady, "no video has been processed yet for %s", s.VideoID)
	}
	return nil
}

func (s *Synthesizer) retrieve(ctx context.Context, question string) ([]core.ScoredChunk, error) {
	queryVec, err := s.Embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	return s.Store.Search(s.VideoID, queryVec, s.K), nil
}

func (s *Synthesizer) generate(ctx context.Context, question string, hits []core.ScoredChunk) (string, error) {
	prompt := strings.NewReplacer(
		"{context}", formatContext(hits),
		"{question}", question,
	).Replace(promptTemplate)

	var answer string
	err := core.Retry(func() error {
		var genErr error
		answer, genErr = s.Generator.Generate(ctx, prompt)
		return genErr
	}, s.GenRetry)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// formatContext joins retrieved chunk texts with blank lines, or the fixed
// sentinel when retrieval came back empty; the model call still happens.
func formatContext(hits []core.ScoredChunk) string {
	if len(hits) == 0 {
		return noContextSentinel
	}
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Chunk.Text
	}
	return strings.Join(parts, "\n\n")
}

func collectTimestamps(hits []core.ScoredChunk) []core.TimestampInfo {
	type key struct{ start, end float64 }
	seen := make(map[key]struct{})
	var refs []core.TimestampRef
	for _, h := range hits {
		for _, ts := range h.Chunk.Timestamps {
			k := key{ts.Start, ts.End}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			refs = append(refs, ts)
		}
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Start < refs[j].Start })

	infos := make([]core.TimestampInfo, len(refs))
	for i, ts := range refs {
		infos[i] = core.TimestampInfo{
			StartTime:   ts.Start,
			EndTime:     ts.End,
			Formatted:   core.FormatTimeRange(ts.Start, ts.End),
			TextSegment: ts.TextSegment,
		}
	}
	return infos
}
