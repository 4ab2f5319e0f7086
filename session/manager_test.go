package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"videoChat/config"
	"videoChat/core"
	"videoChat/llm"
	"videoChat/storage"
)

type fakeSource struct {
	fetches    atomic.Int64
	fetchDelay time.Duration
	err        error
}

func (f *fakeSource) ListTranscripts(string) ([]core.TranscriptInfo, error) {
	return []core.TranscriptInfo{{LanguageCode: "en", Language: "English"}}, nil
}

func (f *fakeSource) FetchTranscript(videoID, languageCode string) ([]core.Segment, error) {
	f.fetches.Add(1)
	if f.fetchDelay > 0 {
		time.Sleep(f.fetchDelay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return []core.Segment{
		{Text: "Hello world", Start: 0, Duration: 2},
		{Text: "this is a test", Start: 2, Duration: 3},
		{Text: "of chunking", Start: 5, Duration: 2},
	}, nil
}

type noopTranslator struct{}

func (noopTranslator) Translate(text, _, _ string) string { return text }

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		RetrievalK:   4,
	}
}

func noRetry() core.RetryProfile {
	return core.RetryProfile{MaxRetries: 1, Sleep: func(time.Duration) {}}
}

func newTestManager(source *fakeSource, opts ...Option) *Manager {
	provider := &llm.MockProvider{}
	opts = append([]Option{WithEmbedRetry(noRetry())}, opts...)
	return NewManager(testConfig(), source, noopTranslator{}, provider, provider, storage.NewMemoryStore(), opts...)
}

func TestProcessVideoIdempotent(t *testing.T) {
	source := &fakeSource{}
	m := newTestManager(source)

	first, err := m.ProcessVideo(context.Background(), "vid", "en", true)
	if err != nil {
		t.Fatalf("first process failed: %v", err)
	}
	second, err := m.ProcessVideo(context.Background(), "vid", "en", true)
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}

	if first != second {
		t.Error("reprocessing should return the existing session")
	}
	if n := source.fetches.Load(); n != 1 {
		t.Errorf("expected 1 transcript fetch, got %d", n)
	}
}

func TestProcessVideoConcurrentSharesBuild(t *testing.T) {
	source := &fakeSource{fetchDelay: 20 * time.Millisecond}
	m := newTestManager(source)

	const n = 8
	sessions := make([]*Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.ProcessVideo(context.Background(), "vid", "en", true)
			if err != nil {
				t.Errorf("process %d failed: %v", i, err)
				return
			}
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	if fetches := source.fetches.Load(); fetches != 1 {
		t.Errorf("concurrent callers should share one build, got %d fetches", fetches)
	}
	for i := 1; i < n; i++ {
		if sessions[i] != sessions[0] {
			t.Fatalf("caller %d got a different session", i)
		}
	}
}

func TestProcessVideoFetchFailure(t *testing.T) {
	source := &fakeSource{err: core.E(core.KindNotFound, "no captions available")}
	m := newTestManager(source)

	if _, err := m.ProcessVideo(context.Background(), "vid", "en", true); err == nil {
		t.Fatal("expected fetch error to surface")
	}
	if _, ok := m.Get("vid"); ok {
		t.Error("a failed build must not leave a session behind")
	}

	// The failure is not cached; the next call tries again.
	source.err = nil
	if _, err := m.ProcessVideo(context.Background(), "vid", "en", true); err != nil {
		t.Fatalf("retrying after failure should work: %v", err)
	}
}

func TestSessionStats(t *testing.T) {
	m := newTestManager(&fakeSource{})

	s, err := m.ProcessVideo(context.Background(), "vid", "en", false)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if s.Stats.VideoID != "vid" || s.Stats.LanguageCode != "en" {
		t.Errorf("unexpected stats identity: %+v", s.Stats)
	}
	if s.Stats.WordCount != 8 {
		t.Errorf("expected 8 words, got %d", s.Stats.WordCount)
	}
	if s.Stats.TranscriptLength != len("Hello world this is a test of chunking") {
		t.Errorf("unexpected transcript length %d", s.Stats.TranscriptLength)
	}
	if s.Stats.ChunkCount != 1 {
		t.Errorf("expected 1 chunk, got %d", s.Stats.ChunkCount)
	}
}

func TestAskLifecycle(t *testing.T) {
	m := newTestManager(&fakeSource{})
	ctx := context.Background()

	if _, err := m.Ask(ctx, "vid", "q"); !core.IsKind(err, core.KindNotFound) {
		t.Fatalf("asking before processing should be NotFound, got %v", err)
	}

	if _, err := m.ProcessVideo(ctx, "vid", "en", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	answer, err := m.Ask(ctx, "vid", "what is this about?")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if answer == "" {
		t.Error("expected a non-empty answer")
	}

	a, err := m.Analytics("vid")
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if a.InteractionStats.TotalQuestions != 1 {
		t.Errorf("expected 1 question counted, got %d", a.InteractionStats.TotalQuestions)
	}
}

func TestAskWithTimestamps(t *testing.T) {
	m := newTestManager(&fakeSource{})
	ctx := context.Background()

	if _, err := m.ProcessVideo(ctx, "vid", "en", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	result, err := m.AskWithTimestamps(ctx, "vid", "when is the test mentioned?")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if result.VideoID != "vid" {
		t.Errorf("unexpected video id %q", result.VideoID)
	}
	if len(result.Timestamps) != 3 {
		t.Fatalf("expected 3 timestamp refs from the single chunk, got %d", len(result.Timestamps))
	}
	if result.Timestamps[0].Formatted != "00:00 - 00:02" {
		t.Errorf("unexpected formatted range %q", result.Timestamps[0].Formatted)
	}
}

func TestFormatAnswerWithTimestamps(t *testing.T) {
	m := newTestManager(&fakeSource{})
	ctx := context.Background()

	if _, err := m.ProcessVideo(ctx, "vid", "en", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	out, err := m.FormatAnswerWithTimestamps(ctx, "vid", "q")
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if !strings.Contains(out, "**Source Timestamps:**") {
		t.Error("expected the timestamps section header")
	}
	if !strings.Contains(out, "https://www.youtube.com/watch?v=vid&t=0s") {
		t.Error("expected a deep link into the video")
	}
}

func TestBatchQuestions(t *testing.T) {
	m := newTestManager(&fakeSource{})
	ctx := context.Background()

	if _, err := m.ProcessVideo(ctx, "vid", "en", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	results, err := m.BatchQuestions(ctx, "vid", []string{"q1", "q2"})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0][0] != "q1" || results[1][0] != "q2" {
		t.Errorf("results should preserve question order: %v", results)
	}
}

func TestClear(t *testing.T) {
	m := newTestManager(&fakeSource{})
	ctx := context.Background()

	if err := m.Clear("vid"); !core.IsKind(err, core.KindNotFound) {
		t.Fatalf("clearing an unknown video should be NotFound, got %v", err)
	}

	if _, err := m.ProcessVideo(ctx, "vid", "en", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if err := m.Clear("vid"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := m.Get("vid"); ok {
		t.Error("session should be gone after clear")
	}
	if _, err := m.Ask(ctx, "vid", "q"); !core.IsKind(err, core.KindNotFound) {
		t.Errorf("asking after clear should be NotFound, got %v", err)
	}
}

func TestLRUEviction(t *testing.T) {
	m := newTestManager(&fakeSource{}, WithMaxSessions(2))
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := m.ProcessVideo(ctx, id, "en", true); err != nil {
			t.Fatalf("process %s failed: %v", id, err)
		}
	}
	// Touch "a" so "b" is the eviction candidate.
	if _, ok := m.Get("a"); !ok {
		t.Fatal("expected session a")
	}

	if _, err := m.ProcessVideo(ctx, "c", "en", true); err != nil {
		t.Fatalf("process c failed: %v", err)
	}

	if _, ok := m.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := m.Get("a"); !ok {
		t.Error("expected a to survive")
	}
	if _, ok := m.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestSearchAcrossVideos(t *testing.T) {
	m := newTestManager(&fakeSource{})
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := m.ProcessVideo(ctx, id, "en", true); err != nil {
			t.Fatalf("process %s failed: %v", id, err)
		}
	}

	results, searched := m.SearchAcrossVideos(ctx, "what is covered?", nil)
	if searched != 2 {
		t.Errorf("expected 2 videos searched, got %d", searched)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Relevant || r.Confidence != 0.8 {
			t.Errorf("unexpected result shape: %+v", r)
		}
	}

	// Unprocessed targets are skipped, not fatal.
	results, searched = m.SearchAcrossVideos(ctx, "q", []string{"a", "missing"})
	if searched != 1 || len(results) != 1 {
		t.Errorf("expected only the processed video, got %d results / %d searched", len(results), searched)
	}
}

func TestSentimentRequiresSession(t *testing.T) {
	m := newTestManager(&fakeSource{})

	if _, err := m.Sentiment("vid"); !core.IsKind(err, core.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	if _, err := m.ProcessVideo(context.Background(), "vid", "en", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	report, err := m.Sentiment("vid")
	if err != nil {
		t.Fatalf("sentiment failed: %v", err)
	}
	if report.WordAnalysis.TotalWords != 8 {
		t.Errorf("expected the transcript's 8 words analyzed, got %d", report.WordAnalysis.TotalWords)
	}
}

type failingEmbedder struct {
	llm.MockProvider
	failOn string
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.failOn == "" || strings.Contains(text, f.failOn) {
		return nil, errors.New("embedding backend down")
	}
	return f.MockProvider.Embed(ctx, text)
}

func TestProcessVideoAllEmbeddingsFailed(t *testing.T) {
	gen := &llm.MockProvider{}
	m := NewManager(testConfig(), &fakeSource{}, noopTranslator{}, &failingEmbedder{}, gen,
		storage.NewMemoryStore(), WithEmbedRetry(noRetry()))

	_, err := m.ProcessVideo(context.Background(), "vid", "en", true)
	if !core.IsKind(err, core.KindUpstreamPermanent) {
		t.Fatalf("expected KindUpstreamPermanent when nothing embeds, got %v", err)
	}
}

func TestProcessVideoSkipsFailedChunks(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 12
	cfg.ChunkOverlap = 0

	gen := &llm.MockProvider{}
	embedder := &failingEmbedder{failOn: "chunking"}
	store := storage.NewMemoryStore()
	m := NewManager(cfg, &fakeSource{}, noopTranslator{}, embedder, gen, store, WithEmbedRetry(noRetry()))

	s, err := m.ProcessVideo(context.Background(), "vid", "en", true)
	if err != nil {
		t.Fatalf("process should tolerate partial embedding failure: %v", err)
	}

	hits := store.Search("vid", []float32{1}, 0)
	if len(hits) == 0 || len(hits) >= s.Stats.ChunkCount {
		t.Errorf("expected some but not all chunks indexed, got %d of %d", len(hits), s.Stats.ChunkCount)
	}
	for _, h := range hits {
		if strings.Contains(h.Chunk.Text, "chunking") {
			t.Errorf("failed chunk should have been skipped, found %q", h.Chunk.Text)
		}
	}
}
