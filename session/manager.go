// Package session owns the per-video pipeline state: one entry per processed
// video, holding its retrieval index binding, answer synthesizer, processing
// metadata and interaction counters.
package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"videoChat/config"
	"videoChat/core"
	"videoChat/llm"
	"videoChat/processors"
	"videoChat/rag"
	"videoChat/storage"
	"videoChat/translate"
	"videoChat/youtube"
)

// Session is the full processed state for one video. It exists if and only
// if ProcessVideo completed successfully for its video id and the session
// has not been cleared.
type Session struct {
	VideoID   string
	Stats     core.VideoStats
	Questions atomic.Int64
	Synth     *rag.Synthesizer

	lastUsed time.Time
}

// Analytics snapshots the session's metadata and counters.
func (s *Session) Analytics() core.Analytics {
	return core.Analytics{
		VideoStats:       s.Stats,
		InteractionStats: core.InteractionStats{TotalQuestions: s.Questions.Load()},
	}
}

type inflight struct {
	done    chan struct{}
	session *Session
	err     error
}

// Manager is the process-wide session table. ProcessVideo is an atomic
// get-or-create: concurrent calls for the same video share a single pipeline
// build. Sessions for different videos are independent.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	building map[string]*inflight

	source     youtube.TranscriptSource
	translator translate.Translator
	embedder   llm.Embedder
	generator  llm.Generator
	store      storage.VectorStore

	chunkSize    int
	chunkOverlap int
	retrievalK   int

	// maxSessions bounds the table with LRU eviction; 0 means unbounded.
	maxSessions int

	// embedRetry wraps per-chunk embedding calls. Tests zero it out.
	embedRetry core.RetryProfile
}

type Option func(*Manager)

// WithMaxSessions bounds the session table; the least recently used session
// is evicted when a new one would exceed n.
func WithMaxSessions(n int) Option {
	return func(m *Manager) { m.maxSessions = n }
}

// WithEmbedRetry overrides the embedding retry profile.
func WithEmbedRetry(p core.RetryProfile) Option {
	return func(m *Manager) { m.embedRetry = p }
}

func NewManager(cfg *config.Config, source youtube.TranscriptSource, translator translate.Translator,
	embedder llm.Embedder, generator llm.Generator, store storage.VectorStore, opts ...Option) *Manager {
	m := &Manager{
		sessions:     make(map[string]*Session),
		building:     make(map[string]*inflight),
		source:       source,
		translator:   translator,
		embedder:     embedder,
		generator:    generator,
		store:        store,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		retrievalK:   cfg.RetrievalK,
		maxSessions:  cfg.MaxSessions,
		embedRetry:   core.EmbeddingRetryProfile(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ProcessVideo builds the retrieval pipeline for a video, or returns the
// existing session unchanged without refetching anything. Concurrent calls
// for the same id wait for the one in-flight build.
func (m *Manager) ProcessVideo(ctx context.Context, videoID, languageCode string, translateToEnglish bool) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[videoID]; ok {
		s.lastUsed = time.Now()
		m.mu.Unlock()
		return s, nil
	}
	if call, ok := m.building[videoID]; ok {
		m.mu.Unlock()
		<-call.done
		return call.session, call.err
	}
	call := &inflight{done: make(chan struct{})}
	m.building[videoID] = call
	m.mu.Unlock()

	s, err := m.buildPipeline(ctx, videoID, languageCode, translateToEnglish)

	m.mu.Lock()
	delete(m.building, videoID)
	if err == nil {
		m.insertLocked(videoID, s)
	}
	m.mu.Unlock()

	call.session, call.err = s, err
	close(call.done)
	return s, err
}

func (m *Manager) buildPipeline(ctx context.Context, videoID, languageCode string, translateToEnglish bool) (*Session, error) {
	jobID := uuid.NewString()
	log.Printf("Processing video %s (language: %s, job: %s)", videoID, languageCode, jobID)
	start := time.Now()

	segments, err := m.source.FetchTranscript(videoID, languageCode)
	if err != nil {
		return nil, err
	}
	transcript := youtube.JoinSegments(segments)
	log.Printf("Transcript extracted: %d characters", len(transcript))

	if translateToEnglish && languageCode != "en" {
		transcript = m.translator.Translate(transcript, languageCode, "en")
	}

	chunker := processors.NewChunker(m.chunkSize, m.chunkOverlap)
	chunks := chunker.ChunkTranscript(transcript, segments)

	// Embed chunk by chunk; a chunk whose embedding call exhausts its
	// retries is skipped rather than failing the video.
	kept := make([]core.Chunk, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	for i, c := range chunks {
		var vec []float32
		err := core.Retry(func() error {
			var embErr error
			vec, embErr = m.embedder.Embed(ctx, c.Text)
			return embErr
		}, m.embedRetry)
		if err != nil {
			log.Printf("Skipped chunk %d/%d: %v", i+1, len(chunks), err)
			continue
		}
		kept = append(kept, c)
		vectors = append(vectors, vec)
	}
	if len(kept) == 0 {
		return nil, core.E(core.KindUpstreamPermanent, "no chunks could be embedded for video %s", videoID)
	}

	stored := m.store.Upsert(videoID, kept, vectors)
	log.Printf("Indexed %d/%d chunks for video %s", stored, len(chunks), videoID)

	s := &Session{
		VideoID: videoID,
		Stats: core.VideoStats{
			VideoID:          videoID,
			LanguageCode:     languageCode,
			Translated:       translateToEnglish,
			ProcessedAt:      core.Now(),
			TranscriptLength: len(transcript),
			WordCount:        len(strings.Fields(transcript)),
			ChunkCount:       len(chunks),
			ProcessingTime:   time.Since(start).Seconds(),
		},
		lastUsed: time.Now(),
	}
	s.Synth = rag.NewSynthesizer(videoID, m.embedder, m.generator, m.store, m.retrievalK, &s.Questions)

	log.Printf("Video %s ready for questions (%.2fs)", videoID, s.Stats.ProcessingTime)
	return s, nil
}

// insertLocked adds a session, evicting the least recently used one when the
// table is bounded. Caller holds m.mu.
func (m *Manager) insertLocked(videoID string, s *Session) {
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		var oldest string
		var oldestAt time.Time
		for id, sess := range m.sessions {
			if oldest == "" || sess.lastUsed.Before(oldestAt) {
				oldest, oldestAt = id, sess.lastUsed
			}
		}
		if oldest != "" {
			delete(m.sessions, oldest)
			_ = m.store.Delete(oldest)
			log.Printf("Evicted least recently used session: %s", oldest)
		}
	}
	m.sessions[videoID] = s
}

// Get returns the session for a video, touching its LRU clock.
func (m *Manager) Get(videoID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[videoID]
	if ok {
		s.lastUsed = time.Now()
	}
	return s, ok
}

// Clear removes a session and its indexed chunks. NotFound when absent.
func (m *Manager) Clear(videoID string) error {
	m.mu.Lock()
	_, ok := m.sessions[videoID]
	delete(m.sessions, videoID)
	m.mu.Unlock()
	if !ok {
		return core.E(core.KindNotFound, "video %s not found", videoID)
	}
	return m.store.Delete(videoID)
}

// List returns the processed video ids.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
