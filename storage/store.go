package storage

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"videoChat/config"
	"videoChat/core"
)

// VectorStore abstracts the retrieval index backend. Chunks are keyed by
// video so one store instance serves every session.
type VectorStore interface {
	// Upsert replaces the indexed chunks for a video and returns how many
	// were stored. Chunks and vectors are parallel slices.
	Upsert(videoID string, chunks []core.Chunk, vectors [][]float32) int
	// Search returns up to topK chunks by descending similarity. Asking for
	// more chunks than are indexed returns all of them.
	Search(videoID string, queryVec []float32, topK int) []core.ScoredChunk
	// Delete drops a video's chunks.
	Delete(videoID string) error
}

// Init selects the backend from the STORE env var (memory, pgvector, milvus)
// and falls back to the in-memory store when a remote backend cannot be
// reached. Memory is the default: sessions are process-scoped.
func Init(cfg *config.Config) VectorStore {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("STORE"))) {
	case "pgvector":
		s, err := newPgVectorStore(cfg)
		if err != nil {
			fmt.Printf("Warning: failed to initialize pgvector store (%v), falling back to memory store\n", err)
			return NewMemoryStore()
		}
		return s
	case "milvus":
		s, err := newMilvusStore(cfg)
		if err != nil {
			fmt.Printf("Warning: failed to initialize Milvus store (%v), falling back to memory store\n", err)
			return NewMemoryStore()
		}
		return s
	}
	return NewMemoryStore()
}

// ---------------- Memory implementation (default) ----------------

type memoryDoc struct {
	chunk core.Chunk
	vec   []float32
}

// MemoryStore is an exact nearest-neighbor index over cosine similarity.
// Ranking is deterministic: equal scores keep insertion order.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]memoryDoc
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]memoryDoc{}}
}

func (s *MemoryStore) Upsert(videoID string, chunks []core.Chunk, vectors [][]float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]memoryDoc, 0, len(chunks))
	for i, c := range chunks {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			continue
		}
		docs = append(docs, memoryDoc{chunk: c, vec: vectors[i]})
	}
	s.docs[videoID] = docs
	return len(docs)
}

func (s *MemoryStore) Search(videoID string, queryVec []float32, topK int) []core.ScoredChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.docs[videoID]
	scored := make([]core.ScoredChunk, 0, len(docs))
	for _, d := range docs {
		scored = append(scored, core.ScoredChunk{Chunk: d.chunk, Score: Cosine(queryVec, d.vec)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if topK <= 0 || topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK]
}

func (s *MemoryStore) Delete(videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, videoID)
	return nil
}

// Cosine returns the cosine similarity of two vectors, 0 on dimension
// mismatch or zero norm.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
