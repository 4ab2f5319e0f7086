package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"videoChat/config"
	"videoChat/core"
)

// PgVectorStore keeps chunk vectors in Postgres with the pgvector extension.
type PgVectorStore struct {
	conn *pgx.Conn
	dim  int
}

func newPgVectorStore(cfg *config.Config) (*PgVectorStore, error) {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PgVectorStore{conn: conn, dim: cfg.EmbeddingDim}
	if err := s.ensureTable(); err != nil {
		conn.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *PgVectorStore) ensureTable() error {
	ctx := context.Background()

	if _, err := s.conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector;"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS video_chunks (
			id SERIAL PRIMARY KEY,
			video_id VARCHAR(255) NOT NULL,
			chunk_index INT NOT NULL,
			text TEXT NOT NULL,
			start_time FLOAT NOT NULL,
			end_time FLOAT NOT NULL,
			timestamps JSONB,
			embedding vector(%d),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(video_id, chunk_index)
		);
	`, s.dim)
	if _, err := s.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create video_chunks table: %w", err)
	}

	indexQuery := `
		CREATE INDEX IF NOT EXISTS idx_video_chunks_video_id
		ON video_chunks (video_id);
	`
	if _, err := s.conn.Exec(ctx, indexQuery); err != nil {
		return fmt.Errorf("failed to create video_id index: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Upsert(videoID string, chunks []core.Chunk, vectors [][]float32) int {
	ctx := context.Background()

	if _, err := s.conn.Exec(ctx, "DELETE FROM video_chunks WHERE video_id = $1", videoID); err != nil {
		fmt.Printf("Warning: failed to clear existing chunks for %s: %v\n", videoID, err)
		return 0
	}

	stored := 0
	for i, c := range chunks {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			continue
		}
		tsJSON, err := json.Marshal(c.Timestamps)
		if err != nil {
			continue
		}
		_, err = s.conn.Exec(ctx, `
			INSERT INTO video_chunks (video_id, chunk_index, text, start_time, end_time, timestamps, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, videoID, i, c.Text, c.StartTime, c.EndTime, tsJSON, pgvector.NewVector(vectors[i]))
		if err != nil {
			fmt.Printf("Warning: failed to insert chunk %d for %s: %v\n", i, videoID, err)
			continue
		}
		stored++
	}
	return stored
}

func (s *PgVectorStore) Search(videoID string, queryVec []float32, topK int) []core.ScoredChunk {
	if topK <= 0 {
		topK = 5
	}
	ctx := context.Background()
	rows, err := s.conn.Query(ctx, `
		SELECT text, start_time, end_time, timestamps, 1 - (embedding <=> $2) AS score
		FROM video_chunks
		WHERE video_id = $1
		ORDER BY embedding <=> $2, chunk_index
		LIMIT $3
	`, videoID, pgvector.NewVector(queryVec), topK)
	if err != nil {
		fmt.Printf("Warning: pgvector search failed for %s: %v\n", videoID, err)
		return nil
	}
	defer rows.Close()

	var hits []core.ScoredChunk
	for rows.Next() {
		var c core.Chunk
		var tsJSON []byte
		var score float64
		if err := rows.Scan(&c.Text, &c.StartTime, &c.EndTime, &tsJSON, &score); err != nil {
			continue
		}
		if len(tsJSON) > 0 {
			_ = json.Unmarshal(tsJSON, &c.Timestamps)
		}
		hits = append(hits, core.ScoredChunk{Chunk: c, Score: score})
	}
	return hits
}

func (s *PgVectorStore) Delete(videoID string) error {
	_, err := s.conn.Exec(context.Background(), "DELETE FROM video_chunks WHERE video_id = $1", videoID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", videoID, err)
	}
	return nil
}
