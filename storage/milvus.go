package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"videoChat/config"
	"videoChat/core"
)

// MilvusStore keeps chunk vectors in a Milvus collection, one row per chunk,
// filtered by video_id at search time.
type MilvusStore struct {
	mc   client.Client
	coll string
	dim  int
}

func newMilvusStore(cfg *config.Config) (*MilvusStore, error) {
	addr := os.Getenv("MILVUS_ADDR")
	if addr == "" {
		addr = "localhost:19530"
	}
	coll := os.Getenv("MILVUS_COLLECTION")
	if coll == "" {
		coll = "video_chunks"
	}

	mc, err := client.NewClient(context.Background(), client.Config{
		Address:  addr,
		Username: os.Getenv("MILVUS_USERNAME"),
		Password: os.Getenv("MILVUS_PASSWORD"),
		APIKey:   os.Getenv("MILVUS_API_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}

	s := &MilvusStore{mc: mc, coll: coll, dim: cfg.EmbeddingDim}
	if err := s.ensureCollection(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MilvusStore) ensureCollection() error {
	ctx := context.Background()
	has, err := s.mc.HasCollection(ctx, s.coll)
	if err != nil {
		return err
	}
	if !has {
		schema := entity.NewSchema()
		schema.WithField(entity.NewField().WithName("id").WithIsAutoID(true).WithIsPrimaryKey(true).WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("video_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(128))
		schema.WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(4096))
		schema.WithField(entity.NewField().WithName("start_time").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("end_time").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("timestamps").WithDataType(entity.FieldTypeVarChar).WithMaxLength(16384))
		schema.WithField(entity.NewField().WithName("vector").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

		if err := s.mc.CreateCollection(ctx, schema, int32(2)); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}
	idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return fmt.Errorf("new hnsw index: %w", err)
	}
	if err := s.mc.CreateIndex(ctx, s.coll, "vector", idx, false, client.WithIndexName("idx_vector")); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := s.mc.LoadCollection(ctx, s.coll, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func (s *MilvusStore) Upsert(videoID string, chunks []core.Chunk, vectors [][]float32) int {
	ctx := context.Background()
	_ = s.Delete(videoID)

	videoIDs := make([]string, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	starts := make([]float64, 0, len(chunks))
	ends := make([]float64, 0, len(chunks))
	timestamps := make([]string, 0, len(chunks))
	vecs := make([][]float32, 0, len(chunks))

	for i, c := range chunks {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			continue
		}
		tsJSON, err := json.Marshal(c.Timestamps)
		if err != nil {
			continue
		}
		videoIDs = append(videoIDs, videoID)
		texts = append(texts, c.Text)
		starts = append(starts, c.StartTime)
		ends = append(ends, c.EndTime)
		timestamps = append(timestamps, string(tsJSON))
		vecs = append(vecs, vectors[i])
	}
	if len(vecs) == 0 {
		return 0
	}

	_, err := s.mc.Insert(ctx, s.coll, "",
		entity.NewColumnVarChar("video_id", videoIDs),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnDouble("start_time", starts),
		entity.NewColumnDouble("end_time", ends),
		entity.NewColumnVarChar("timestamps", timestamps),
		entity.NewColumnFloatVector("vector", s.dim, vecs),
	)
	if err != nil {
		fmt.Printf("Warning: milvus insert failed for %s: %v\n", videoID, err)
		return 0
	}
	return len(vecs)
}

func (s *MilvusStore) Search(videoID string, queryVec []float32, topK int) []core.ScoredChunk {
	if topK <= 0 {
		topK = 5
	}
	ctx := context.Background()
	sp, _ := entity.NewIndexHNSWSearchParam(74)
	filter := fmt.Sprintf("video_id == \"%s\"", strings.ReplaceAll(videoID, "\"", "\\\""))
	res, err := s.mc.Search(ctx, s.coll, []string{}, filter,
		[]string{"text", "start_time", "end_time", "timestamps"},
		[]entity.Vector{entity.FloatVector(queryVec)}, "vector", entity.COSINE, topK, sp)
	if err != nil {
		fmt.Printf("Warning: milvus search failed for %s: %v\n", videoID, err)
		return nil
	}

	var hits []core.ScoredChunk
	for _, r := range res {
		cols := map[string]entity.Column{}
		for _, c := range r.Fields {
			cols[c.Name()] = c
		}
		for i := 0; i < r.ResultCount; i++ {
			var chunk core.Chunk
			if c, ok := cols["text"].(*entity.ColumnVarChar); ok {
				if data := c.Data(); i < len(data) {
					chunk.Text = data[i]
				}
			}
			if c, ok := cols["start_time"].(*entity.ColumnDouble); ok {
				if data := c.Data(); i < len(data) {
					chunk.StartTime = data[i]
				}
			}
			if c, ok := cols["end_time"].(*entity.ColumnDouble); ok {
				if data := c.Data(); i < len(data) {
					chunk.EndTime = data[i]
				}
			}
			if c, ok := cols["timestamps"].(*entity.ColumnVarChar); ok {
				if data := c.Data(); i < len(data) && data[i] != "" {
					_ = json.Unmarshal([]byte(data[i]), &chunk.Timestamps)
				}
			}
			hits = append(hits, core.ScoredChunk{Chunk: chunk, Score: float64(r.Scores[i])})
		}
	}
	return hits
}

func (s *MilvusStore) Delete(videoID string) error {
	filter := fmt.Sprintf("video_id == \"%s\"", strings.ReplaceAll(videoID, "\"", "\\\""))
	if err := s.mc.Delete(context.Background(), s.coll, "", filter); err != nil {
		return fmt.Errorf("milvus delete failed for %s: %w", videoID, err)
	}
	return nil
}
