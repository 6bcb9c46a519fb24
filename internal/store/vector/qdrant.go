package vector

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
	"github.com/jamaly87/codebase-semantic-search/pkg/config"
)

// QdrantStore is the live Store implementation: gRPC connection, points
// keyed by chunk UUID, payload carrying the tenant-scoped search fields.
type QdrantStore struct {
	cfg        config.VectorDBConfig
	client     *qdrant.Client
	collection string
}

// NewQdrantStore connects to Qdrant and ensures the collection exists.
func NewQdrantStore(ctx context.Context, cfg config.VectorDBConfig) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	s := &QdrantStore{cfg: cfg, client: client, collection: cfg.CollectionName}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.cfg.VectorSize),
					Distance: s.distanceMetric(),
				},
			},
		},
	})
}

func (s *QdrantStore) distanceMetric() qdrant.Distance {
	switch s.cfg.DistanceMetric {
	case "dot":
		return qdrant.Distance_Dot
	case "euclidean":
		return qdrant.Distance_Euclid
	default:
		return qdrant.Distance_Cosine
	}
}

func (s *QdrantStore) Available() bool { return true }

func (s *QdrantStore) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("vector.Add: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: chunk.ID},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: vectors[i]},
				},
			},
			Payload: chunkPayload(chunk),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func chunkPayload(c models.Chunk) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		"user_id":     qdrant.NewValueString(c.UserID),
		"file_path":   qdrant.NewValueString(c.FilePath),
		"category":    qdrant.NewValueString(string(c.Category)),
		"language":    qdrant.NewValueString(c.Language),
		"content":     qdrant.NewValueString(c.Content),
		"start_line":  qdrant.NewValueInt(int64(c.Range.StartLine)),
		"end_line":    qdrant.NewValueInt(int64(c.Range.EndLine)),
		"symbol_name": qdrant.NewValueString(c.Symbol.Name),
		"symbol_kind": qdrant.NewValueString(string(c.Symbol.Kind)),
		"chunk_index": qdrant.NewValueInt(int64(c.ChunkIndex)),
	}
}

func chunkFromPayload(id string, payload map[string]*qdrant.Value) models.Chunk {
	return models.Chunk{
		ID:       id,
		UserID:   payload["user_id"].GetStringValue(),
		FilePath: payload["file_path"].GetStringValue(),
		Category: models.FileCategory(payload["category"].GetStringValue()),
		Language: payload["language"].GetStringValue(),
		Content:  payload["content"].GetStringValue(),
		Range: models.Range{
			StartLine: int(payload["start_line"].GetIntegerValue()),
			EndLine:   int(payload["end_line"].GetIntegerValue()),
		},
		Symbol: models.Symbol{
			Name: payload["symbol_name"].GetStringValue(),
			Kind: models.SymbolKind(payload["symbol_kind"].GetStringValue()),
		},
		ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
	}
}

func tenantFilter(userID string, fileType *models.FileCategory) *qdrant.Filter {
	must := []*qdrant.Condition{
		{ConditionOneOf: &qdrant.Condition_Field{Field: &qdrant.FieldCondition{
			Key:   "user_id",
			Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: userID}},
		}}},
	}
	if fileType != nil {
		must = append(must, &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Field{Field: &qdrant.FieldCondition{
			Key:   "category",
			Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: string(*fileType)}},
		}}})
	}
	return &qdrant.Filter{Must: must}
}

func (s *QdrantStore) SimilaritySearch(ctx context.Context, userID, query string, embedding []float32, topK int, fileType *models.FileCategory) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	limit := uint64(topK)

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         tenantFilter(userID, fileType),
		Limit:          &limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		chunk := chunkFromPayload(r.Id.GetUuid(), r.Payload)
		out = append(out, models.SearchResult{Chunk: chunk, Score: float64(r.Score), Source: "vector"})
	}
	return out, nil
}

// DeleteByFilePath deletes every chunk belonging to one file for one
// tenant, via a single filter-based delete rather than a fetch-then-delete
// round trip.
func (s *QdrantStore) DeleteByFilePath(ctx context.Context, userID, filePath string) error {
	filter := &qdrant.Filter{Must: []*qdrant.Condition{
		{ConditionOneOf: &qdrant.Condition_Field{Field: &qdrant.FieldCondition{
			Key:   "user_id",
			Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: userID}},
		}}},
		{ConditionOneOf: &qdrant.Condition_Field{Field: &qdrant.FieldCondition{
			Key:   "file_path",
			Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: filePath}},
		}}},
	}}
	return s.deleteByFilter(ctx, filter)
}

// DeleteByUserID removes every chunk for a tenant, used when a user's
// workspace is deprovisioned.
func (s *QdrantStore) DeleteByUserID(ctx context.Context, userID string) error {
	filter := &qdrant.Filter{Must: []*qdrant.Condition{
		{ConditionOneOf: &qdrant.Condition_Field{Field: &qdrant.FieldCondition{
			Key:   "user_id",
			Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: userID}},
		}}},
	}}
	return s.deleteByFilter(ctx, filter)
}

func (s *QdrantStore) deleteByFilter(ctx context.Context, filter *qdrant.Filter) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: filter},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}

func (s *QdrantStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
