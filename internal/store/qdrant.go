package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	verrors "github.com/vectorium/vectorium/internal/errors"
)

// Payload field names in the collection.
const (
	fieldPath         = "file_path"
	fieldSize         = "file_size"
	fieldLastModified = "last_modified"
	fieldPreview      = "content_preview"
)

// QdrantConfig configures the Qdrant-backed store.
type QdrantConfig struct {
	// Endpoint is the gRPC address (default: localhost:6334).
	Endpoint string

	// Collection is the collection name (default: documents).
	Collection string

	// Dimensions is the vector size for collection creation.
	Dimensions int

	// Timeout bounds each store operation.
	Timeout time.Duration
}

// QdrantStore implements VectorStore over Qdrant's gRPC API.
type QdrantStore struct {
	conn        *grpc.ClientConn
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	config      QdrantConfig
}

var _ VectorStore = (*QdrantStore)(nil)

// NewQdrantStore connects to a Qdrant server. The dial is lazy;
// connectivity errors surface on the first operation.
func NewQdrantStore(cfg QdrantConfig) (*QdrantStore, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, verrors.StoreUnavailable(
			fmt.Sprintf("cannot reach vector store at %s", cfg.Endpoint), err)
	}

	return &QdrantStore{
		conn:        conn,
		collections: qdrant.NewCollectionsClient(conn),
		points:      qdrant.NewPointsClient(conn),
		config:      cfg,
	}, nil
}

// newQdrantStoreWithClients wires pre-built clients, for tests.
func newQdrantStoreWithClients(cfg QdrantConfig, collections qdrant.CollectionsClient, points qdrant.PointsClient) *QdrantStore {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &QdrantStore{collections: collections, points: points, config: cfg}
}

// EnsureCollection creates the collection with cosine distance if it
// does not already exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	list, err := s.collections.List(opCtx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return mapStoreError("list collections", err)
	}

	for _, col := range list.GetCollections() {
		if col.GetName() == s.config.Collection {
			return nil
		}
	}

	slog.Info("creating collection",
		"collection", s.config.Collection,
		"dimensions", s.config.Dimensions)

	_, err = s.collections.Create(opCtx, &qdrant.CreateCollection{
		CollectionName: s.config.Collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.config.Dimensions),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return mapStoreError("create collection", err)
	}
	return nil
}

// Upsert writes points with wait=true so a subsequent query sees them.
func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	structs := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		structs[i] = &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: p.ID},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: p.Vector},
				},
			},
			Payload: encodePayload(p.Payload),
		}
	}

	wait := true
	_, err := s.points.Upsert(opCtx, &qdrant.UpsertPoints{
		CollectionName: s.config.Collection,
		Wait:           &wait,
		Points:         structs,
	})
	if err != nil {
		return mapStoreError("upsert points", err)
	}
	return nil
}

// Delete removes points by ID.
func (s *QdrantStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = &qdrant.PointId{
			PointIdOptions: &qdrant.PointId_Uuid{Uuid: id},
		}
	}

	wait := true
	_, err := s.points.Delete(opCtx, &qdrant.DeletePoints{
		CollectionName: s.config.Collection,
		Wait:           &wait,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: pointIDs},
			},
		},
	})
	if err != nil {
		return mapStoreError("delete points", err)
	}
	return nil
}

// Query runs a similarity search with a server-side score threshold.
func (s *QdrantStore) Query(ctx context.Context, vector []float32, limit int, threshold float32) ([]ScoredPoint, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	resp, err := s.points.Search(opCtx, &qdrant.SearchPoints{
		CollectionName: s.config.Collection,
		Vector:         vector,
		Limit:          uint64(limit),
		ScoreThreshold: &threshold,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, mapStoreError("search points", err)
	}

	results := make([]ScoredPoint, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		id := hit.GetId().GetUuid()
		if id == "" {
			return nil, verrors.StoreProtocol("search result has non-uuid point id", nil)
		}
		payload, err := decodePayload(hit.GetPayload())
		if err != nil {
			return nil, err
		}
		results = append(results, ScoredPoint{
			ID:      id,
			Score:   hit.GetScore(),
			Payload: payload,
		})
	}
	return results, nil
}

// FetchIndexed scrolls the whole collection and returns document
// metadata without vectors.
func (s *QdrantStore) FetchIndexed(ctx context.Context) ([]Meta, error) {
	var metas []Meta
	var offset *qdrant.PointId
	pageSize := uint32(scrollPageSize)

	for {
		opCtx, cancel := s.opContext(ctx)
		resp, err := s.points.Scroll(opCtx, &qdrant.ScrollPoints{
			CollectionName: s.config.Collection,
			Limit:          &pageSize,
			Offset:         offset,
			WithPayload: &qdrant.WithPayloadSelector{
				SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
			},
		})
		cancel()
		if err != nil {
			return nil, mapStoreError("scroll points", err)
		}

		for _, pt := range resp.GetResult() {
			id := pt.GetId().GetUuid()
			if id == "" {
				return nil, verrors.StoreProtocol("stored point has non-uuid id", nil)
			}
			payload, err := decodePayload(pt.GetPayload())
			if err != nil {
				return nil, err
			}
			metas = append(metas, Meta{
				ID:           id,
				Path:         payload.Path,
				Size:         payload.Size,
				LastModified: payload.LastModified,
			})
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			return metas, nil
		}
	}
}

// Close shuts down the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// opContext derives a per-operation deadline unless the caller already
// set a tighter one.
func (s *QdrantStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < s.config.Timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}
