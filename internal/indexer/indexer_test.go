package indexer

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labhouse/matsearch/internal/embedder"
	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/internal/vecstore"
	"github.com/labhouse/matsearch/pkg/types"
)

type memDocStore struct {
	docs map[types.Collection][]types.MaterialDocument
	err  error
}

func (m *memDocStore) FindByCode(context.Context, types.Collection, string) (*types.MaterialDocument, error) {
	return nil, types.ErrNotFound
}
func (m *memDocStore) FindFuzzy(context.Context, types.Collection, string, int) ([]types.MaterialDocument, error) {
	return nil, nil
}
func (m *memDocStore) FindByBenefit(context.Context, types.Collection, string, int) ([]types.MaterialDocument, error) {
	return nil, nil
}
func (m *memDocStore) ListAll(_ context.Context, col types.Collection) ([]types.MaterialDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs[col], nil
}
func (m *memDocStore) Count(_ context.Context, col types.Collection) (int64, error) {
	return int64(len(m.docs[col])), nil
}
func (m *memDocStore) Ping(context.Context) error  { return nil }
func (m *memDocStore) Close(context.Context) error { return nil }

type memVecStore struct {
	mu        sync.Mutex
	vectors   map[string]vecstore.Vector
	purged    []types.Collection
	dimension int
	upsertErr error
}

func (m *memVecStore) Upsert(_ context.Context, _ types.Collection, vectors []vecstore.Vector) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vectors == nil {
		m.vectors = make(map[string]vecstore.Vector)
	}
	for _, v := range vectors {
		m.vectors[v.ID] = v
	}
	return nil
}

func (m *memVecStore) Query(context.Context, types.Collection, []float32, int, map[string]any) ([]vecstore.Match, error) {
	return nil, nil
}

func (m *memVecStore) Purge(_ context.Context, col types.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged = append(m.purged, col)
	m.vectors = nil
	return nil
}

func (m *memVecStore) Stats(context.Context) (*vecstore.Stats, error) {
	return &vecstore.Stats{}, nil
}

func (m *memVecStore) Dimension() int { return m.dimension }

func catalog() map[types.Collection][]types.MaterialDocument {
	return map[types.Collection][]types.MaterialDocument{
		types.CollectionInStock: {
			{Code: "RM000123", TradeName: "Sepimax Zen", Supplier: "Seppic", Benefits: []string{"thickening"}},
			{Code: "RM000200", TradeName: "HydraSoft", Supplier: "BASF"},
		},
	}
}

func newTestIndexer(t *testing.T, docs *memDocStore, vectors *memVecStore) *Indexer {
	t.Helper()
	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)
	if vectors.dimension == 0 {
		vectors.dimension = embedder.LocalDimension
	}
	return New(docs, vectors, emb, logger.NewNop())
}

func TestIndexCollection(t *testing.T) {
	vectors := &memVecStore{}
	idx := newTestIndexer(t, &memDocStore{docs: catalog()}, vectors)

	stats, err := idx.IndexCollection(context.Background(), types.CollectionInStock, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Materials)
	assert.Equal(t, stats.ChunksCreated, stats.ChunksIndexed)
	assert.Zero(t, stats.ChunksDropped)

	v, ok := vectors.vectors["RM000123#identity"]
	require.True(t, ok)
	assert.Equal(t, embedder.LocalDimension, len(v.Values))
	assert.Equal(t, "in_stock", v.Metadata["availability"])
	assert.Equal(t, "RM000123", v.Metadata["material_code"])
}

func TestIndexCollection_Purge(t *testing.T) {
	vectors := &memVecStore{}
	idx := newTestIndexer(t, &memDocStore{docs: catalog()}, vectors)

	_, err := idx.IndexCollection(context.Background(), types.CollectionInStock, &Config{Purge: true})
	require.NoError(t, err)
	assert.Equal(t, []types.Collection{types.CollectionInStock}, vectors.purged)
	assert.NotEmpty(t, vectors.vectors, "re-indexed after purge")
}

// Exercises the run configuration the indexing CLI builds from its flags.
func TestIndexCollection_RunConfigFromFlags(t *testing.T) {
	vectors := &memVecStore{}
	idx := newTestIndexer(t, &memDocStore{docs: catalog()}, vectors)

	stats, err := idx.IndexCollection(context.Background(), types.CollectionInStock, &Config{
		Workers:    2,
		EmbedBatch: 1,
		Purge:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, []types.Collection{types.CollectionInStock}, vectors.purged)
	assert.Equal(t, stats.ChunksCreated, stats.ChunksIndexed)
	assert.Len(t, vectors.vectors, stats.ChunksIndexed)
}

func TestIndexCollection_DimensionMismatch(t *testing.T) {
	vectors := &memVecStore{dimension: 768}
	idx := newTestIndexer(t, &memDocStore{docs: catalog()}, vectors)

	_, err := idx.IndexCollection(context.Background(), types.CollectionInStock, nil)
	assert.ErrorIs(t, err, types.ErrDimensionError)
}

func TestIndexCollection_RejectsBoth(t *testing.T) {
	idx := newTestIndexer(t, &memDocStore{docs: catalog()}, &memVecStore{})

	_, err := idx.IndexCollection(context.Background(), types.CollectionBoth, nil)
	assert.Error(t, err)
}

func TestIndexCollection_StoreFailure(t *testing.T) {
	idx := newTestIndexer(t, &memDocStore{err: fmt.Errorf("mongo down")}, &memVecStore{})

	_, err := idx.IndexCollection(context.Background(), types.CollectionInStock, nil)
	assert.Error(t, err)
}

func TestIndexCollection_UpsertFailureAborts(t *testing.T) {
	vectors := &memVecStore{upsertErr: fmt.Errorf("index unhealthy")}
	idx := newTestIndexer(t, &memDocStore{docs: catalog()}, vectors)

	_, err := idx.IndexCollection(context.Background(), types.CollectionInStock, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert")
}

func TestIndexCollection_InvalidMaterialSkipped(t *testing.T) {
	docs := &memDocStore{docs: map[types.Collection][]types.MaterialDocument{
		types.CollectionInStock: {
			{Code: "RM000123", TradeName: "Sepimax Zen"},
			{Code: "", TradeName: "No Code"},
		},
	}}
	vectors := &memVecStore{}
	idx := newTestIndexer(t, docs, vectors)

	stats, err := idx.IndexCollection(context.Background(), types.CollectionInStock, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Materials)
	assert.NotEmpty(t, stats.ErrorMessages)
	assert.NotZero(t, stats.ChunksIndexed)
}

func TestIndexCollection_EmptyCollection(t *testing.T) {
	idx := newTestIndexer(t, &memDocStore{docs: map[types.Collection][]types.MaterialDocument{}}, &memVecStore{})

	stats, err := idx.IndexCollection(context.Background(), types.CollectionAllFDA, nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Materials)
	assert.Zero(t, stats.ChunksIndexed)
}
