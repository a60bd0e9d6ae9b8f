package embedder

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labhouse/matsearch/internal/logger"
)

func TestLocalProvider_Deterministic(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	ctx := context.Background()
	first, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "hyaluronic acid"})
	require.NoError(t, err)
	second, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "hyaluronic acid"})
	require.NoError(t, err)

	assert.Equal(t, first.Vector, second.Vector)
	assert.Equal(t, LocalDimension, first.Dimension)
	assert.Equal(t, ProviderLocal, first.Provider)

	other, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "glycerin"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Vector, other.Vector)
}

func TestLocalProvider_NormalizedVectors(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	emb, err := provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "niacinamide"})
	require.NoError(t, err)

	var sum float64
	for _, v := range emb.Vector {
		sum += float64(v * v)
	}
	assert.InDelta(t, 1.0, sum, 0.001)
}

func TestLocalProvider_EmptyText(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestCache_HitReturnsCopy(t *testing.T) {
	cache := NewCache(10)

	emb := &Embedding{
		Vector:    []float32{0.1, 0.2, 0.3},
		Dimension: 3,
		Provider:  ProviderLocal,
		Hash:      "abc",
	}
	cache.Set("abc", emb)

	got, ok := cache.Get("abc")
	require.True(t, ok)
	assert.Equal(t, emb.Vector, got.Vector)

	// Mutating the returned copy must not affect the cached value.
	got.Vector[0] = 99
	again, ok := cache.Get("abc")
	require.True(t, ok)
	assert.Equal(t, float32(0.1), again.Vector[0])
}

func TestCache_Miss(t *testing.T) {
	cache := NewCache(10)
	_, ok := cache.Get("missing")
	assert.False(t, ok)
}

func TestCache_LRUEviction(t *testing.T) {
	cache := NewCache(2)
	cache.Set("a", &Embedding{Hash: "a"})
	cache.Set("b", &Embedding{Hash: "b"})
	cache.Set("c", &Embedding{Hash: "c"})

	assert.Equal(t, 2, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestComputeHash(t *testing.T) {
	h1 := ComputeHash("same text")
	h2 := ComputeHash("same text")
	h3 := ComputeHash("different text")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestValidateBatchRequest(t *testing.T) {
	err := ValidateBatchRequest(BatchEmbeddingRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"ok", ""}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"ok"}})
	assert.NoError(t, err)
}

func TestRunBatches_PreservesOrder(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	out, dropped, err := runBatches(context.Background(), texts, 3, logger.NewNop(),
		func(_ context.Context, sub []string) ([]*Embedding, error) {
			embs := make([]*Embedding, len(sub))
			for i, s := range sub {
				embs[i] = &Embedding{Hash: s}
			}
			return embs, nil
		})
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, out, 10)
	for i, emb := range out {
		assert.Equal(t, texts[i], emb.Hash)
	}
}

func TestRunBatches_DropsFailedSubBatch(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e", "f"}

	calls := 0
	out, dropped, err := runBatches(context.Background(), texts, 2, logger.NewNop(),
		func(_ context.Context, sub []string) ([]*Embedding, error) {
			calls++
			if calls == 2 {
				return nil, fmt.Errorf("provider hiccup")
			}
			embs := make([]*Embedding, len(sub))
			for i, s := range sub {
				embs[i] = &Embedding{Hash: s}
			}
			return embs, nil
		})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, dropped)
	require.Len(t, out, 6)
	assert.Nil(t, out[2])
	assert.Nil(t, out[3])
	assert.NotNil(t, out[0])
	assert.NotNil(t, out[5])
}

func TestRunBatches_AllSubBatchesFailed(t *testing.T) {
	_, _, err := runBatches(context.Background(), []string{"a", "b"}, 1, logger.NewNop(),
		func(_ context.Context, _ []string) ([]*Embedding, error) {
			return nil, fmt.Errorf("down")
		})
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestRunBatches_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := runBatches(ctx, []string{"a"}, 1, logger.NewNop(),
		func(_ context.Context, sub []string) ([]*Embedding, error) {
			return make([]*Embedding, len(sub)), nil
		})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_ExplicitLocal(t *testing.T) {
	emb, err := New(Config{Provider: ProviderLocal}, logger.NewNop())
	require.NoError(t, err)
	defer emb.Close()

	assert.Equal(t, ProviderLocal, emb.Provider())
	assert.Equal(t, LocalDimension, emb.Dimension())
}

func TestNew_FallbackToOpenAI(t *testing.T) {
	// Gemini has no key so construction falls through to OpenAI.
	emb, err := New(Config{
		Provider:     ProviderGemini,
		OpenAIAPIKey: "sk-test",
	}, logger.NewNop())
	require.NoError(t, err)
	defer emb.Close()

	assert.Equal(t, ProviderOpenAI, emb.Provider())
}

func TestNew_AllProvidersDown(t *testing.T) {
	_, err := New(Config{Provider: ProviderGemini}, logger.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersDown)
	assert.Contains(t, err.Error(), ProviderGemini)
	assert.Contains(t, err.Error(), ProviderOpenAI)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "cohere"}, logger.NewNop())
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestNew_LocalNeverInFallback(t *testing.T) {
	// No keys anywhere: must error, not silently fall back to hash vectors.
	_, err := New(Config{}, logger.NewNop())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "local")
}

func TestNewGeminiProvider_UnknownModel(t *testing.T) {
	_, err := NewGeminiProvider("key", "made-up-model", nil, logger.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestNewOpenAIProvider_Defaults(t *testing.T) {
	p, err := NewOpenAIProvider("sk-test", "", nil, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, p.Model())
	assert.Equal(t, OpenAISmallDimension, p.Dimension())
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 0.0001)
	assert.InDelta(t, 0.8, v[1], 0.0001)

	zero := NormalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
