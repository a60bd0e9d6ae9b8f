package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/labhouse/matsearch/internal/logger"
)

// Common errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnsupportedModel  = errors.New("unsupported model")
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
	ErrAllProvidersDown  = errors.New("all embedding providers failed to initialize")
)

// Embedding represents a vector embedding with metadata
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Hash      string // Content hash for caching
}

// EmbeddingRequest represents a request to generate a single embedding
type EmbeddingRequest struct {
	Text  string
	Model string // Optional: override default model
}

// BatchEmbeddingRequest represents a batch request. Batches larger than the
// provider ceiling are chunked internally; callers see one ordered response.
type BatchEmbeddingRequest struct {
	Texts []string
	Model string // Optional: override default model
}

// BatchEmbeddingResponse represents a batch response. Embeddings is aligned
// with the request texts; entries at dropped indices are nil.
type BatchEmbeddingResponse struct {
	Embeddings []*Embedding
	Provider   string
	Model      string
	// Dropped lists input indices whose sub-batch failed after retries.
	// Best-effort behavior: a bad sub-batch does not abort the whole batch.
	Dropped []int
}

// Embedder converts text into fixed-dimension vectors. Implementations are
// safe for concurrent use.
type Embedder interface {
	// GenerateEmbedding generates a single embedding for the given text
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error)

	// GenerateBatch generates embeddings for multiple texts efficiently.
	// Semantically equivalent to N single calls, but the preferred path for
	// throughput.
	GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error)

	// Dimension returns the embedding dimension for this provider/model.
	// The value determines vector-index compatibility: a mismatch with the
	// index is a fatal configuration error, never silently coerced.
	Dimension() int

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

// Cache provides in-memory LRU caching of embeddings by content hash
type Cache struct {
	cache *lru.Cache[string, *Embedding]
}

// NewCache creates a new embedding cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000 // Default: cache 10k embeddings
	}
	cache, err := lru.New[string, *Embedding](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, *Embedding](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a deep copy of an embedding from cache
// Returns a copy to prevent caller mutations from affecting cached values
func (c *Cache) Get(hash string) (*Embedding, bool) {
	emb, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}

	vectorCopy := make([]float32, len(emb.Vector))
	copy(vectorCopy, emb.Vector)

	return &Embedding{
		Vector:    vectorCopy,
		Dimension: emb.Dimension,
		Provider:  emb.Provider,
		Model:     emb.Model,
		Hash:      emb.Hash,
	}, true
}

// Set stores an embedding in cache with automatic LRU eviction
func (c *Cache) Set(hash string, emb *Embedding) {
	c.cache.Add(hash, emb)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes SHA-256 hash of text for caching
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// ValidateRequest validates an embedding request
func ValidateRequest(req EmbeddingRequest) error {
	if req.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// ValidateBatchRequest validates a batch embedding request
func ValidateBatchRequest(req BatchEmbeddingRequest) error {
	if len(req.Texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}

	for i, text := range req.Texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}

	return nil
}

// runBatches splits texts into provider-sized sub-batches and invokes call
// for each, concatenating results in input order. A sub-batch that fails
// (after the provider's own retries) is logged and dropped rather than
// aborting the batch; the affected indices come back in the second return.
// An error is returned only when every sub-batch failed.
func runBatches(
	ctx context.Context,
	texts []string,
	batchSize int,
	log *logger.Logger,
	call func(ctx context.Context, sub []string) ([]*Embedding, error),
) ([]*Embedding, []int, error) {
	if batchSize <= 0 {
		batchSize = MaxProviderBatch
	}

	out := make([]*Embedding, len(texts))
	var dropped []int
	var lastErr error
	failures := 0
	batches := 0

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches++

		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		embs, err := call(ctx, texts[start:end])
		if err != nil || len(embs) != end-start {
			if err == nil {
				err = fmt.Errorf("%w: got %d embeddings for %d texts", ErrProviderFailed, len(embs), end-start)
			}
			failures++
			lastErr = err
			for i := start; i < end; i++ {
				dropped = append(dropped, i)
			}
			if log != nil {
				log.Warn("embedding sub-batch dropped",
					"start", start, "end", end, "error", err.Error())
			}
			continue
		}

		copy(out[start:end], embs)
	}

	if failures == batches {
		return nil, dropped, fmt.Errorf("%w: %v", ErrProviderFailed, lastErr)
	}
	return out, dropped, nil
}
