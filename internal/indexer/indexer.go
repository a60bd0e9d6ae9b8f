package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/labhouse/matsearch/internal/chunker"
	"github.com/labhouse/matsearch/internal/docstore"
	"github.com/labhouse/matsearch/internal/embedder"
	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/internal/vecstore"
	"github.com/labhouse/matsearch/pkg/types"
)

const (
	defaultEmbedBatch = 96
	defaultWorkers    = 4
)

// Indexer coordinates the indexing pipeline: load -> chunk -> embed -> upsert
type Indexer struct {
	docs    docstore.MaterialStore
	vectors vecstore.VectorStore
	embed   embedder.Embedder
	chunker *chunker.Chunker
	log     *logger.Logger
}

// Config contains configuration for one indexing run.
type Config struct {
	// Workers bounds concurrent embed+upsert batches (default 4).
	Workers int
	// EmbedBatch is the number of chunks embedded per provider call
	// (default 96, the provider ceiling).
	EmbedBatch int
	// Purge deletes the target namespace before indexing, so removed
	// materials do not linger as stale vectors.
	Purge bool
}

// Statistics summarizes an indexing run.
type Statistics struct {
	Materials     int
	ChunksCreated int
	ChunksIndexed int
	ChunksDropped int
	Duration      time.Duration
	ErrorMessages []string
}

// New creates a new Indexer instance
func New(docs docstore.MaterialStore, vectors vecstore.VectorStore, embed embedder.Embedder, log *logger.Logger) *Indexer {
	return &Indexer{
		docs:    docs,
		vectors: vectors,
		embed:   embed,
		chunker: chunker.New(chunker.DefaultConfig()),
		log:     log,
	}
}

// IndexCollection indexes every material in one collection into its vector
// namespace. The run is best-effort per batch: a failed embed batch is
// counted and skipped, a failed upsert aborts the run since it indicates
// the index itself is unhealthy.
func (idx *Indexer) IndexCollection(ctx context.Context, col types.Collection, cfg *Config) (*Statistics, error) {
	if col != types.CollectionInStock && col != types.CollectionAllFDA {
		return nil, fmt.Errorf("cannot index collection %q", col)
	}
	if cfg == nil {
		cfg = &Config{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	embedBatch := cfg.EmbedBatch
	if embedBatch <= 0 {
		embedBatch = defaultEmbedBatch
	}

	start := time.Now()
	stats := &Statistics{}

	if dim := idx.vectors.Dimension(); dim > 0 && dim != idx.embed.Dimension() {
		return nil, fmt.Errorf("%w: embedder %s produces %d dimensions, index expects %d",
			types.ErrDimensionError, idx.embed.Provider(), idx.embed.Dimension(), dim)
	}

	materials, err := idx.docs.ListAll(ctx, col)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	stats.Materials = len(materials)

	availability := types.AvailabilityFor(col)
	var chunks []types.Chunk
	for i := range materials {
		cs, err := idx.chunker.ChunkMaterial(&materials[i], availability)
		if err != nil {
			stats.ErrorMessages = append(stats.ErrorMessages,
				fmt.Sprintf("%s: %v", materials[i].Code, err))
			continue
		}
		chunks = append(chunks, cs...)
	}
	stats.ChunksCreated = len(chunks)

	if cfg.Purge {
		if err := idx.vectors.Purge(ctx, col); err != nil {
			return nil, fmt.Errorf("purge namespace: %w", err)
		}
	}

	if len(chunks) == 0 {
		stats.Duration = time.Since(start)
		return stats, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for batchStart := 0; batchStart < len(chunks); batchStart += embedBatch {
		batchEnd := batchStart + embedBatch
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		batch := chunks[batchStart:batchEnd]

		g.Go(func() error {
			indexed, dropped, err := idx.indexBatch(gctx, col, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				return err
			}
			stats.ChunksIndexed += indexed
			stats.ChunksDropped += dropped
			if dropped > 0 {
				stats.ErrorMessages = append(stats.ErrorMessages,
					fmt.Sprintf("dropped %d chunks from embedding batch", dropped))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	idx.log.Info("indexing complete",
		"collection", string(col),
		"materials", stats.Materials,
		"chunks_indexed", stats.ChunksIndexed,
		"chunks_dropped", stats.ChunksDropped,
		"duration_ms", stats.Duration.Milliseconds(),
	)
	return stats, nil
}

// indexBatch embeds one chunk batch and upserts the successful vectors.
func (idx *Indexer) indexBatch(ctx context.Context, col types.Collection, batch []types.Chunk) (indexed, dropped int, err error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	resp, err := idx.embed.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
	if err != nil {
		// A wholly failed batch is skipped, consistent with the embedder's
		// own sub-batch policy.
		idx.log.Warn("embedding batch failed, skipping",
			"collection", string(col), "chunks", len(batch), "error", err.Error())
		return 0, len(batch), nil
	}

	vectors := make([]vecstore.Vector, 0, len(batch))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			dropped++
			continue
		}
		vectors = append(vectors, vecstore.Vector{
			ID:       batch[i].ID,
			Values:   emb.Vector,
			Metadata: batch[i].Metadata,
		})
	}

	if len(vectors) == 0 {
		return 0, dropped, nil
	}
	if err := idx.vectors.Upsert(ctx, col, vectors); err != nil {
		return 0, dropped, fmt.Errorf("upsert vectors: %w", err)
	}
	return len(vectors), dropped, nil
}
