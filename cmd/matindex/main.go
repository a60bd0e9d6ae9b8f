// matindex chunks material documents and writes their embeddings into the
// vector index. Run it after catalog imports or chunk-layout changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/labhouse/matsearch/internal/config"
	"github.com/labhouse/matsearch/internal/docstore"
	"github.com/labhouse/matsearch/internal/embedder"
	"github.com/labhouse/matsearch/internal/indexer"
	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/internal/vecstore"
	"github.com/labhouse/matsearch/pkg/types"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	collection := flag.String("collection", "both", "collection to index: in_stock, all_fda or both")
	purge := flag.Bool("purge", false, "delete the target namespace before indexing")
	workers := flag.Int("workers", 0, "concurrent embedding batches (0 uses the default)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Mode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	target := types.Collection(*collection)
	if err := types.ValidateCollection(target); err != nil || target == "" {
		lg.Fatal("invalid collection flag", "collection", *collection)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := docstore.NewMongoStore(ctx, docstore.MongoConfig{
		URI:               cfg.Mongo.URI,
		Database:          cfg.Mongo.Database,
		InStockCollection: cfg.Mongo.InStockCollection,
		FDACollection:     cfg.Mongo.FDACollection,
	}, lg)
	if err != nil {
		lg.Fatal("connect document store", "error", err)
	}
	defer docs.Close(context.Background())

	pc, err := vecstore.NewClient(lg, vecstore.Config{APIKey: cfg.Pinecone.APIKey})
	if err != nil {
		lg.Fatal("Pinecone client init", "error", err)
	}
	vectors, err := vecstore.NewVectorStore(ctx, lg, pc, vecstore.StoreConfig{
		IndexName:       cfg.Pinecone.IndexName,
		IndexHost:       cfg.Pinecone.IndexHost,
		NamespacePrefix: cfg.Pinecone.NamespacePrefix,
	})
	if err != nil {
		lg.Fatal("vector store init", "error", err)
	}

	embed, err := embedder.New(embedder.Config{
		Provider:     cfg.Embedding.Provider,
		GeminiAPIKey: cfg.Embedding.GeminiAPIKey,
		GeminiModel:  cfg.Embedding.GeminiModel,
		OpenAIAPIKey: cfg.Embedding.OpenAIAPIKey,
		OpenAIModel:  cfg.Embedding.OpenAIModel,
		CacheSize:    cfg.Embedding.CacheSize,
	}, lg)
	if err != nil {
		lg.Fatal("embedding provider init", "error", err)
	}

	idx := indexer.New(docs, vectors, embed, lg)

	targets := []types.Collection{target}
	if target == types.CollectionBoth {
		targets = []types.Collection{types.CollectionInStock, types.CollectionAllFDA}
	}

	failed := false
	for _, col := range targets {
		stats, err := idx.IndexCollection(ctx, col, &indexer.Config{
			Workers: *workers,
			Purge:   *purge,
		})
		if err != nil {
			lg.Error("indexing failed", "collection", col, "error", err)
			failed = true
			continue
		}
		lg.Info("indexing complete",
			"collection", col,
			"materials", stats.Materials,
			"chunks_created", stats.ChunksCreated,
			"chunks_indexed", stats.ChunksIndexed,
			"chunks_dropped", stats.ChunksDropped,
			"duration", stats.Duration,
		)
		for _, msg := range stats.ErrorMessages {
			fmt.Fprintln(os.Stderr, "warning:", msg)
		}
	}
	if failed {
		os.Exit(1)
	}
}
