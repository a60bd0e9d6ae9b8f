// matsearch serves the unified material search over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/labhouse/matsearch/internal/config"
	"github.com/labhouse/matsearch/internal/docstore"
	"github.com/labhouse/matsearch/internal/embedder"
	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/internal/searcher"
	"github.com/labhouse/matsearch/internal/server"
	"github.com/labhouse/matsearch/internal/vecstore"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("matsearch %s (built %s)\n", version, buildTime)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Mode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

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

	vectors := buildVectorStore(ctx, cfg, lg)
	embed := buildEmbedder(cfg, lg)

	srch := searcher.New(docs, vectors, embed, searcher.Options{
		DefaultTopK:         cfg.Search.DefaultTopK,
		MaxTopK:             cfg.Search.MaxTopK,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		PriorityEpsilon:     cfg.Search.PriorityEpsilon,
		SemanticTimeout:     cfg.SemanticTimeout(),
	}, lg)

	srv := server.New(server.Config{
		Mode:         cfg.Mode,
		AllowOrigins: cfg.CORSOrigins,
	}, srch, docs, vectors, lg)

	lg.Info("matsearch starting", "version", version, "addr", cfg.HTTPAddr)
	if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
		lg.Fatal("http server", "error", err)
	}
	lg.Info("matsearch stopped")
}

// buildVectorStore returns nil when Pinecone is not configured or unreachable.
// Search then runs on document-store strategies only.
func buildVectorStore(ctx context.Context, cfg *config.Config, lg *logger.Logger) vecstore.VectorStore {
	if cfg.Pinecone.APIKey == "" || cfg.Pinecone.IndexName == "" {
		lg.Warn("Pinecone not configured, semantic search disabled")
		return nil
	}
	pc, err := vecstore.NewClient(lg, vecstore.Config{APIKey: cfg.Pinecone.APIKey})
	if err != nil {
		lg.Warn("Pinecone client init failed, semantic search disabled", "error", err)
		return nil
	}
	vs, err := vecstore.NewVectorStore(ctx, lg, pc, vecstore.StoreConfig{
		IndexName:       cfg.Pinecone.IndexName,
		IndexHost:       cfg.Pinecone.IndexHost,
		NamespacePrefix: cfg.Pinecone.NamespacePrefix,
	})
	if err != nil {
		lg.Warn("vector store unavailable, semantic search disabled", "error", err)
		return nil
	}
	return vs
}

// buildEmbedder returns nil when no embedding provider can be constructed.
func buildEmbedder(cfg *config.Config, lg *logger.Logger) embedder.Embedder {
	emb, err := embedder.New(embedder.Config{
		Provider:     cfg.Embedding.Provider,
		GeminiAPIKey: cfg.Embedding.GeminiAPIKey,
		GeminiModel:  cfg.Embedding.GeminiModel,
		OpenAIAPIKey: cfg.Embedding.OpenAIAPIKey,
		OpenAIModel:  cfg.Embedding.OpenAIModel,
		CacheSize:    cfg.Embedding.CacheSize,
	}, lg)
	if err != nil {
		lg.Warn("no embedding provider available, semantic search disabled", "error", err)
		return nil
	}
	return emb
}
