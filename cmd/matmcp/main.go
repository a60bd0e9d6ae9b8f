// matmcp exposes the unified material search to LLM clients as MCP tool
// calls over stdio. All logging goes to stderr; stdout carries the protocol.
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
	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/internal/mcp"
	"github.com/labhouse/matsearch/internal/searcher"
	"github.com/labhouse/matsearch/internal/vecstore"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", mcp.ServerName, version)
		return
	}

	log.SetOutput(os.Stderr)

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

	var vectors vecstore.VectorStore
	if cfg.Pinecone.APIKey != "" && cfg.Pinecone.IndexName != "" {
		pc, err := vecstore.NewClient(lg, vecstore.Config{APIKey: cfg.Pinecone.APIKey})
		if err == nil {
			vectors, err = vecstore.NewVectorStore(ctx, lg, pc, vecstore.StoreConfig{
				IndexName:       cfg.Pinecone.IndexName,
				IndexHost:       cfg.Pinecone.IndexHost,
				NamespacePrefix: cfg.Pinecone.NamespacePrefix,
			})
		}
		if err != nil {
			lg.Warn("vector store unavailable, semantic search disabled", "error", err)
			vectors = nil
		}
	} else {
		lg.Warn("Pinecone not configured, semantic search disabled")
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
		lg.Warn("no embedding provider available, semantic search disabled", "error", err)
		embed = nil
	}

	srch := searcher.New(docs, vectors, embed, searcher.Options{
		DefaultTopK:         cfg.Search.DefaultTopK,
		MaxTopK:             cfg.Search.MaxTopK,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		PriorityEpsilon:     cfg.Search.PriorityEpsilon,
		SemanticTimeout:     cfg.SemanticTimeout(),
	}, lg)

	s := mcp.NewServer(srch, docs, vectors, lg)

	lg.Info("MCP server ready, listening on stdio", "version", version)
	if err := s.Serve(ctx); err != nil {
		lg.Fatal("mcp server", "error", err)
	}
	lg.Info("MCP server stopped")
}
