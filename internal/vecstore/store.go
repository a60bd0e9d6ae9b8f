package vecstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/pkg/types"
)

// ErrUnavailable is returned when no vector store is configured. The search
// orchestrator downgrades this to a warning rather than failing the query.
var ErrUnavailable = errors.New("vector store unavailable")

// Match is one scored hit from a namespace query. Metadata carries the
// chunk fields written at indexing time.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Stats summarizes index occupancy per qualified namespace.
type Stats struct {
	Dimension        int
	TotalVectorCount int64
	Namespaces       map[string]int64
}

// VectorStore is the namespace-aware view over one Pinecone index. A logical
// collection maps to one namespace; the store qualifies namespace names with
// a deployment prefix so several environments can share an index.
type VectorStore interface {
	Upsert(ctx context.Context, collection types.Collection, vectors []Vector) error
	Query(ctx context.Context, collection types.Collection, q []float32, topK int, filter map[string]any) ([]Match, error)
	Purge(ctx context.Context, collection types.Collection) error
	Stats(ctx context.Context) (*Stats, error)
	Dimension() int
}

// StoreConfig holds index resolution settings.
type StoreConfig struct {
	IndexName       string
	IndexHost       string
	NamespacePrefix string
}

type vectorStore struct {
	log       *logger.Logger
	pc        Client
	indexName string
	indexHost string
	nsPrefix  string
	dimension int
}

// NewVectorStore resolves the index host (via describe_index when not
// configured) and records the index dimension for compatibility checks.
func NewVectorStore(ctx context.Context, log *logger.Logger, pc Client, cfg StoreConfig) (VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pc == nil {
		return nil, ErrUnavailable
	}

	indexName := strings.TrimSpace(cfg.IndexName)
	if indexName == "" {
		return nil, fmt.Errorf("%w: index name not set", ErrUnavailable)
	}

	nsPrefix := strings.TrimSpace(cfg.NamespacePrefix)
	if nsPrefix == "" {
		nsPrefix = "mat"
	}

	host := strings.TrimSpace(cfg.IndexHost)
	dimension := 0
	desc, err := pc.DescribeIndex(ctx, indexName)
	if err != nil {
		if host == "" {
			return nil, fmt.Errorf("pinecone describe_index failed: %w", err)
		}
		// Host is pinned in config; missing control-plane access only costs
		// us the dimension check.
		log.Warn("describe_index failed, skipping dimension check", "error", err.Error())
	} else {
		dimension = desc.Dimension
		if host == "" {
			host = strings.TrimSpace(desc.Host)
			log.Warn("index host not set; resolved via describe_index (avoid this in production)",
				"index_name", indexName,
				"index_host", host,
			)
		}
	}

	return &vectorStore{
		log:       log.With("service", "MaterialVectorStore"),
		pc:        pc,
		indexName: indexName,
		indexHost: host,
		nsPrefix:  nsPrefix,
		dimension: dimension,
	}, nil
}

func (s *vectorStore) Upsert(ctx context.Context, collection types.Collection, vectors []Vector) error {
	if s == nil || s.pc == nil {
		return ErrUnavailable
	}
	ns, err := s.namespaceFor(collection)
	if err != nil {
		return err
	}
	_, err = s.pc.UpsertVectors(ctx, s.indexHost, UpsertRequest{
		Namespace: ns,
		Vectors:   vectors,
	})
	return err
}

func (s *vectorStore) Query(ctx context.Context, collection types.Collection, q []float32, topK int, filter map[string]any) ([]Match, error) {
	if s == nil || s.pc == nil {
		return nil, ErrUnavailable
	}
	if s.dimension > 0 && len(q) != s.dimension {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			types.ErrDimensionError, len(q), s.dimension)
	}
	ns, err := s.namespaceFor(collection)
	if err != nil {
		return nil, err
	}

	resp, err := s.pc.Query(ctx, s.indexHost, QueryRequest{
		Namespace:       ns,
		Vector:          q,
		TopK:            topK,
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		out = append(out, Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return out, nil
}

func (s *vectorStore) Purge(ctx context.Context, collection types.Collection) error {
	if s == nil || s.pc == nil {
		return ErrUnavailable
	}
	ns, err := s.namespaceFor(collection)
	if err != nil {
		return err
	}
	s.log.Info("purging namespace", "namespace", ns)
	return s.pc.DeleteNamespace(ctx, s.indexHost, ns)
}

func (s *vectorStore) Stats(ctx context.Context) (*Stats, error) {
	if s == nil || s.pc == nil {
		return nil, ErrUnavailable
	}
	raw, err := s.pc.DescribeIndexStats(ctx, s.indexHost)
	if err != nil {
		return nil, err
	}

	namespaces := make(map[string]int64, len(raw.Namespaces))
	for ns, st := range raw.Namespaces {
		namespaces[ns] = st.VectorCount
	}
	return &Stats{
		Dimension:        raw.Dimension,
		TotalVectorCount: raw.TotalVectorCount,
		Namespaces:       namespaces,
	}, nil
}

// Dimension returns the index dimension, or 0 when it could not be resolved.
func (s *vectorStore) Dimension() int {
	return s.dimension
}

func (s *vectorStore) namespaceFor(collection types.Collection) (string, error) {
	switch collection {
	case types.CollectionInStock, types.CollectionAllFDA:
		return s.nsPrefix + ":" + string(collection), nil
	default:
		return "", fmt.Errorf("unroutable collection %q", collection)
	}
}
