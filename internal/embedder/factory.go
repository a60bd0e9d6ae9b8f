package embedder

import (
	"errors"
	"fmt"

	"github.com/labhouse/matsearch/internal/logger"
)

// Config holds provider selection and credentials.
type Config struct {
	// Provider selects the primary provider. Empty means gemini.
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	CacheSize    int
}

type providerFactory struct {
	name  string
	build func(cfg Config, cache *Cache, log *logger.Logger) (Embedder, error)
}

var factories = map[string]providerFactory{
	ProviderGemini: {
		name: ProviderGemini,
		build: func(cfg Config, cache *Cache, log *logger.Logger) (Embedder, error) {
			return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cache, log)
		},
	},
	ProviderOpenAI: {
		name: ProviderOpenAI,
		build: func(cfg Config, cache *Cache, log *logger.Logger) (Embedder, error) {
			return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cache, log)
		},
	},
	ProviderLocal: {
		name: ProviderLocal,
		build: func(cfg Config, cache *Cache, log *logger.Logger) (Embedder, error) {
			return NewLocalProvider(cache)
		},
	},
}

// fallbackOrder is the chain tried when the primary provider cannot be
// constructed. The local provider is deliberately absent: it only runs when
// requested by name, so a missing API key can never silently degrade search
// quality to hash vectors.
var fallbackOrder = []string{ProviderGemini, ProviderOpenAI}

// New builds an embedder from config. The requested provider is tried first,
// then the remaining real providers in fallback order. Construction fails
// only when no provider can be initialized; the aggregate error lists every
// attempt.
func New(cfg Config, log *logger.Logger) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	primary := cfg.Provider
	if primary == "" {
		primary = ProviderGemini
	}

	pf, ok := factories[primary]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNoProviderEnabled, primary)
	}

	if primary == ProviderLocal {
		// Explicit request only; never part of the fallback chain.
		return pf.build(cfg, cache, log)
	}

	tried := []string{primary}
	order := []providerFactory{pf}
	for _, name := range fallbackOrder {
		if name == primary {
			continue
		}
		order = append(order, factories[name])
		tried = append(tried, name)
	}

	var errs []error
	for i, f := range order {
		emb, err := f.build(cfg, cache, log)
		if err == nil {
			if i > 0 && log != nil {
				log.Warn("primary embedding provider unavailable, using fallback",
					"primary", primary, "fallback", f.name)
			}
			return emb, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
	}

	return nil, fmt.Errorf("%w (tried %v): %w", ErrAllProvidersDown, tried, errors.Join(errs...))
}
