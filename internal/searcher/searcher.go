package searcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labhouse/matsearch/internal/classifier"
	"github.com/labhouse/matsearch/internal/docstore"
	"github.com/labhouse/matsearch/internal/embedder"
	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/internal/router"
	"github.com/labhouse/matsearch/internal/vecstore"
	"github.com/labhouse/matsearch/pkg/types"
)

const (
	DefaultTopK                = 10
	MaxTopK                    = 50
	DefaultSimilarityThreshold = 0.7
	DefaultPriorityEpsilon     = 0.05
	DefaultSemanticTimeout     = 5 * time.Second

	// OverFetchFactor widens the per-namespace vector query so merging and
	// filtering still leave topK candidates after truncation.
	OverFetchFactor = 3

	// FuzzyScoreCap keeps fuzzy hits strictly below exact-match score.
	FuzzyScoreCap = 0.95

	// metadataMatchScore is assigned to benefit-tag lookups; a tag hit is
	// strong evidence but weaker than a name substring match of similar length.
	metadataMatchScore = 0.85

	// longQueryWords is the cutoff past which a generic natural-language
	// query skips the fuzzy leg; substring matching whole sentences against
	// name fields only produces noise.
	longQueryWords = 6
)

// FilterBy narrows results by structured document fields. It is a post-pass
// over already-retrieved candidates, not a retrieval strategy.
type FilterBy struct {
	Benefit  string  `json:"benefit,omitempty"`
	Supplier string  `json:"supplier,omitempty"`
	MaxCost  float64 `json:"max_cost,omitempty"`
}

// Request is the caller contract for a unified search. Pointer fields
// distinguish "not set" from an explicit zero value.
type Request struct {
	Query      string           `json:"query"`
	Collection types.Collection `json:"collection,omitempty"`
	// TopK nil means the default; an explicit 0 returns an empty result set.
	TopK                *int      `json:"topK,omitempty"`
	SimilarityThreshold *float64  `json:"similarityThreshold,omitempty"`
	EnableExactMatch    *bool     `json:"enable_exact_match,omitempty"`
	EnableFuzzyMatch    *bool     `json:"enable_fuzzy_match,omitempty"`
	EnableSemantic      *bool     `json:"enable_semantic_search,omitempty"`
	EnableMetadata      *bool     `json:"enable_metadata_filter,omitempty"`
	MaxResults          int       `json:"max_results,omitempty"`
	MinScore            float64   `json:"min_score,omitempty"`
	FilterBy            *FilterBy `json:"filter_by,omitempty"`
}

// Response is the caller contract for search output. Formatted always holds
// a human-readable localized message, even on error.
type Response struct {
	Success      bool                        `json:"success"`
	Results      []types.UnifiedSearchResult `json:"results"`
	Formatted    string                      `json:"formatted"`
	Query        string                      `json:"query"`
	TotalResults int                         `json:"totalResults"`
	Routing      *router.Decision            `json:"routing,omitempty"`
	Stats        *types.SearchStats          `json:"stats,omitempty"`
	Error        string                      `json:"error,omitempty"`
	Warning      string                      `json:"warning,omitempty"`
}

// Options tune the orchestrator. Zero values fall back to the defaults.
type Options struct {
	DefaultTopK         int
	MaxTopK             int
	SimilarityThreshold float64
	PriorityEpsilon     float64
	SemanticTimeout     time.Duration
}

func (o *Options) applyDefaults() {
	if o.DefaultTopK <= 0 {
		o.DefaultTopK = DefaultTopK
	}
	if o.MaxTopK <= 0 {
		o.MaxTopK = MaxTopK
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.PriorityEpsilon <= 0 {
		o.PriorityEpsilon = DefaultPriorityEpsilon
	}
	if o.SemanticTimeout <= 0 {
		o.SemanticTimeout = DefaultSemanticTimeout
	}
}

// Searcher coordinates exact, fuzzy, metadata and semantic retrieval across
// the document and vector stores. Safe for concurrent use; each call is
// independent and shares only the store handles.
type Searcher struct {
	docs       docstore.MaterialStore
	vectors    vecstore.VectorStore
	embed      embedder.Embedder
	classifier *classifier.Classifier
	opts       Options
	log        *logger.Logger
}

// New creates a Searcher. The vector store and embedder may be nil, in which
// case the semantic strategy degrades to a per-request warning.
func New(docs docstore.MaterialStore, vectors vecstore.VectorStore, embed embedder.Embedder, opts Options, log *logger.Logger) *Searcher {
	opts.applyDefaults()
	return &Searcher{
		docs:       docs,
		vectors:    vectors,
		embed:      embed,
		classifier: classifier.New(),
		opts:       opts,
		log:        log,
	}
}

// legResult joins one concurrent retrieval leg. err is set when every
// strategy in the leg failed; partial carries strategy errors from a leg
// that still produced results.
type legResult struct {
	results []types.UnifiedSearchResult
	err     error
	partial error
}

// Search runs the unified search pipeline. The returned error is non-nil
// only for input validation failures and total strategy failure; in both
// cases the Response still carries a localized formatted message.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	cls := s.classifier.Classify(req.Query)

	if strings.TrimSpace(req.Query) == "" {
		resp := &Response{
			Query:     req.Query,
			Results:   []types.UnifiedSearchResult{},
			Formatted: errorMessage(cls.Language, "query cannot be empty"),
			Error:     "query cannot be empty",
		}
		return resp, types.ErrEmptyQuery
	}
	if err := types.ValidateCollection(req.Collection); err != nil {
		resp := &Response{
			Query:     req.Query,
			Results:   []types.UnifiedSearchResult{},
			Formatted: errorMessage(cls.Language, err.Error()),
			Error:     err.Error(),
		}
		return resp, err
	}

	decision := router.Route(req.Query, req.Collection)
	topK := s.effectiveTopK(req)

	if topK == 0 {
		stats := types.ComputeStats(nil)
		return &Response{
			Success:   true,
			Results:   []types.UnifiedSearchResult{},
			Formatted: notFoundMessage(cls.Language, req.Query),
			Query:     req.Query,
			Routing:   &decision,
			Stats:     &stats,
		}, nil
	}

	start := time.Now()
	storeChan := make(chan legResult, 1)
	semanticChan := make(chan legResult, 1)

	go s.runStoreLeg(ctx, req, cls, decision, topK, storeChan)
	go s.runSemanticLeg(ctx, req, decision, topK, semanticChan)

	var storeRes, semanticRes legResult
	var storeDone, semanticDone bool
	for !storeDone || !semanticDone {
		select {
		case storeRes = <-storeChan:
			storeDone = true
		case semanticRes = <-semanticChan:
			semanticDone = true
		case <-ctx.Done():
			return &Response{
				Query:     req.Query,
				Results:   []types.UnifiedSearchResult{},
				Formatted: errorMessage(cls.Language, "search cancelled"),
				Error:     ctx.Err().Error(),
			}, ctx.Err()
		}
	}

	// A dimension mismatch is a configuration bug, not a degradable fault.
	if semanticRes.err != nil && errors.Is(semanticRes.err, types.ErrDimensionError) {
		return &Response{
			Query:     req.Query,
			Results:   []types.UnifiedSearchResult{},
			Formatted: errorMessage(cls.Language, semanticRes.err.Error()),
			Error:     semanticRes.err.Error(),
			Routing:   &decision,
		}, semanticRes.err
	}

	if storeRes.err != nil && semanticRes.err != nil {
		err := fmt.Errorf("all strategies failed: store=%v, semantic=%v", storeRes.err, semanticRes.err)
		return &Response{
			Query:     req.Query,
			Results:   []types.UnifiedSearchResult{},
			Formatted: errorMessage(cls.Language, err.Error()),
			Error:     err.Error(),
			Routing:   &decision,
		}, err
	}

	var warnings []string
	if storeRes.err != nil {
		warnings = append(warnings, fmt.Sprintf("document-store strategies skipped: %v", storeRes.err))
	} else if storeRes.partial != nil {
		warnings = append(warnings, fmt.Sprintf("some document-store strategies skipped: %v", storeRes.partial))
	}
	if semanticRes.err != nil {
		warnings = append(warnings, fmt.Sprintf("semantic search skipped: %v", semanticRes.err))
	}
	warning := strings.Join(warnings, "; ")
	if warning != "" && s.log != nil {
		s.log.Warn("search strategy degraded", "query", req.Query, "warning", warning)
	}

	merged := mergeResults(storeRes.results, semanticRes.results)
	merged = applyFilter(merged, req.FilterBy, s.metadataEnabled(req))
	merged = applyMinScore(merged, req.MinScore)
	merged = rank(merged, s.opts.PriorityEpsilon, decision.PrioritizeStock)
	merged = truncate(merged, topK, req.MaxResults)

	stats := types.ComputeStats(merged)
	resp := &Response{
		Success:      true,
		Results:      merged,
		Formatted:    formatResults(req.Query, cls.Language, decision, merged, stats),
		Query:        req.Query,
		TotalResults: len(merged),
		Routing:      &decision,
		Stats:        &stats,
		Warning:      warning,
	}

	if s.log != nil {
		s.log.Debug("search completed",
			"query", req.Query,
			"query_type", string(cls.QueryType),
			"mode", string(decision.Mode),
			"results", len(merged),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return resp, nil
}

func (s *Searcher) effectiveTopK(req Request) int {
	topK := s.opts.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < 0 {
		topK = 0
	}
	if topK > s.opts.MaxTopK {
		topK = s.opts.MaxTopK
	}
	return topK
}

func (s *Searcher) exactEnabled(req Request) bool {
	return req.EnableExactMatch == nil || *req.EnableExactMatch
}

// fuzzyEnabled defaults on, except for long generic natural-language queries
// where substring matching against name fields produces noise. An explicit
// caller toggle always wins.
func (s *Searcher) fuzzyEnabled(req Request, cls classifier.Result) bool {
	if req.EnableFuzzyMatch != nil {
		return *req.EnableFuzzyMatch
	}
	if cls.QueryType == classifier.TypeGeneric && len(strings.Fields(req.Query)) > longQueryWords {
		return false
	}
	return true
}

func (s *Searcher) semanticEnabled(req Request) bool {
	return req.EnableSemantic == nil || *req.EnableSemantic
}

func (s *Searcher) metadataEnabled(req Request) bool {
	return req.EnableMetadata == nil || *req.EnableMetadata
}

// runStoreLeg executes the exact, fuzzy and benefit-tag strategies against
// the document store for every routed collection.
func (s *Searcher) runStoreLeg(ctx context.Context, req Request, cls classifier.Result, decision router.Decision, topK int, out chan<- legResult) {
	var res legResult
	var results []types.UnifiedSearchResult
	var errs []error
	attempted := 0

	fetchLimit := topK * OverFetchFactor

	for _, col := range decision.Collections {
		if s.exactEnabled(req) && len(cls.Codes) > 0 {
			attempted++
			hits, err := s.exactMatch(ctx, col, cls)
			if err != nil {
				errs = append(errs, err)
			}
			results = append(results, hits...)
		}
		if s.fuzzyEnabled(req, cls) {
			attempted++
			hits, err := s.fuzzyMatch(ctx, col, req.Query, cls, fetchLimit)
			if err != nil {
				errs = append(errs, err)
			}
			results = append(results, hits...)
		}
		if len(cls.Properties) > 0 {
			attempted++
			hits, err := s.propertyMatch(ctx, col, cls, fetchLimit)
			if err != nil {
				errs = append(errs, err)
			}
			results = append(results, hits...)
		}
	}

	if attempted > 0 && len(errs) == attempted {
		res.err = errors.Join(errs...)
	} else {
		res.results = results
		if len(errs) > 0 {
			res.partial = errors.Join(errs...)
		}
	}

	select {
	case out <- res:
	case <-ctx.Done():
	}
}

func (s *Searcher) exactMatch(ctx context.Context, col types.Collection, cls classifier.Result) ([]types.UnifiedSearchResult, error) {
	var results []types.UnifiedSearchResult
	for _, code := range cls.Codes {
		doc, err := s.docs.FindByCode(ctx, col, code)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return results, err
		}
		results = append(results, types.UnifiedSearchResult{
			Material:      *doc,
			Score:         1.0,
			MatchType:     types.MatchExact,
			Confidence:    cls.Confidence,
			MatchedFields: []string{"material_code"},
			Source:        types.SourceDocumentStore,
			Collection:    col,
			Availability:  types.AvailabilityFor(col),
		})
	}
	return results, nil
}

func (s *Searcher) fuzzyMatch(ctx context.Context, col types.Collection, query string, cls classifier.Result, limit int) ([]types.UnifiedSearchResult, error) {
	terms := cls.Names
	if len(terms) == 0 {
		terms = []string{strings.TrimSpace(query)}
	}
	terms = withExpansions(terms, cls.Expanded)

	var results []types.UnifiedSearchResult
	for _, term := range terms {
		docs, err := s.docs.FindFuzzy(ctx, col, term, limit)
		if err != nil {
			return results, err
		}
		for i := range docs {
			score, fields := fuzzyScore(term, &docs[i])
			if score <= 0 {
				continue
			}
			results = append(results, types.UnifiedSearchResult{
				Material:      docs[i],
				Score:         score,
				MatchType:     types.MatchFuzzy,
				Confidence:    cls.Confidence,
				MatchedFields: fields,
				Source:        types.SourceDocumentStore,
				Collection:    col,
				Availability:  types.AvailabilityFor(col),
			})
		}
	}
	return results, nil
}

// propertyMatch queries benefit tags for each extracted property plus its
// expansion variants, so a material tagged only with a synonym ("hydrating"
// for a "moisturizing" query) is still reachable. The classifier caps the
// variant list, bounding the fan-out.
func (s *Searcher) propertyMatch(ctx context.Context, col types.Collection, cls classifier.Result, limit int) ([]types.UnifiedSearchResult, error) {
	var results []types.UnifiedSearchResult
	for _, prop := range withExpansions(cls.Properties, cls.Expanded) {
		docs, err := s.docs.FindByBenefit(ctx, col, prop, limit)
		if err != nil {
			return results, err
		}
		for i := range docs {
			results = append(results, types.UnifiedSearchResult{
				Material:      docs[i],
				Score:         metadataMatchScore,
				MatchType:     types.MatchMetadata,
				Confidence:    cls.Confidence,
				MatchedFields: []string{"benefits"},
				Source:        types.SourceDocumentStore,
				Collection:    col,
				Availability:  types.AvailabilityFor(col),
			})
		}
	}
	return results, nil
}

// runSemanticLeg embeds the query once and fans out one vector query per
// routed namespace, bounded by its own sub-timeout so a slow vector store
// cannot starve the document-store results.
func (s *Searcher) runSemanticLeg(ctx context.Context, req Request, decision router.Decision, topK int, out chan<- legResult) {
	var res legResult
	defer func() {
		select {
		case out <- res:
		case <-ctx.Done():
		}
	}()

	if !s.semanticEnabled(req) {
		return
	}
	if s.vectors == nil || s.embed == nil {
		res.err = vecstore.ErrUnavailable
		return
	}

	legCtx, cancel := context.WithTimeout(ctx, s.opts.SemanticTimeout)
	defer cancel()

	emb, err := s.embed.GenerateEmbedding(legCtx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		res.err = fmt.Errorf("query embedding: %w", err)
		return
	}

	threshold := s.opts.SimilarityThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}

	var results []types.UnifiedSearchResult
	var errs []error
	for _, col := range decision.Collections {
		matches, err := s.vectors.Query(legCtx, col, emb.Vector, topK*OverFetchFactor, nil)
		if err != nil {
			if errors.Is(err, types.ErrDimensionError) {
				res.err = err
				return
			}
			errs = append(errs, err)
			continue
		}
		for _, m := range matches {
			if m.Score < threshold {
				continue
			}
			r, ok := resultFromMatch(m, col)
			if !ok {
				continue
			}
			results = append(results, r)
		}
	}

	if len(errs) == len(decision.Collections) && len(errs) > 0 {
		res.err = errors.Join(errs...)
		return
	}
	res.results = results
}

// resultFromMatch rebuilds a material view from the denormalized chunk
// metadata written at indexing time. Matches without a material code are
// unusable and dropped.
func resultFromMatch(m vecstore.Match, col types.Collection) (types.UnifiedSearchResult, bool) {
	code := metaString(m.Metadata, "material_code")
	if code == "" {
		return types.UnifiedSearchResult{}, false
	}

	doc := types.MaterialDocument{
		Code:        code,
		TradeName:   metaString(m.Metadata, "trade_name"),
		INCIName:    metaString(m.Metadata, "inci_name"),
		Supplier:    metaString(m.Metadata, "supplier"),
		CostPerUnit: metaFloat(m.Metadata, "cost_per_unit"),
	}
	if benefits := metaString(m.Metadata, "benefits"); benefits != "" {
		doc.Benefits = strings.Split(benefits, ", ")
	}

	score := m.Score
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}

	var fields []string
	if ct := metaString(m.Metadata, "chunk_type"); ct != "" {
		fields = []string{ct}
	}

	return types.UnifiedSearchResult{
		Material:      doc,
		Score:         score,
		MatchType:     types.MatchSemantic,
		Confidence:    score,
		MatchedFields: fields,
		Source:        types.SourceVectorStore,
		Collection:    col,
		Availability:  types.AvailabilityFor(col),
	}, true
}

func metaString(md map[string]any, key string) string {
	if md == nil {
		return ""
	}
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

func metaFloat(md map[string]any, key string) float64 {
	if md == nil {
		return 0
	}
	if v, ok := md[key].(float64); ok {
		return v
	}
	return 0
}

// withExpansions unions a strategy's primary terms with the classifier's
// expansion variants, primary terms first, deduplicated case-insensitively.
// The classifier already caps its variants, so the union stays bounded.
func withExpansions(primary, expanded []string) []string {
	seen := make(map[string]struct{}, len(primary)+len(expanded))
	out := make([]string, 0, len(primary)+len(expanded))
	for _, t := range append(append([]string{}, primary...), expanded...) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// fuzzyScore scales by match length ratio against the best matching field,
// capped below exact-match score. Returns 0 when no field contains the term.
func fuzzyScore(term string, doc *types.MaterialDocument) (float64, []string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return 0, nil
	}

	fields := []struct {
		name  string
		value string
	}{
		{"material_code", doc.Code},
		{"trade_name", doc.TradeName},
		{"inci_name", doc.INCIName},
	}

	best := 0.0
	var matched []string
	for _, f := range fields {
		value := strings.ToLower(f.value)
		if value == "" || !strings.Contains(value, term) {
			continue
		}
		matched = append(matched, f.name)
		ratio := float64(len(term)) / float64(len(value))
		if ratio > FuzzyScoreCap {
			ratio = FuzzyScoreCap
		}
		if ratio > best {
			best = ratio
		}
	}
	return best, matched
}
