package types

// MatchType records which retrieval strategy produced a result.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchFuzzy    MatchType = "fuzzy"
	MatchSemantic MatchType = "semantic"
	MatchMetadata MatchType = "metadata"
	// MatchHybrid marks a result confirmed by more than one strategy.
	MatchHybrid MatchType = "hybrid"
)

// SourceStore records which backing store a result came from.
type SourceStore string

const (
	SourceDocumentStore SourceStore = "mongodb"
	SourceVectorStore   SourceStore = "pinecone"
)

// UnifiedSearchResult is one ranked match from the unified search pipeline.
// All results for a query carry comparable scores in [0, 1].
type UnifiedSearchResult struct {
	Material      MaterialDocument `json:"material"`
	Score         float64          `json:"score"`
	MatchType     MatchType        `json:"match_type"`
	Confidence    float64          `json:"confidence"`
	MatchedFields []string         `json:"matched_fields,omitempty"`
	Source        SourceStore      `json:"source"`
	Collection    Collection       `json:"collection"`
	Availability  Availability     `json:"availability"`
	// Prioritized is set when an in-stock result was lifted above an
	// FDA-only result of similar score.
	Prioritized bool `json:"prioritized,omitempty"`
}

// Validate checks result invariants the pipeline promises to callers.
func (r *UnifiedSearchResult) Validate() error {
	if err := r.Material.Validate(); err != nil {
		return err
	}
	if r.Score < 0 || r.Score > 1 {
		return ErrInvalidScore
	}
	return nil
}

// SearchStats summarizes a result set split by availability.
type SearchStats struct {
	InStock           int     `json:"in_stock"`
	FDAOnly           int     `json:"fda_only"`
	InStockPercentage float64 `json:"in_stock_percentage"`
}

// ComputeStats tallies availability counts over a result list.
func ComputeStats(results []UnifiedSearchResult) SearchStats {
	var s SearchStats
	for _, r := range results {
		if r.Availability == AvailabilityInStock {
			s.InStock++
		} else {
			s.FDAOnly++
		}
	}
	if total := s.InStock + s.FDAOnly; total > 0 {
		s.InStockPercentage = float64(s.InStock) / float64(total) * 100
	}
	return s
}
