package searcher

import (
	"sort"
	"strings"

	"github.com/labhouse/matsearch/pkg/types"
)

// mergeResults unions candidate lists keyed by material code. When several
// strategies hit the same material the highest score wins and the match is
// recorded as hybrid; matched fields are unioned. Availability collapses to
// in_stock when any source collection was the in-stock one. Entries that
// fail result validation (malformed vector metadata, out-of-range score)
// are dropped here, so nothing downstream sees them.
func mergeResults(lists ...[]types.UnifiedSearchResult) []types.UnifiedSearchResult {
	byCode := make(map[string]*types.UnifiedSearchResult)
	var order []string

	for _, list := range lists {
		for i := range list {
			r := list[i]
			if r.Validate() != nil {
				continue
			}
			existing, ok := byCode[r.Material.Code]
			if !ok {
				copied := r
				byCode[r.Material.Code] = &copied
				order = append(order, r.Material.Code)
				continue
			}

			if r.MatchType != existing.MatchType {
				existing.MatchType = types.MatchHybrid
			}
			if r.Score > existing.Score {
				existing.Score = r.Score
				existing.Source = r.Source
				// Prefer the document-store view of the material, it is
				// complete; the vector metadata is a denormalized subset.
				if r.Source == types.SourceDocumentStore {
					existing.Material = r.Material
				}
			}
			if r.Confidence > existing.Confidence {
				existing.Confidence = r.Confidence
			}
			if r.Availability == types.AvailabilityInStock {
				existing.Availability = types.AvailabilityInStock
				existing.Collection = types.CollectionInStock
			}
			existing.MatchedFields = unionFields(existing.MatchedFields, r.MatchedFields)
		}
	}

	merged := make([]types.UnifiedSearchResult, 0, len(order))
	for _, code := range order {
		merged = append(merged, *byCode[code])
	}
	return merged
}

func unionFields(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// applyFilter removes candidates that fail the structured filter. It runs
// after retrieval and before truncation so filtering never starves topK.
func applyFilter(results []types.UnifiedSearchResult, filter *FilterBy, enabled bool) []types.UnifiedSearchResult {
	if filter == nil || !enabled {
		return results
	}

	out := results[:0]
	for _, r := range results {
		if filter.Benefit != "" && !r.Material.HasBenefit(filter.Benefit) {
			continue
		}
		if filter.Supplier != "" && !strings.Contains(
			strings.ToLower(r.Material.Supplier), strings.ToLower(filter.Supplier)) {
			continue
		}
		if filter.MaxCost > 0 && r.Material.CostPerUnit > filter.MaxCost {
			continue
		}
		out = append(out, r)
	}
	return out
}

func applyMinScore(results []types.UnifiedSearchResult, minScore float64) []types.UnifiedSearchResult {
	if minScore <= 0 {
		return results
	}
	out := results[:0]
	for _, r := range results {
		if r.Score >= minScore {
			out = append(out, r)
		}
	}
	return out
}

// rank sorts by score descending with material code as the stable tie-break.
// When prioritization is on, an in-stock result within epsilon of an
// FDA-only result above it is lifted past it and flagged.
func rank(results []types.UnifiedSearchResult, epsilon float64, prioritizeStock bool) []types.UnifiedSearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Material.Code < results[j].Material.Code
	})

	if !prioritizeStock {
		return results
	}

	// Bubble in-stock entries up through FDA-only neighbors of similar
	// score. Bounded passes keep the sort stable for everything else.
	for swapped := true; swapped; {
		swapped = false
		for i := 1; i < len(results); i++ {
			upper, lower := &results[i-1], &results[i]
			if lower.Availability == types.AvailabilityInStock &&
				upper.Availability == types.AvailabilityFDAOnly &&
				upper.Score-lower.Score <= epsilon {
				lower.Prioritized = true
				results[i-1], results[i] = results[i], results[i-1]
				swapped = true
			}
		}
	}
	return results
}

// truncate caps the result list at topK, further bounded by maxResults when
// the caller set one.
func truncate(results []types.UnifiedSearchResult, topK, maxResults int) []types.UnifiedSearchResult {
	limit := topK
	if maxResults > 0 && maxResults < limit {
		limit = maxResults
	}
	if limit < len(results) {
		return results[:limit]
	}
	return results
}
