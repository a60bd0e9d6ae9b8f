package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labhouse/matsearch/pkg/types"
)

func result(code string, score float64, mt types.MatchType, a types.Availability) types.UnifiedSearchResult {
	col := types.CollectionAllFDA
	if a == types.AvailabilityInStock {
		col = types.CollectionInStock
	}
	return types.UnifiedSearchResult{
		Material:     types.MaterialDocument{Code: code, TradeName: code},
		Score:        score,
		MatchType:    mt,
		Collection:   col,
		Availability: a,
	}
}

func TestMergeResults_DeduplicatesByCode(t *testing.T) {
	exact := []types.UnifiedSearchResult{result("RM1", 1.0, types.MatchExact, types.AvailabilityInStock)}
	semantic := []types.UnifiedSearchResult{
		result("RM1", 0.9, types.MatchSemantic, types.AvailabilityInStock),
		result("RM2", 0.8, types.MatchSemantic, types.AvailabilityFDAOnly),
	}

	merged := mergeResults(exact, semantic)
	require.Len(t, merged, 2)
	assert.Equal(t, types.MatchHybrid, merged[0].MatchType)
	assert.Equal(t, 1.0, merged[0].Score, "highest score wins")
	assert.Equal(t, types.MatchSemantic, merged[1].MatchType)
}

func TestMergeResults_InStockWinsAvailability(t *testing.T) {
	fda := []types.UnifiedSearchResult{result("RM1", 0.9, types.MatchSemantic, types.AvailabilityFDAOnly)}
	stock := []types.UnifiedSearchResult{result("RM1", 0.8, types.MatchSemantic, types.AvailabilityInStock)}

	merged := mergeResults(fda, stock)
	require.Len(t, merged, 1)
	assert.Equal(t, types.AvailabilityInStock, merged[0].Availability)
	assert.Equal(t, types.CollectionInStock, merged[0].Collection)
	assert.Equal(t, 0.9, merged[0].Score)
}

func TestMergeResults_UnionsMatchedFields(t *testing.T) {
	a := result("RM1", 0.9, types.MatchFuzzy, types.AvailabilityInStock)
	a.MatchedFields = []string{"trade_name"}
	b := result("RM1", 0.8, types.MatchSemantic, types.AvailabilityInStock)
	b.MatchedFields = []string{"benefits", "trade_name"}

	merged := mergeResults([]types.UnifiedSearchResult{a}, []types.UnifiedSearchResult{b})
	require.Len(t, merged, 1)
	assert.ElementsMatch(t, []string{"trade_name", "benefits"}, merged[0].MatchedFields)
}

func TestMergeResults_DropsInvalidEntries(t *testing.T) {
	noName := types.UnifiedSearchResult{
		Material: types.MaterialDocument{Code: "RM9"},
		Score:    0.9,
	}
	badScore := result("RM2", 1.5, types.MatchSemantic, types.AvailabilityFDAOnly)
	valid := result("RM1", 0.8, types.MatchFuzzy, types.AvailabilityInStock)

	merged := mergeResults([]types.UnifiedSearchResult{noName, badScore, valid})
	require.Len(t, merged, 1)
	assert.Equal(t, "RM1", merged[0].Material.Code)
}

func TestRank_ScoreDescendingCodeTieBreak(t *testing.T) {
	results := []types.UnifiedSearchResult{
		result("RM2", 0.8, types.MatchSemantic, types.AvailabilityFDAOnly),
		result("RM1", 0.8, types.MatchSemantic, types.AvailabilityFDAOnly),
		result("RM3", 0.95, types.MatchSemantic, types.AvailabilityFDAOnly),
	}

	ranked := rank(results, DefaultPriorityEpsilon, false)
	assert.Equal(t, "RM3", ranked[0].Material.Code)
	assert.Equal(t, "RM1", ranked[1].Material.Code, "ties broken by code")
	assert.Equal(t, "RM2", ranked[2].Material.Code)
}

func TestRank_EpsilonPromotion(t *testing.T) {
	results := []types.UnifiedSearchResult{
		result("FDA1", 0.90, types.MatchSemantic, types.AvailabilityFDAOnly),
		result("STK1", 0.87, types.MatchSemantic, types.AvailabilityInStock),
	}

	ranked := rank(results, 0.05, true)
	assert.Equal(t, "STK1", ranked[0].Material.Code)
	assert.True(t, ranked[0].Prioritized)
	assert.False(t, ranked[1].Prioritized)
}

func TestRank_BeyondEpsilonNotPromoted(t *testing.T) {
	results := []types.UnifiedSearchResult{
		result("FDA1", 0.95, types.MatchSemantic, types.AvailabilityFDAOnly),
		result("STK1", 0.80, types.MatchSemantic, types.AvailabilityInStock),
	}

	ranked := rank(results, 0.05, true)
	assert.Equal(t, "FDA1", ranked[0].Material.Code)
	assert.False(t, ranked[1].Prioritized)
}

func TestApplyFilter(t *testing.T) {
	results := []types.UnifiedSearchResult{
		{Material: types.MaterialDocument{Code: "RM1", Supplier: "Seppic", CostPerUnit: 1200, Benefits: []string{"moisturizing"}}},
		{Material: types.MaterialDocument{Code: "RM2", Supplier: "BASF", CostPerUnit: 90, Benefits: []string{"brightening"}}},
	}

	filtered := applyFilter(append([]types.UnifiedSearchResult{}, results...), &FilterBy{Supplier: "seppic"}, true)
	require.Len(t, filtered, 1)
	assert.Equal(t, "RM1", filtered[0].Material.Code)

	filtered = applyFilter(append([]types.UnifiedSearchResult{}, results...), &FilterBy{MaxCost: 100}, true)
	require.Len(t, filtered, 1)
	assert.Equal(t, "RM2", filtered[0].Material.Code)

	filtered = applyFilter(append([]types.UnifiedSearchResult{}, results...), &FilterBy{Benefit: "moistur"}, true)
	require.Len(t, filtered, 1)
	assert.Equal(t, "RM1", filtered[0].Material.Code)

	// Disabled filter passes everything through.
	filtered = applyFilter(append([]types.UnifiedSearchResult{}, results...), &FilterBy{MaxCost: 100}, false)
	assert.Len(t, filtered, 2)
}

func TestTruncate(t *testing.T) {
	results := make([]types.UnifiedSearchResult, 10)

	assert.Len(t, truncate(results, 5, 0), 5)
	assert.Len(t, truncate(results, 5, 3), 3, "max_results tightens topK")
	assert.Len(t, truncate(results, 20, 0), 10)
}

func TestFuzzyScore(t *testing.T) {
	doc := &types.MaterialDocument{
		Code:      "RM000123",
		TradeName: "Sepimax Zen",
		INCIName:  "Polyacrylate Crosspolymer-6",
	}

	score, fields := fuzzyScore("sepimax", doc)
	assert.InDelta(t, 7.0/11.0, score, 0.001)
	assert.Equal(t, []string{"trade_name"}, fields)

	// A full-length match is capped below exact score.
	score, _ = fuzzyScore("sepimax zen", doc)
	assert.Equal(t, FuzzyScoreCap, score)

	score, fields = fuzzyScore("nothing here", doc)
	assert.Zero(t, score)
	assert.Empty(t, fields)
}
